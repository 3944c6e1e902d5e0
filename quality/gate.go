// Package quality runs a phase-ordered pipeline of validation gates over
// a change: shell-out validation commands, an AI code-review gate, and
// out-of-process plugin gates loaded via hashicorp/go-plugin.
package quality

import "time"

// Phase orders gates within a pipeline run.
type Phase string

const (
	PhaseValidation     Phase = "validation"
	PhasePostValidation Phase = "post_validation"
	PhasePlugin         Phase = "plugin"
)

var phaseOrder = map[Phase]int{
	PhaseValidation:     0,
	PhasePostValidation: 1,
	PhasePlugin:         2,
}

// Status is a gate's outcome. Skipped counts as success for overall
// pipeline status; Failed is monotonic — one Failed gate fails the whole
// pipeline regardless of the other gates' order.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Severity classifies a single finding within a gate's result.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Finding is one reported issue from a gate.
type Finding struct {
	Severity Severity
	Message  string
}

// PipelineGateResult is what a gate produces, per spec.
type PipelineGateResult struct {
	GateID     string
	Name       string
	Phase      Phase
	Status     Status
	DurationMs int64
	Message    string
	Findings   []Finding
}

// Gate is a single pipeline step. Implementations never panic; any
// internal failure should surface as a Failed or Skipped result instead.
type Gate interface {
	ID() string
	Name() string
	Phase() Phase
	Run(ctx pipelineContext) PipelineGateResult
}

// pipelineContext is the narrow surface a Gate needs from its run — kept
// unexported and minimal so a new gate kind never has to import more than
// this package to get what it needs.
type pipelineContext = Context

// Context carries whatever a gate needs to evaluate the current change.
type Context struct {
	ProjectRoot string
	Diff        string
}

func timed(fn func() (Status, string, []Finding)) (Status, string, []Finding, time.Duration) {
	start := time.Now()
	status, message, findings := fn()
	return status, message, findings, time.Since(start)
}
