// Package plan models a dependency-DAG execution plan — steps, their
// string-id dependencies, and the batches a topological analysis groups
// them into — and the analyzer that turns a flat step list into that
// structure plus the auxiliary metrics a scheduler or a UI wants
// (critical path, bottlenecks, parallel width).
package plan

import "time"

// StepStatus mirrors the teacher's workflow.StepStatus set, trimmed to the
// states this plan's step executor actually transitions through (no
// "Ready" state here: readiness is implicit in which batch a step landed
// in, not tracked per-step).
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepCancelled StepStatus = "cancelled"
)

// Step is one unit of work in a plan: an id, a short title, a prose
// description of the work, the completion criteria a step is judged
// against, the ids of steps it depends on, the output format the step is
// expected to produce, and an optional persona name the executor's
// Adapter uses to pick a prompt template and temperature.
type Step struct {
	ID                   string
	Title                string
	Description          string
	CompletionCriteria   []string
	DependsOn            []string
	ExpectedOutputFormat string
	Persona              string
}

// StepOutput is what running a Step produced, mirroring the shape of the
// teacher's workflow.AgentResult (success/error/duration/timestamp)
// narrowed to what a single plan step needs. Format echoes the step's
// ExpectedOutputFormat when the step completed; CriteriaSatisfied is the
// subset of the step's CompletionCriteria the Adapter judged met; Artifacts
// names any files or resources the step produced, for a dependent step or
// a caller to reference without re-parsing Content.
type StepOutput struct {
	StepID            string
	Content           string
	Format            string
	CriteriaSatisfied []string
	Artifacts         []string
	Success           bool
	Error             string
	Status            StepStatus
	Duration          time.Duration
	Timestamp         time.Time
}

// Batch is a set of steps whose dependencies are all satisfied by the
// time the batch runs — every step in a batch can run concurrently.
type Batch struct {
	Index int
	Steps []Step
}

// Plan is the full flat step list an analyzer turns into Batches.
type Plan struct {
	Name  string
	Steps []Step
}
