package quality

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// CommandGate shells out to a validation command (typecheck, test, lint —
// whichever a project-type detector picked) with a timeout. A non-zero
// exit produces Failed with stdout+stderr captured as a single finding;
// a missing executable produces Skipped rather than Failed, so an
// optional tool absent from a given project doesn't fail the pipeline.
type CommandGate struct {
	id, name string
	phase    Phase
	command  string
	args     []string
	dir      string
	timeout  time.Duration
}

func NewCommandGate(id, name string, phase Phase, command string, args []string, dir string, timeout time.Duration) *CommandGate {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &CommandGate{id: id, name: name, phase: phase, command: command, args: args, dir: dir, timeout: timeout}
}

func (g *CommandGate) ID() string   { return g.id }
func (g *CommandGate) Name() string { return g.name }
func (g *CommandGate) Phase() Phase { return g.phase }

func (g *CommandGate) Run(pctx Context) PipelineGateResult {
	status, message, findings, duration := timed(func() (Status, string, []Finding) {
		ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, g.command, g.args...)
		if g.dir != "" {
			cmd.Dir = g.dir
		} else if pctx.ProjectRoot != "" {
			cmd.Dir = pctx.ProjectRoot
		}

		var out bytes.Buffer
		cmd.Stdout = &out
		cmd.Stderr = &out

		err := cmd.Run()
		if err != nil {
			var execErr *exec.Error
			if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
				return StatusSkipped, g.command + " not found", nil
			}
			return StatusFailed, g.command + " exited with an error", []Finding{
				{Severity: SeverityError, Message: out.String()},
			}
		}
		return StatusPassed, "", nil
	})

	return PipelineGateResult{
		GateID:     g.id,
		Name:       g.name,
		Phase:      g.phase,
		Status:     status,
		DurationMs: duration.Milliseconds(),
		Message:    message,
		Findings:   findings,
	}
}
