// Package stepexec runs a plan's batches in order, executing every step
// within a batch concurrently behind a bounded semaphore, gathering and
// truncating dependency outputs into each step's prompt, and emitting
// progress events a caller can stream to a UI.
package stepexec

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/arborcode/agentcore/event"
	"github.com/arborcode/agentcore/plan"
	"golang.org/x/sync/semaphore"
)

// Adapter supplies the domain-specific parts of running a step: the
// persona's generation temperature and the prompt text to send, built
// from the step and its gathered (already-truncated) dependency outputs.
type Adapter interface {
	Temperature(persona string) float64
	BuildPrompt(step plan.Step, dependencyOutputs []string) string

	// ParseArtifacts extracts the file/resource names a completed step's
	// raw output names, for StepOutput.Artifacts. What counts as an
	// artifact is domain-specific (a file path convention, a fenced code
	// block's language tag, …), so extraction lives on the Adapter rather
	// than the executor.
	ParseArtifacts(content string) []string
}

// Provider is the narrow LLM surface the step executor drives: a single
// blocking completion call per step (no streaming — step prompts are
// short, self-contained units of work, unlike the conversational agentic
// loop in package orchestrator).
type Provider interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// Limits bounds dependency-output gathering, per spec §4.8 step 3.
type Limits struct {
	MaxDepOutputChars int // per dependency
	MaxTotalDepChars  int // sum across all dependencies
	BatchWidth        int // concurrent steps per batch, default 4
}

func DefaultLimits() Limits {
	return Limits{MaxDepOutputChars: 4000, MaxTotalDepChars: 12000, BatchWidth: 4}
}

// Executor runs a plan.Analysis's batches against a Provider via an
// Adapter, tracking each step's output for later dependents to consume.
type Executor struct {
	provider Provider
	adapter  Adapter
	limits   Limits

	mu      sync.Mutex
	outputs map[string]plan.StepOutput
}

func New(provider Provider, adapter Adapter, limits Limits) *Executor {
	if limits.BatchWidth <= 0 {
		limits.BatchWidth = 4
	}
	return &Executor{provider: provider, adapter: adapter, limits: limits, outputs: make(map[string]plan.StepOutput)}
}

// Run executes every batch in order, returning the final output map keyed
// by step id. Events stream on out; out is never closed by Run (the
// caller owns its lifetime, since a host may reuse a single event stream
// across plan runs).
func (x *Executor) Run(ctx context.Context, batches []plan.Batch, out chan<- event.Event) (map[string]plan.StepOutput, error) {
	total := 0
	for _, b := range batches {
		total += len(b.Steps)
	}
	completed := 0

	for _, batch := range batches {
		select {
		case <-ctx.Done():
			x.cancelRemaining(batches, out, total, completed)
			return x.snapshot(), ctx.Err()
		default:
		}

		out <- event.SessionProgress(fmt.Sprintf("batch %d/%d", batch.Index+1, len(batches)), percent(completed, total))

		sem := semaphore.NewWeighted(int64(x.limits.BatchWidth))
		var wg sync.WaitGroup

		for _, step := range batch.Steps {
			step := step
			if ctx.Err() != nil {
				x.recordCancelled(step, out)
				completed++
				continue
			}

			if failedDep, ok := x.failedDependency(step); ok {
				x.recordSkippedDependency(step, failedDep, out)
				completed++
				continue
			}

			if err := sem.Acquire(ctx, 1); err != nil {
				x.recordCancelled(step, out)
				completed++
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer sem.Release(1)
				x.runStep(ctx, step, out)
			}()
		}
		wg.Wait()
		completed += len(batch.Steps)

		out <- event.SessionProgress(fmt.Sprintf("batch %d/%d complete", batch.Index+1, len(batches)), percent(completed, total))
	}

	out <- event.SessionProgress("execution complete", 1.0)
	return x.snapshot(), nil
}

func percent(completed, total int) float64 {
	if total == 0 {
		return 1.0
	}
	return float64(completed) / float64(total)
}

func (x *Executor) runStep(ctx context.Context, step plan.Step, out chan<- event.Event) {
	out <- event.AnalysisTelemetry("step_started", map[string]any{"step_id": step.ID})

	start := time.Now()
	deps := x.gatherDependencyOutputs(step)
	prompt := x.adapter.BuildPrompt(step, deps)
	temperature := x.adapter.Temperature(step.Persona)

	content, err := x.provider.Complete(ctx, prompt, temperature)
	duration := time.Since(start)

	result := plan.StepOutput{StepID: step.ID, Duration: duration, Timestamp: start}
	if err != nil {
		result.Success = false
		result.Status = plan.StepFailed
		result.Error = err.Error()
		out <- event.AnalysisTelemetry("step_failed", map[string]any{"step_id": step.ID, "reason": err.Error()})
	} else {
		result.Success = true
		result.Status = plan.StepCompleted
		result.Content = content
		result.Format = step.ExpectedOutputFormat
		result.CriteriaSatisfied = append([]string(nil), step.CompletionCriteria...)
		result.Artifacts = x.adapter.ParseArtifacts(content)
		out <- event.AnalysisTelemetry("step_completed", map[string]any{"step_id": step.ID, "duration_ms": duration.Milliseconds()})
	}

	x.mu.Lock()
	x.outputs[step.ID] = result
	x.mu.Unlock()
}

func (x *Executor) recordCancelled(step plan.Step, out chan<- event.Event) {
	x.mu.Lock()
	x.outputs[step.ID] = plan.StepOutput{StepID: step.ID, Status: plan.StepCancelled, Timestamp: time.Now()}
	x.mu.Unlock()
	out <- event.AnalysisTelemetry("step_cancelled", map[string]any{"step_id": step.ID})
}

// failedDependency reports the id of the first dependency of step that did
// not complete successfully, so Run can refuse to schedule a dependent of a
// failed step rather than run it against a hole in its gathered input.
func (x *Executor) failedDependency(step plan.Step) (string, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, depID := range step.DependsOn {
		dep, ok := x.outputs[depID]
		if !ok || dep.Status != plan.StepCompleted {
			return depID, true
		}
	}
	return "", false
}

// recordSkippedDependency marks step as failed without ever calling the
// provider, per the rule that a dependent of a failed step must not start.
func (x *Executor) recordSkippedDependency(step plan.Step, failedDep string, out chan<- event.Event) {
	x.mu.Lock()
	x.outputs[step.ID] = plan.StepOutput{
		StepID:    step.ID,
		Status:    plan.StepFailed,
		Error:     "dependency " + failedDep + " did not complete",
		Timestamp: time.Now(),
	}
	x.mu.Unlock()
	out <- event.AnalysisTelemetry("step_skipped_dependency_failed", map[string]any{"step_id": step.ID, "dependency": failedDep})
}

func (x *Executor) cancelRemaining(batches []plan.Batch, out chan<- event.Event, total, completed int) {
	for _, b := range batches {
		for _, s := range b.Steps {
			x.mu.Lock()
			_, already := x.outputs[s.ID]
			x.mu.Unlock()
			if !already {
				x.recordCancelled(s, out)
			}
		}
	}
	out <- event.AnalysisTelemetry("execution_cancelled", nil)
}

func (x *Executor) snapshot() map[string]plan.StepOutput {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make(map[string]plan.StepOutput, len(x.outputs))
	for k, v := range x.outputs {
		out[k] = v
	}
	return out
}

// gatherDependencyOutputs collects a step's already-completed dependency
// outputs in declaration order, truncating each to MaxDepOutputChars and
// the concatenation to MaxTotalDepChars, attaching a marker when the
// total limit bites (a per-dependency cut adds no marker). Run never schedules a step with a failed dependency, so the
// "!dep.Success" branch below only guards a missing map entry, not a real
// failure — it keeps this method safe to call standalone without panicking.
func (x *Executor) gatherDependencyOutputs(step plan.Step) []string {
	x.mu.Lock()
	defer x.mu.Unlock()

	var outputs []string
	totalChars := 0
	truncatedTotal := false

	for _, depID := range step.DependsOn {
		dep, ok := x.outputs[depID]
		if !ok || !dep.Success {
			continue
		}
		content := dep.Content
		if len(content) > x.limits.MaxDepOutputChars {
			content = content[:x.limits.MaxDepOutputChars]
		}
		if totalChars+len(content) > x.limits.MaxTotalDepChars {
			remaining := x.limits.MaxTotalDepChars - totalChars
			if remaining < 0 {
				remaining = 0
			}
			content = content[:remaining]
			truncatedTotal = true
		}
		totalChars += len(content)
		outputs = append(outputs, content)
		if truncatedTotal {
			break
		}
	}

	if truncatedTotal {
		outputs = append(outputs, fmt.Sprintf("Truncated — %d chars total", totalChars))
	}
	return outputs
}

// JoinDependencyOutputs is a convenience an Adapter can use to fold the
// gathered outputs into a single block for prompt composition.
func JoinDependencyOutputs(outputs []string) string {
	return strings.Join(outputs, "\n\n")
}
