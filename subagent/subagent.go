// Package subagent implements the bounded-concurrency Task-tool spawner:
// it runs a child agentic loop under a depth guard and a process-wide
// semaphore and tags the child's event transcript for replay on the
// parent's stream. It caches nothing itself: task dedup and the
// narration filter live in the Task tool (tool/task.go).
package subagent

import (
	"context"

	"github.com/arborcode/agentcore/event"
	"github.com/arborcode/agentcore/tool"
	"github.com/google/uuid"
)

// Type is one of the four sub-agent flavors the spawner understands. The
// tool set each gets is enforced by which tools are registered on the
// child's Registry, not by this package — ToolSetFor documents the
// canonical binding hosts should follow when building that registry.
type Type string

const (
	TypeExplore        Type = "explore"
	TypePlan           Type = "plan"
	TypeGeneralPurpose Type = "general-purpose"
	TypeBash           Type = "bash"
)

// ToolSetFor returns the canonical bundled-tool names a host should expose
// to a child of the given type.
func ToolSetFor(t Type) []string {
	switch t {
	case TypeExplore, TypePlan:
		return []string{"Read", "Glob", "Grep", "LS", "CodebaseSearch"}
	case TypeGeneralPurpose:
		return []string{"Read", "Write", "Edit", "MultiEdit", "LS", "Glob", "Grep", "Bash", "Cwd", "CodebaseSearch", "Task"}
	case TypeBash:
		return []string{"Bash", "Cwd"}
	default:
		return []string{"Read", "Glob", "Grep", "LS", "CodebaseSearch"}
	}
}

// LoopResult is what a child agentic loop run produces: its final
// assistant-visible text, the full unified-event transcript it emitted in
// order, and the token totals consumed across that run (for SubAgentEnd's
// usage summary).
type LoopResult struct {
	FinalText    string
	Events       []event.Event
	InputTokens  int
	OutputTokens int
}

// LoopRunner runs one complete child agentic loop to completion and
// returns its result. The orchestrator package supplies the real
// implementation at construction time; this package never imports
// orchestrator, avoiding a cycle (orchestrator imports tool, tool's
// SpawnerHandle is implemented here, and this package only needs a
// function value, not the orchestrator's types).
type LoopRunner func(ctx context.Context, execCtx *tool.ExecutionContext, agentType Type, prompt string) (LoopResult, error)

// Spawner implements tool.SpawnerHandle: bounded-concurrency, depth-guarded
// sub-agent execution with tagged event wrapping. Spawn always reports
// cached=false.
type Spawner struct {
	sem     chan struct{}
	runLoop LoopRunner
}

// NewSpawner builds a spawner whose process-wide semaphore allows at most
// concurrency simultaneous child LLM calls, held for the entire child
// invocation (not just the call that kicks it off).
func NewSpawner(concurrency int, runLoop LoopRunner) *Spawner {
	if concurrency <= 0 {
		concurrency = 2
	}
	return &Spawner{sem: make(chan struct{}, concurrency), runLoop: runLoop}
}

// Spawn implements tool.SpawnerHandle. Depth-limit enforcement for
// general-purpose children happens in the Task tool itself (see
// tool/task.go), not here — Spawn assumes its caller already validated
// the call is allowed to proceed.
//
// ctx is the parent conversation's cancellation token. If it is cancelled
// while a child is running, Spawn stops waiting and returns immediately;
// the child's own runLoop still holds ctx and keeps going until it
// reaches its own cooperative cancel point, so a cancelled Spawn does not
// mean the child stopped, only that the caller no longer waits on it.
func (s *Spawner) Spawn(ctx context.Context, execCtx *tool.ExecutionContext, agentType, prompt string) (string, bool, []event.Event, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return "", false, nil, ctx.Err()
	}

	child := execCtx.ChildContext()
	subAgentID := uuid.NewString()

	type outcome struct {
		result LoopResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() { <-s.sem }()
		result, err := s.runLoop(ctx, child, Type(agentType), prompt)
		done <- outcome{result, err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return "", false, nil, o.err
		}
		tagged := make([]event.Event, 0, len(o.result.Events)+2)
		tagged = append(tagged, event.SubAgentStart(subAgentID, agentType, child.Depth))
		for _, e := range o.result.Events {
			tagged = append(tagged, event.WrapAsSubAgent(e, subAgentID, child.Depth))
		}
		tagged = append(tagged, event.SubAgentEnd(subAgentID, child.Depth, o.result.InputTokens, o.result.OutputTokens))
		return o.result.FinalText, false, tagged, nil
	case <-ctx.Done():
		return "", false, nil, ctx.Err()
	}
}
