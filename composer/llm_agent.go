package composer

import (
	"context"

	"github.com/arborcode/agentcore/event"
	"github.com/arborcode/agentcore/orchestrator"
)

// LoopFactory builds the orchestrator.Loop an LlmAgent should run for one
// invocation. It is a factory rather than a pre-built Loop because a Loop
// is single-use (it owns an accumulating history) and because the
// instruction/system-prompt composition needs actx (shared state, session
// id) that isn't known until Run is called.
type LoopFactory func(actx *Context, instruction string) *orchestrator.Loop

// LlmAgent adapts the agentic loop to the Agent interface: it runs the
// loop on actx.Input, forwards every unified event the composer protocol
// can represent, and folds the loop's outcome into a single terminal Done
// — output nil on a clean Complete, output set to the error text if the
// loop ever emitted an Error.
type LlmAgent struct {
	name        string
	instruction string
	newLoop     LoopFactory
}

func NewLlmAgent(name, instruction string, newLoop LoopFactory) *LlmAgent {
	return &LlmAgent{name: name, instruction: instruction, newLoop: newLoop}
}

func (a *LlmAgent) Name() string { return a.name }

func (a *LlmAgent) Run(ctx context.Context, actx *Context) <-chan Event {
	out := make(chan Event, 16)
	go func() {
		defer close(out)

		loop := a.newLoop(actx, a.instruction)

		var sawError bool
		var errMsg string

		for e := range loop.Run(ctx, actx.Input) {
			if mappable(e) {
				out <- Passthrough(e)
			}
			switch e.Kind {
			case event.KindError:
				sawError = true
				errMsg = e.ErrorMessage
			case event.KindComplete:
				if sawError {
					out <- DoneWith(errMsg)
				} else {
					out <- Done(nil)
				}
				return
			}
		}

		// The loop's own contract always ends with Complete before
		// closing its channel; this only fires if that contract is
		// somehow violated, and still has to produce a terminal Done so
		// a parent Sequential/Parallel agent doesn't hang forever.
		if sawError {
			out <- DoneWith(errMsg)
		} else {
			out <- Done(nil)
		}
	}()
	return out
}
