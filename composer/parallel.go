package composer

import (
	"context"
	"strings"
	"sync"
)

// ParallelAgent runs every child concurrently against the same input,
// merges their event streams, rewrites each child's StateUpdate keys to
// "childName.key" so concurrent writers can never collide, swallows each
// child's intermediate Done, and emits one aggregate Done once every
// child has finished, joining their outputs with "\n\n---\n\n" in child
// order (not completion order, so the aggregate is deterministic).
type ParallelAgent struct {
	name     string
	children []Agent
}

func NewParallelAgent(name string, children ...Agent) *ParallelAgent {
	return &ParallelAgent{name: name, children: children}
}

func (a *ParallelAgent) Name() string { return a.name }

func (a *ParallelAgent) Run(ctx context.Context, actx *Context) <-chan Event {
	out := make(chan Event, 16)
	go func() {
		defer close(out)

		if len(a.children) == 0 {
			out <- Err("parallel agent " + a.name + " has no children")
			return
		}

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		outputs := make([]*string, len(a.children))
		errored := make([]bool, len(a.children))

		var wg sync.WaitGroup
		var mu sync.Mutex // guards writes to out from multiple goroutines
		wg.Add(len(a.children))

		for i, child := range a.children {
			go func(i int, child Agent) {
				defer wg.Done()
				childCtx := &Context{Input: actx.Input, State: actx.State, SessionID: actx.SessionID}

				for e := range child.Run(runCtx, childCtx) {
					switch e.Kind {
					case KindStateUpdate:
						mu.Lock()
						out <- StateUpdate(child.Name()+"."+e.StateKey, e.StateValue)
						mu.Unlock()
					case KindDone:
						outputs[i] = e.Output
					case KindError:
						errored[i] = true
						mu.Lock()
						out <- e
						mu.Unlock()
						cancel()
					default:
						mu.Lock()
						out <- e
						mu.Unlock()
					}
				}
			}(i, child)
		}

		wg.Wait()

		for _, failed := range errored {
			if failed {
				return // a child errored: no aggregate Done, matching Sequential's propagate-and-stop
			}
		}

		parts := make([]string, 0, len(outputs))
		for _, o := range outputs {
			if o != nil {
				parts = append(parts, *o)
			}
		}
		out <- DoneWith(strings.Join(parts, "\n\n---\n\n"))
	}()
	return out
}
