package composer

import "context"

// SequentialAgent runs its children one after another, feeding each
// child's Done output as the input text to the next. Every event from
// every child — including each child's own Done — is forwarded verbatim,
// so the last child's Done doubles as the pipeline's own terminal event;
// SequentialAgent never synthesizes one of its own.
type SequentialAgent struct {
	name     string
	children []Agent
}

func NewSequentialAgent(name string, children ...Agent) *SequentialAgent {
	return &SequentialAgent{name: name, children: children}
}

func (a *SequentialAgent) Name() string { return a.name }

func (a *SequentialAgent) Run(ctx context.Context, actx *Context) <-chan Event {
	out := make(chan Event, 16)
	go func() {
		defer close(out)

		if len(a.children) == 0 {
			out <- Err("sequential agent " + a.name + " has no children")
			return
		}

		currentInput := actx.Input
		for _, child := range a.children {
			childCtx := &Context{Input: currentInput, State: actx.State, SessionID: actx.SessionID}
			childDone := false

			for e := range child.Run(ctx, childCtx) {
				out <- e
				switch e.Kind {
				case KindDone:
					childDone = true
					if e.Output != nil {
						currentInput = *e.Output
					} else {
						currentInput = ""
					}
				case KindError:
					return // propagate and stop, per spec
				}
			}
			if !childDone {
				return
			}
		}
	}()
	return out
}
