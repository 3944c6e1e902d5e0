package composer

import "context"

// ConditionalAgent reads conditionKey from the shared state, dispatches to
// the matching branch, and runs it with the same input. If nothing
// matches and no default branch is configured, it emits an immediate Done
// with no output rather than erroring — an unmatched condition is a valid
// outcome (e.g. "no review needed"), not a pipeline failure.
type ConditionalAgent struct {
	name          string
	conditionKey  string
	branches      map[string]Agent
	defaultBranch Agent
}

func NewConditionalAgent(name, conditionKey string, branches map[string]Agent, defaultBranch Agent) *ConditionalAgent {
	return &ConditionalAgent{name: name, conditionKey: conditionKey, branches: branches, defaultBranch: defaultBranch}
}

func (a *ConditionalAgent) Name() string { return a.name }

func (a *ConditionalAgent) Run(ctx context.Context, actx *Context) <-chan Event {
	out := make(chan Event, 16)
	go func() {
		defer close(out)

		var branch Agent
		if actx.State != nil {
			if v, ok := actx.State.Get(a.conditionKey); ok {
				if key, ok := v.(string); ok {
					branch = a.branches[key]
				}
			}
		}
		if branch == nil {
			branch = a.defaultBranch
		}
		if branch == nil {
			out <- Done(nil)
			return
		}

		childCtx := &Context{Input: actx.Input, State: actx.State, SessionID: actx.SessionID}
		for e := range branch.Run(ctx, childCtx) {
			out <- e
		}
	}()
	return out
}
