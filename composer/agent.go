package composer

import "context"

// Context is what a composed agent runs with: the text input it should
// act on, the shared state blackboard (the same instance flows down
// through every level of a composition), and the session id a leaf
// forwards into its permission gate checks.
type Context struct {
	Input     string
	State     *SharedState
	SessionID string
}

// Agent is the capability every composed node shares: sequential,
// parallel, conditional, and LLM-backed leaves are all just Agents, so a
// pipeline can nest them arbitrarily deep without the caller caring which
// kind it's holding.
type Agent interface {
	Name() string
	Run(ctx context.Context, actx *Context) <-chan Event
}
