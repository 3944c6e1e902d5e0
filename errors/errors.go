// Package errors defines the core's error taxonomy: a small, closed set of
// kinds that every component returns instead of ad-hoc error strings, so
// callers (the orchestrator, the step executor, the UI) can branch on
// Kind without string-matching messages.
package errors

import "fmt"

// Kind is one of the taxonomy entries from the orchestration core's error
// handling design: validation failures, permission denials, stale writes,
// tool execution failures, provider failures, timeouts, cancellation, and
// internal invariant violations.
type Kind string

const (
	Validation    Kind = "validation"
	Permission    Kind = "permission"
	StaleWrite    Kind = "stale_write"
	ToolExecution Kind = "tool_execution"
	Provider      Kind = "provider"
	Timeout       Kind = "timeout"
	Cancelled     Kind = "cancelled"
	Internal      Kind = "internal"
)

// Error is the core's error type: a component, the operation that failed,
// a kind, a human message, and an optional wrapped cause.
type Error struct {
	Component string
	Operation string
	Kind      Kind
	Message   string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s (%s): %v", e.Component, e.Operation, e.Message, e.Kind, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s (%s)", e.Component, e.Operation, e.Message, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, errors.New(..., Kind, ...)) style kind checks
// when the target is also an *Error; otherwise it falls back to identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	return true
}

// New constructs a tagged *Error.
func New(component, operation string, kind Kind, message string, cause error) *Error {
	return &Error{Component: component, Operation: operation, Kind: kind, Message: message, Err: cause}
}

// KindOf returns the Kind carried by err if it (or something it wraps) is
// an *Error, and Internal otherwise — callers that need to branch on kind
// should prefer errors.As over this, but this is convenient for logging.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return Internal
}
