// Package composer builds composite agents — sequential, parallel,
// conditional, and a single LLM-backed leaf — over a small shared event
// protocol, so a multi-agent pipeline can be assembled and run the same
// way regardless of how deep the composition nests.
package composer

import "github.com/arborcode/agentcore/event"

// Kind discriminates a composer Event. It is deliberately smaller than
// event.Kind: a composed agent's caller only ever needs to know "here is
// some output", "a shared-state key changed", "a child finished", or "a
// child failed" — everything else from the underlying agentic loop rides
// along unwrapped as a Passthrough so UIs keep seeing live text/tool
// activity from whichever leaf is currently running.
type Kind string

const (
	KindPassthrough Kind = "passthrough"
	KindStateUpdate Kind = "state_update"
	KindDone        Kind = "done"
	KindError       Kind = "error"
)

// Event is the value every Agent's Run channel carries.
type Event struct {
	Kind Kind

	// Passthrough carries an unmapped unified event verbatim (text deltas,
	// tool lifecycle events, permission requests, and so on).
	Passthrough event.Event

	// StateUpdate.
	StateKey   string
	StateValue any

	// Done. Output is nil for "no output" (spec's Option<String>::None);
	// when a leaf's own provider/tool error ends its run, LlmAgent puts
	// that error's text in Output (its "Done{Some(error)} on Error" rule).
	Output *string

	// Error — a composite agent's own propagated failure (validation,
	// or "stop because a child errored"), distinct from a leaf folding a
	// recoverable-looking provider error into a Done.
	ErrorMessage string
}

// Passthrough wraps a unified event for forwarding.
func Passthrough(e event.Event) Event { return Event{Kind: KindPassthrough, Passthrough: e} }

// StateUpdate reports a shared-state write.
func StateUpdate(key string, value any) Event {
	return Event{Kind: KindStateUpdate, StateKey: key, StateValue: value}
}

// Done signals a child finished. output == nil means no output produced.
func Done(output *string) Event { return Event{Kind: KindDone, Output: output} }

// DoneWith is a convenience constructor for a non-nil output string.
func DoneWith(output string) Event { return Done(&output) }

// Err signals a composite agent's own failure.
func Err(message string) Event { return Event{Kind: KindError, ErrorMessage: message} }

// droppedFromPassthrough is the set of unified event kinds that never
// cross into the composer protocol: usage accounting, thinking-block
// chatter, and analysis-pipeline telemetry have no composer-level
// meaning, per the spec's explicit drop list.
var droppedFromPassthrough = map[event.Kind]bool{
	event.KindUsage:             true,
	event.KindThinkingStart:     true,
	event.KindThinkingDelta:     true,
	event.KindThinkingEnd:       true,
	event.KindAnalysisTelemetry: true,
}

// mappable reports whether a unified event should be forwarded as a
// Passthrough at all.
func mappable(e event.Event) bool { return !droppedFromPassthrough[e.Kind] }
