// Package event defines UnifiedEvent, the narrow waist every provider
// adapter and every composite agent speaks. It is a flat, tagged union:
// each variant's fields live directly on Event behind a Kind discriminator
// rather than in a recursive payload, so the whole type stays trivially
// JSON-serialisable (mirrors the teacher's a2a.StreamChunk / ChunkType
// tagging in a2a/types.go, generalized to the richer event set the
// orchestration core needs).
package event

import "time"

// Kind discriminates the variant carried by an Event.
type Kind string

const (
	KindTextDelta           Kind = "text_delta"
	KindTextReplace         Kind = "text_replace"
	KindThinkingStart       Kind = "thinking_start"
	KindThinkingDelta       Kind = "thinking_delta"
	KindThinkingEnd         Kind = "thinking_end"
	KindToolStart           Kind = "tool_start"
	KindToolComplete        Kind = "tool_complete"
	KindToolResult          Kind = "tool_result"
	KindUsage               Kind = "usage"
	KindCitation            Kind = "citation"
	KindError               Kind = "error"
	KindComplete            Kind = "complete"
	KindSubAgentStart       Kind = "sub_agent_start"
	KindSubAgentEnd         Kind = "sub_agent_end"
	KindSubAgentWrappedInner Kind = "sub_agent_wrapped_inner"
	KindAgentTransfer       Kind = "agent_transfer"
	KindAnalysisTelemetry   Kind = "analysis_telemetry"
	KindSessionProgress     Kind = "session_progress"
	KindContextCompaction   Kind = "context_compaction"
	KindPermissionRequest   Kind = "permission_request"
	KindPermissionResponse  Kind = "permission_response"
)

// Event is the single event type every adapter, agent, and UI consumer
// exchanges. Only the fields relevant to Kind are populated; this keeps
// serialisation flat (no nested Event-in-Event) at the cost of a wider
// struct, which is the tradeoff the spec's §9 design note calls for.
type Event struct {
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	// Text / thinking deltas.
	Text        string `json:"text,omitempty"`
	ReplacesAll bool   `json:"replaces_all,omitempty"` // TextReplace: UI should replace prior streamed text

	// Tool lifecycle.
	ToolCallID   string         `json:"tool_call_id,omitempty"`
	ToolName     string         `json:"tool_name,omitempty"`
	ToolArgsJSON string         `json:"tool_args_json,omitempty"` // accumulated JSON, set on ToolComplete
	ToolOutput   string         `json:"tool_output,omitempty"`    // verbatim, user-visible (ToolResult)
	ToolSuccess  bool           `json:"tool_success,omitempty"`
	ToolError    string         `json:"tool_error,omitempty"`
	ToolDedup    bool           `json:"tool_dedup,omitempty"`
	ToolMetadata map[string]any `json:"tool_metadata,omitempty"`

	// Usage.
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`

	// Citations.
	CitationSource string `json:"citation_source,omitempty"`
	CitationText   string `json:"citation_text,omitempty"`

	// Errors / completion.
	ErrorMessage string `json:"error_message,omitempty"`
	StopReason   string `json:"stop_reason,omitempty"`

	// Sub-agent bracketing (SubAgentStart/End wrap a child stream; the
	// inner event's tag and payload ride along opaquely rather than being
	// embedded recursively).
	SubAgentID       string         `json:"sub_agent_id,omitempty"`
	SubAgentType     string         `json:"sub_agent_type,omitempty"`
	SubAgentDepth    int            `json:"sub_agent_depth,omitempty"`
	InnerKind        Kind           `json:"inner_kind,omitempty"`
	InnerPayload     map[string]any `json:"inner_payload,omitempty"`
	SubAgentInputTok int            `json:"sub_agent_input_tokens,omitempty"`
	SubAgentOutTok   int            `json:"sub_agent_output_tokens,omitempty"`

	// Agent transfer (handoff between named agents in a composed pipeline).
	TransferFrom string `json:"transfer_from,omitempty"`
	TransferTo   string `json:"transfer_to,omitempty"`

	// Analysis-pipeline telemetry (opaque key/value bag; analysis mode
	// budgets and scoring live outside the unified event model proper).
	AnalysisKey     string         `json:"analysis_key,omitempty"`
	AnalysisPayload map[string]any `json:"analysis_payload,omitempty"`

	// Session progress.
	ProgressLabel   string  `json:"progress_label,omitempty"`
	ProgressPercent float64 `json:"progress_percent,omitempty"`

	// Context compaction.
	CompactedCount int `json:"compacted_count,omitempty"`
	PreservedCount int `json:"preserved_count,omitempty"`

	// Permission request/response (bidirectional rendezvous pair).
	PermissionRequestID string         `json:"permission_request_id,omitempty"`
	PermissionToolName  string         `json:"permission_tool_name,omitempty"`
	PermissionArgs      map[string]any `json:"permission_args,omitempty"`
	PermissionRisk      string         `json:"permission_risk,omitempty"`
	PermissionAllowed   bool           `json:"permission_allowed,omitempty"`
	PermissionAlwaysAllow bool         `json:"permission_always_allow,omitempty"`
}

func now() time.Time { return time.Now() }

// TextDelta, ToolStart, etc. are small constructors so callers (adapters,
// the agentic loop, the composer) don't hand-build Event literals with
// only a handful of fields set — mirrors the teacher's StreamChunk{Type:
// "text", ...} construction sites, generalized to a named constructor per
// variant.

func TextDelta(text string) Event { return Event{Kind: KindTextDelta, Timestamp: now(), Text: text} }

func TextReplace(text string) Event {
	return Event{Kind: KindTextReplace, Timestamp: now(), Text: text, ReplacesAll: true}
}

func ThinkingStart() Event { return Event{Kind: KindThinkingStart, Timestamp: now()} }

func ThinkingDelta(text string) Event {
	return Event{Kind: KindThinkingDelta, Timestamp: now(), Text: text}
}

func ThinkingEnd() Event { return Event{Kind: KindThinkingEnd, Timestamp: now()} }

func ToolStart(callID, name string) Event {
	return Event{Kind: KindToolStart, Timestamp: now(), ToolCallID: callID, ToolName: name}
}

func ToolComplete(callID, name, argsJSON string) Event {
	return Event{Kind: KindToolComplete, Timestamp: now(), ToolCallID: callID, ToolName: name, ToolArgsJSON: argsJSON}
}

func ToolResult(callID, name, output string, success bool, errMsg string, dedup bool) Event {
	return Event{
		Kind: KindToolResult, Timestamp: now(),
		ToolCallID: callID, ToolName: name, ToolOutput: output,
		ToolSuccess: success, ToolError: errMsg, ToolDedup: dedup,
	}
}

func Usage(input, output int) Event {
	return Event{Kind: KindUsage, Timestamp: now(), InputTokens: input, OutputTokens: output}
}

func Citation(source, text string) Event {
	return Event{Kind: KindCitation, Timestamp: now(), CitationSource: source, CitationText: text}
}

func Err(message string) Event {
	return Event{Kind: KindError, Timestamp: now(), ErrorMessage: message}
}

func Complete(stopReason string) Event {
	return Event{Kind: KindComplete, Timestamp: now(), StopReason: stopReason}
}

func SubAgentStart(id, agentType string, depth int) Event {
	return Event{Kind: KindSubAgentStart, Timestamp: now(), SubAgentID: id, SubAgentType: agentType, SubAgentDepth: depth}
}

func SubAgentEnd(id string, depth, inputTok, outputTok int) Event {
	return Event{
		Kind: KindSubAgentEnd, Timestamp: now(), SubAgentID: id, SubAgentDepth: depth,
		SubAgentInputTok: inputTok, SubAgentOutTok: outputTok,
	}
}

// WrapAsSubAgent tags inner (any kind, including a nested sub-agent's own
// events) as belonging to the sub-agent id/depth, without embedding inner
// recursively: its Kind and a flattened field copy travel as InnerKind and
// InnerPayload.
func WrapAsSubAgent(inner Event, id string, depth int) Event {
	return Event{
		Kind:          KindSubAgentWrappedInner,
		Timestamp:     now(),
		SubAgentID:    id,
		SubAgentDepth: depth,
		InnerKind:     inner.Kind,
		InnerPayload:  flatten(inner),
	}
}

func AgentTransfer(from, to string) Event {
	return Event{Kind: KindAgentTransfer, Timestamp: now(), TransferFrom: from, TransferTo: to}
}

func AnalysisTelemetry(key string, payload map[string]any) Event {
	return Event{Kind: KindAnalysisTelemetry, Timestamp: now(), AnalysisKey: key, AnalysisPayload: payload}
}

func SessionProgress(label string, percent float64) Event {
	return Event{Kind: KindSessionProgress, Timestamp: now(), ProgressLabel: label, ProgressPercent: percent}
}

func ContextCompaction(compacted, preserved int) Event {
	return Event{Kind: KindContextCompaction, Timestamp: now(), CompactedCount: compacted, PreservedCount: preserved}
}

func PermissionRequest(requestID, toolName, risk string, args map[string]any) Event {
	return Event{
		Kind: KindPermissionRequest, Timestamp: now(),
		PermissionRequestID: requestID, PermissionToolName: toolName, PermissionRisk: risk, PermissionArgs: args,
	}
}

func PermissionResponse(requestID string, allowed, alwaysAllow bool) Event {
	return Event{
		Kind: KindPermissionResponse, Timestamp: now(),
		PermissionRequestID: requestID, PermissionAllowed: allowed, PermissionAlwaysAllow: alwaysAllow,
	}
}

// flatten renders an Event's non-zero fields as a map, used only for
// opaque inner payloads — never for primary serialisation of a top-level
// Event, which marshals directly via its JSON tags.
func flatten(e Event) map[string]any {
	m := make(map[string]any, 8)
	if e.Text != "" {
		m["text"] = e.Text
	}
	if e.ToolCallID != "" {
		m["tool_call_id"] = e.ToolCallID
	}
	if e.ToolName != "" {
		m["tool_name"] = e.ToolName
	}
	if e.ToolArgsJSON != "" {
		m["tool_args_json"] = e.ToolArgsJSON
	}
	if e.ToolOutput != "" {
		m["tool_output"] = e.ToolOutput
	}
	if e.ToolError != "" {
		m["tool_error"] = e.ToolError
	}
	if e.ToolSuccess {
		m["tool_success"] = e.ToolSuccess
	}
	if e.ToolDedup {
		m["tool_dedup"] = e.ToolDedup
	}
	if e.ErrorMessage != "" {
		m["error_message"] = e.ErrorMessage
	}
	if e.StopReason != "" {
		m["stop_reason"] = e.StopReason
	}
	if e.InputTokens != 0 || e.OutputTokens != 0 {
		m["input_tokens"] = e.InputTokens
		m["output_tokens"] = e.OutputTokens
	}
	return m
}
