// Package provider defines the LLM provider contract the orchestrator
// drives, and the StreamAdapter implementations that turn each provider's
// wire format into event.Event. The core never speaks a specific
// provider's protocol directly outside this package (spec §6, §1
// Non-goals): the orchestrator only ever sees Provider.
package provider

import (
	"context"

	"github.com/arborcode/agentcore/event"
)

// Role is a chat message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn in the conversation sent to a provider. ToolCalls is
// populated on assistant messages that requested tools; ToolCallID and
// ToolName are populated on tool-result messages sent back to the model.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
}

// ToolCall is a single tool invocation the model requested, with its
// arguments as the accumulated raw JSON string (parsed lazily by the
// caller) — mirrors the teacher's ToolCall{ID,Name,Arguments,RawArgs} in
// llms/anthropic.go, minus the pre-parsed Arguments map: the orchestration
// core treats argument parsing as the tool registry's job (§4.3), not the
// provider adapter's.
type ToolCall struct {
	ID      string
	Name    string
	RawArgs string
}

// ToolDefinition describes a tool's schema to the provider, independent of
// the tool registry's own Tool interface (providers want name+description+
// JSON schema only).
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// StreamOptions carries per-request generation parameters.
type StreamOptions struct {
	MaxTokens   int
	Temperature float64
	SystemPrompt string
}

// Provider is the contract the orchestrator drives. Implementations are
// provider-specific but must respect the unified-event adapter contract:
// the same logical event converts to the same Event variant regardless of
// provider, and tool-call streaming emits exactly one ToolStart followed
// by exactly one ToolComplete per call.
type Provider interface {
	// Name identifies the provider (e.g. "anthropic", "openai", "ollama").
	Name() string

	// StreamMessage sends messages+tools to the provider and returns a
	// channel of unified events. The channel is closed when the stream
	// ends (successfully or in error); a terminal error is delivered as a
	// KindError event before the channel closes.
	StreamMessage(ctx context.Context, messages []Message, tools []ToolDefinition, opts StreamOptions) (<-chan event.Event, error)
}

// RetryClassifier tells the orchestrator whether a Provider error is
// transient (should be retried) or terminal (should surface as Error and
// end the loop), per spec §7's Provider error kind.
type RetryClassifier interface {
	IsTransient(err error) bool
}
