// Package tool defines the bundled tool trait, the per-loop execution
// context (read cache, read-before-write enforcement, task dedup), and the
// canonical tool set that ships with the orchestration core: Read, Write,
// Edit, MultiEdit, LS, Glob, Grep, Bash, Cwd, CodebaseSearch, and Task.
package tool

import (
	"context"
	"encoding/json"

	"github.com/arborcode/agentcore/event"
	"github.com/invopop/jsonschema"
)

// RiskClass classifies a tool call for the permission gate, mirroring the
// teacher's read-only/mutating split but adding a Dangerous tier for
// commands whose arguments escalate risk (e.g. a Bash command matching a
// destructive pattern).
type RiskClass string

const (
	RiskReadOnly  RiskClass = "read_only"
	RiskSafeWrite RiskClass = "safe_write"
	RiskDangerous RiskClass = "dangerous"
)

// Parameter describes one entry of a tool's input schema, parallel to the
// teacher's tools.ToolParameter but carried alongside a generated JSON
// Schema document rather than replacing it.
type Parameter struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Info is the metadata surfaced to the model and to UIs, analogous to the
// teacher's tools.ToolInfo.
type Info struct {
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Parameters      []Parameter `json:"parameters,omitempty"`
	Schema          *jsonschema.Schema `json:"schema,omitempty"`
	IsParallelSafe  bool        `json:"is_parallel_safe"`
	IsLongRunning   bool        `json:"is_long_running"`
	DefaultRisk     RiskClass   `json:"default_risk"`
	Source          string      `json:"source,omitempty"` // "local" or an MCP server URL
}

// Result is the outcome of one tool execution. Content is the verbatim,
// untruncated payload; truncation for the model-visible message vector is
// applied by the orchestrator, never by the tool itself.
type Result struct {
	Success  bool           `json:"success"`
	Content  string         `json:"content,omitempty"`
	Error    string         `json:"error,omitempty"`
	ToolName string         `json:"tool_name"`
	Metadata map[string]any `json:"metadata,omitempty"`
	IsDedup  bool           `json:"is_dedup,omitempty"`

	// SubEvents carries a spawned sub-agent's tagged event transcript
	// (already wrapped via event.WrapAsSubAgent) for the Task tool only.
	// The orchestrator replays these onto its own output stream, in
	// order, immediately before emitting the ToolResult for the call
	// that produced them — not serialized as part of the tool result
	// payload itself.
	SubEvents []event.Event `json:"-"`
}

// Tool is the trait object every bundled and host-registered tool
// implements, deliberately small so hosts can add tools without importing
// this package's internals.
type Tool interface {
	Info() Info
	Execute(ctx context.Context, execCtx *ExecutionContext, args map[string]any) (Result, error)
}

// RiskClassifier lets a tool upgrade its default risk based on the actual
// call arguments (e.g. a Bash call whose command matches a deny pattern).
// Tools that don't need argument-sensitive risk just return Info().DefaultRisk.
type RiskClassifier interface {
	ClassifyRisk(args map[string]any) RiskClass
}

func marshalArgs(args map[string]any) string {
	b, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// GenerateSchema builds a JSON Schema document for an argument struct type,
// letting tools with richer input shapes than a flat Parameter list (e.g.
// MultiEdit's nested edit operations) advertise a precise schema to the
// model instead of hand-rolled Parameter entries.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		RequiredFromJSONSchemaTags: false,
	}
	var zero T
	return reflector.Reflect(zero)
}
