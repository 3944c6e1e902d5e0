// Package orchestrator implements the agentic loop: stream a provider's
// response, accumulate tool calls, run each through the permission gate
// and the tool registry, truncate results into the history, and repeat
// until the model stops asking for tools (or a budget/cancellation/stop
// reason ends the run). It is the seam every StreamAdapter, tool, and the
// permission gate were built to plug into.
package orchestrator

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/arborcode/agentcore/event"
	"github.com/arborcode/agentcore/permission"
	"github.com/arborcode/agentcore/provider"
	"github.com/arborcode/agentcore/subagent"
	"github.com/arborcode/agentcore/tool"
)

// terminalStopReasons are provider stop reasons that end a run outright
// even if the last turn happened to carry tool calls — a safety stop
// (content filtering) or a hard length cutoff should never be followed by
// "so now run the tools anyway".
var terminalStopReasons = map[string]bool{
	"stop_sequence":  true,
	"max_tokens":     true,
	"content_filter": true,
	"error":          true,
}

func isTerminalStopReason(r string) bool { return terminalStopReasons[r] }

// Options configures one Loop. Provider, Registry, and a SessionID are
// required; everything else has a usable zero value or default.
type Options struct {
	Provider  provider.Provider
	Registry  *tool.Registry
	Gate      *permission.Gate
	SessionID string

	SystemPrompt string
	Skills       string
	Knowledge    string

	MaxIterations  int
	MaxTotalTokens int

	StreamOptions provider.StreamOptions
	Compaction    CompactionConfig
	TokenCounter  TokenCounter

	// ChildRegistryFor lets a host hand a sub-agent a narrower tool
	// registry than the parent's (per subagent.ToolSetFor). If nil,
	// RunChild reuses the parent's full registry.
	ChildRegistryFor func(agentType subagent.Type) *tool.Registry
}

type pendingToolCall struct {
	id       string
	name     string
	argsJSON string
}

// Loop runs one conversation's agentic loop. A Loop is single-use: build
// a fresh one (via New) per conversation turn sequence, since it owns the
// accumulating message history and running token totals.
type Loop struct {
	opts    Options
	execCtx *tool.ExecutionContext
	history []provider.Message

	totalInputTokens  int
	totalOutputTokens int
}

// New builds a Loop bound to execCtx. execCtx supplies the read cache,
// read-before-write enforcement, and (for general-purpose agents) the
// Task tool's spawner handle.
func New(opts Options, execCtx *tool.ExecutionContext) *Loop {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 25
	}
	if opts.TokenCounter == nil {
		opts.TokenCounter = NewTiktokenCounter()
	}
	return &Loop{opts: opts, execCtx: execCtx}
}

func (l *Loop) composedSystemPrompt() string {
	var parts []string
	if l.opts.SystemPrompt != "" {
		parts = append(parts, l.opts.SystemPrompt)
	}
	if l.opts.Skills != "" {
		parts = append(parts, "## Available skills\n"+l.opts.Skills)
	}
	if l.opts.Knowledge != "" {
		parts = append(parts, "## Knowledge context\n"+l.opts.Knowledge)
	}
	return strings.Join(parts, "\n\n")
}

// Run starts the loop against userPrompt and returns a channel of unified
// events. The channel is closed when the loop terminates; a final
// Complete event (or, on a provider error, an Error followed by Complete)
// is always the last thing sent before close.
func (l *Loop) Run(ctx context.Context, userPrompt string) <-chan event.Event {
	out := make(chan event.Event, 16)
	go l.run(ctx, userPrompt, out)
	return out
}

func (l *Loop) run(ctx context.Context, userPrompt string, out chan<- event.Event) {
	defer close(out)

	l.history = append(l.history, provider.Message{Role: provider.RoleUser, Content: userPrompt})

	toolDefs := toolDefinitions(l.opts.Registry.ListInfo())
	streamOpts := l.opts.StreamOptions

	for iteration := 1; ; iteration++ {
		select {
		case <-ctx.Done():
			out <- event.Complete("cancelled")
			return
		default:
		}

		if iteration > l.opts.MaxIterations {
			out <- event.Complete("max_iterations")
			return
		}
		if l.opts.MaxTotalTokens > 0 && l.totalInputTokens+l.totalOutputTokens >= l.opts.MaxTotalTokens {
			out <- event.Complete("token_budget_exceeded")
			return
		}

		if compacted, dropped, kept, did, err := maybeCompact(ctx, l.history, l.opts.Compaction, l.opts.TokenCounter); err == nil && did {
			l.history = compacted
			out <- event.ContextCompaction(dropped, kept)
		}

		streamOpts.SystemPrompt = l.composedSystemPrompt()
		streamCh, err := l.opts.Provider.StreamMessage(ctx, l.history, toolDefs, streamOpts)
		if err != nil {
			out <- event.Err(err.Error())
			out <- event.Complete("provider_error")
			return
		}

		var assistantText strings.Builder
		callsByID := make(map[string]*pendingToolCall)
		var callOrder []string
		var stopReason string

	consume:
		for {
			select {
			case <-ctx.Done():
				out <- event.Complete("cancelled")
				return
			case e, ok := <-streamCh:
				if !ok {
					break consume
				}
				switch e.Kind {
				case event.KindTextDelta:
					assistantText.WriteString(e.Text)
				case event.KindToolStart:
					callsByID[e.ToolCallID] = &pendingToolCall{id: e.ToolCallID, name: e.ToolName}
					callOrder = append(callOrder, e.ToolCallID)
				case event.KindToolComplete:
					if pc, ok := callsByID[e.ToolCallID]; ok {
						pc.argsJSON = e.ToolArgsJSON
					}
				case event.KindUsage:
					l.totalInputTokens += e.InputTokens
					l.totalOutputTokens += e.OutputTokens
				case event.KindComplete:
					stopReason = e.StopReason
				}
				out <- e
			}
		}

		assistantMsg := provider.Message{Role: provider.RoleAssistant, Content: assistantText.String()}
		for _, id := range callOrder {
			pc := callsByID[id]
			assistantMsg.ToolCalls = append(assistantMsg.ToolCalls, provider.ToolCall{ID: pc.id, Name: pc.name, RawArgs: pc.argsJSON})
		}
		l.history = append(l.history, assistantMsg)

		if len(callOrder) == 0 || isTerminalStopReason(stopReason) {
			reason := stopReason
			if reason == "" {
				reason = "no_tool_calls"
			}
			out <- event.Complete(reason)
			return
		}

		budgets := DefaultBudgets(l.execCtx.AnalysisMode)
		for _, id := range callOrder {
			resultMsg := l.executeToolCall(ctx, callsByID[id], budgets, out)
			l.history = append(l.history, resultMsg)
		}
	}
}

// executeToolCall resolves, gates, and executes a single tool call,
// forwarding its ToolResult (and, for Task calls, the child's tagged
// sub-agent transcript first) onto out, and returns the truncated
// tool-result message to append to history.
func (l *Loop) executeToolCall(ctx context.Context, pc *pendingToolCall, budgets Budgets, out chan<- event.Event) provider.Message {
	var args map[string]any
	if pc.argsJSON != "" {
		_ = json.Unmarshal([]byte(pc.argsJSON), &args)
	}
	if args == nil {
		args = map[string]any{}
	}

	t, ok := l.opts.Registry.Get(pc.name)
	if !ok {
		msg := "unknown tool: " + pc.name
		out <- event.ToolResult(pc.id, pc.name, "", false, msg, false)
		return provider.Message{Role: provider.RoleTool, ToolCallID: pc.id, ToolName: pc.name, Content: msg}
	}

	if l.opts.Gate != nil {
		decision, err := l.opts.Gate.Check(l.opts.SessionID, t, args, func(e event.Event) { out <- e })
		if err != nil || !decision.Allowed {
			msg := "permission denied"
			if err != nil {
				msg = err.Error()
			}
			out <- event.ToolResult(pc.id, pc.name, "", false, msg, false)
			return provider.Message{Role: provider.RoleTool, ToolCallID: pc.id, ToolName: pc.name, Content: "[denied] " + msg}
		}
	}

	result, err := t.Execute(ctx, l.execCtx, args)
	if err != nil && result.Error == "" {
		result.Error = err.Error()
	}

	for _, sub := range result.SubEvents {
		out <- sub
	}

	out <- event.ToolResult(pc.id, pc.name, result.Content, result.Success, result.Error, result.IsDedup)

	historyContent := result.Content
	if !result.Success {
		historyContent = result.Error
	}
	truncated, _ := TruncateForHistory(pc.name, historyContent, budgets)

	return provider.Message{Role: provider.RoleTool, ToolCallID: pc.id, ToolName: pc.name, Content: truncated}
}

// RunChild implements subagent.LoopRunner: it builds a fresh Loop sharing
// this Loop's provider, gate, and budgets but a narrower tool registry
// (per ChildRegistryFor) and a fresh, empty history, runs it to
// completion, and reports the final text and full event transcript.
func (l *Loop) RunChild(ctx context.Context, execCtx *tool.ExecutionContext, agentType subagent.Type, prompt string) (subagent.LoopResult, error) {
	childOpts := l.opts
	if l.opts.ChildRegistryFor != nil {
		childOpts.Registry = l.opts.ChildRegistryFor(agentType)
	}
	childOpts.SystemPrompt = childSystemPrompt(agentType, l.opts.SystemPrompt)

	child := New(childOpts, execCtx)

	var finalText strings.Builder
	var events []event.Event
	for e := range child.Run(ctx, prompt) {
		events = append(events, e)
		if e.Kind == event.KindTextDelta {
			finalText.WriteString(e.Text)
		}
	}

	return subagent.LoopResult{
		FinalText:    finalText.String(),
		Events:       events,
		InputTokens:  child.totalInputTokens,
		OutputTokens: child.totalOutputTokens,
	}, nil
}

func childSystemPrompt(agentType subagent.Type, parentSystemPrompt string) string {
	framing := map[subagent.Type]string{
		subagent.TypeExplore:        "You are a read-only exploration sub-agent. Investigate and report findings; you cannot modify files.",
		subagent.TypePlan:           "You are a planning sub-agent. Produce a concrete plan; you cannot modify files.",
		subagent.TypeGeneralPurpose: "You are a general-purpose sub-agent with the full tool set, including the ability to spawn further sub-agents.",
		subagent.TypeBash:          "You are a shell sub-agent restricted to running commands and checking the working directory.",
	}
	if f, ok := framing[agentType]; ok {
		if parentSystemPrompt == "" {
			return f
		}
		return f + "\n\n" + parentSystemPrompt
	}
	return parentSystemPrompt
}
