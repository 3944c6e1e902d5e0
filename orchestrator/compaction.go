package orchestrator

import (
	"context"
	"fmt"

	"github.com/arborcode/agentcore/provider"
)

// Summarizer reduces a run of older messages to a single synthetic
// assistant/user pair. The orchestrator ships a deterministic, non-LLM
// default so the core loop never depends on the very provider it drives
// to summarise its own history (an Open Question decision); hosts that
// want an LLM-written digest supply their own Summarizer.
type Summarizer interface {
	Summarize(ctx context.Context, messages []provider.Message) (assistant, user provider.Message, err error)
}

// DefaultSummarizer produces a short bullet digest: message count, a role
// breakdown, and the last tool used, without ever calling a model.
type DefaultSummarizer struct{}

func (DefaultSummarizer) Summarize(_ context.Context, messages []provider.Message) (provider.Message, provider.Message, error) {
	var userCount, assistantCount, toolCount int
	lastTool := "none"
	for _, m := range messages {
		switch m.Role {
		case provider.RoleUser:
			userCount++
		case provider.RoleAssistant:
			assistantCount++
		case provider.RoleTool:
			toolCount++
			if m.ToolName != "" {
				lastTool = m.ToolName
			}
		}
	}
	digest := fmt.Sprintf(
		"Earlier conversation summary: %d message(s) compacted (%d user, %d assistant, %d tool result(s)). Last tool used: %s.",
		len(messages), userCount, assistantCount, toolCount, lastTool,
	)
	assistant := provider.Message{Role: provider.RoleAssistant, Content: digest}
	user := provider.Message{Role: provider.RoleUser, Content: "Continue from the summary above."}
	return assistant, user, nil
}

// CompactionConfig controls when and how much of the history gets folded
// into a summary.
type CompactionConfig struct {
	Enabled          bool
	ThresholdTokens  int // compact once the history's estimated token count exceeds this
	PreserveRecent   int // M: most recent messages kept verbatim regardless of threshold
	Summarizer       Summarizer
}

// maybeCompact summarises the oldest messages in history (all but the
// PreserveRecent most recent) when the estimated token count of history
// exceeds cfg.ThresholdTokens. It is idempotent: calling it again on an
// already-compacted history either no-ops (now under threshold) or
// compacts further, matching the "may run more than once per session"
// contract. It never touches the system prompt, which this package keeps
// out of the history slice entirely (see Loop.buildMessages).
func maybeCompact(ctx context.Context, history []provider.Message, cfg CompactionConfig, counter TokenCounter) ([]provider.Message, int, int, bool, error) {
	if !cfg.Enabled || cfg.ThresholdTokens <= 0 {
		return history, 0, 0, false, nil
	}

	total := 0
	for _, m := range history {
		total += counter.Count(m.Content)
	}
	if total <= cfg.ThresholdTokens {
		return history, 0, 0, false, nil
	}

	preserve := cfg.PreserveRecent
	if preserve < 0 {
		preserve = 0
	}
	if preserve >= len(history) {
		return history, 0, 0, false, nil // nothing old enough to compact
	}

	toCompact := history[:len(history)-preserve]
	recent := history[len(history)-preserve:]

	summarizer := cfg.Summarizer
	if summarizer == nil {
		summarizer = DefaultSummarizer{}
	}
	assistantMsg, userMsg, err := summarizer.Summarize(ctx, toCompact)
	if err != nil {
		return history, 0, 0, false, err
	}

	compacted := make([]provider.Message, 0, len(recent)+2)
	compacted = append(compacted, assistantMsg, userMsg)
	compacted = append(compacted, recent...)

	return compacted, len(toCompact), len(recent), true, nil
}
