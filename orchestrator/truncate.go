package orchestrator

import (
	"fmt"
	"strings"
)

// Budgets holds the per-tool truncation limits applied before a tool's
// output is appended to the message history the model sees next. The
// user-visible ToolResult event always carries the untruncated output;
// only the copy that re-enters the conversation is cut down (spec §4.2).
type Budgets struct {
	ReadLines    int // Read is truncated by line count, not char count
	GrepLines    int // Grep is bounded by both lines and chars
	GrepChars    int
	LSGlobChars  int
	BashChars    int
	DefaultChars int // anything not covered above (host-registered/MCP tools)
}

// DefaultBudgets returns the standard or analysis-mode budget set.
// Analysis mode tightens Grep/LS-Glob/Bash by roughly 3x since that mode
// runs many more tool calls per turn, but it raises Read's line budget
// instead of lowering it: file bodies are the primary signal analysis
// passes reason over, so truncating them harder would defeat the pass.
func DefaultBudgets(analysisMode bool) Budgets {
	if analysisMode {
		return Budgets{ReadLines: 900, GrepLines: 150, GrepChars: 1000, LSGlobChars: 1000, BashChars: 1000, DefaultChars: 1000}
	}
	return Budgets{ReadLines: 500, GrepLines: 500, GrepChars: 3000, LSGlobChars: 3000, BashChars: 3000, DefaultChars: 3000}
}

// TruncateForHistory cuts output down to the budget for toolName and
// reports whether truncation occurred. The returned string is what gets
// appended to the history message; the marker text is embedded inline
// (mirrors the teacher's "...(truncated)" suffix in
// reasoning/chain_of_thought.go) rather than carried as a separate field,
// since the model only ever sees the single string.
func TruncateForHistory(toolName, output string, b Budgets) (string, bool) {
	switch toolName {
	case "Read":
		return truncateLines(output, b.ReadLines)
	case "Grep":
		return truncateGrep(output, b.GrepLines, b.GrepChars)
	case "LS", "Glob":
		return truncateChars(output, b.LSGlobChars)
	case "Bash":
		return truncateChars(output, b.BashChars)
	default:
		return truncateChars(output, b.DefaultChars)
	}
}

func truncateChars(s string, limit int) (string, bool) {
	if limit <= 0 || len(s) <= limit {
		return s, false
	}
	kept := s[:limit]
	return kept + fmt.Sprintf("\n...(truncated: %d of %d chars)", limit, len(s)), true
}

// truncateGrep bounds a Grep result by both line count and char count
// (spec scenario 5), since a huge match set can blow either budget on its
// own: a handful of enormous lines can stay under the line limit while
// still being unreadably large, and a great many tiny lines can stay
// under the char limit while still drowning the model in line noise. The
// marker reports both dimensions' original and retained counts.
func truncateGrep(s string, limitLines, limitChars int) (string, bool) {
	origChars := len(s)
	origLines := strings.Split(s, "\n")

	lines := origLines
	truncated := false
	if limitLines > 0 && len(lines) > limitLines {
		lines = lines[:limitLines]
		truncated = true
	}

	kept := strings.Join(lines, "\n")
	if limitChars > 0 && len(kept) > limitChars {
		kept = kept[:limitChars]
		truncated = true
	}

	if !truncated {
		return s, false
	}

	retainedLines := len(strings.Split(kept, "\n"))
	return kept + fmt.Sprintf("\n[truncated for context: %d → %d chars, %d → %d lines]",
		origChars, len(kept), len(origLines), retainedLines), true
}

func truncateLines(s string, limitLines int) (string, bool) {
	if limitLines <= 0 {
		return s, false
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= limitLines {
		return s, false
	}
	kept := strings.Join(lines[:limitLines], "\n")
	return kept + fmt.Sprintf("\n...(truncated: %d of %d lines)", limitLines, len(lines)), true
}
