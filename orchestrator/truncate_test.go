package orchestrator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBudgets_AnalysisModeRaisesReadButTightensOthers(t *testing.T) {
	normal := DefaultBudgets(false)
	analysis := DefaultBudgets(true)

	assert.Greater(t, analysis.ReadLines, normal.ReadLines)
	assert.Less(t, analysis.GrepChars, normal.GrepChars)
	assert.Less(t, analysis.GrepLines, normal.GrepLines)
	assert.Less(t, analysis.LSGlobChars, normal.LSGlobChars)
	assert.Less(t, analysis.BashChars, normal.BashChars)
}

func TestTruncateForHistory_ReadTruncatesByLines(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "line"
	}
	body := strings.Join(lines, "\n")

	out, truncated := TruncateForHistory("Read", body, Budgets{ReadLines: 5})
	assert.True(t, truncated)
	kept, _, _ := strings.Cut(out, "\n...(truncated")
	assert.Equal(t, 5, strings.Count(kept, "line"))
	assert.Contains(t, out, "5 of 10 lines")
}

func TestTruncateForHistory_BashTruncatesByChars(t *testing.T) {
	body := strings.Repeat("x", 100)
	out, truncated := TruncateForHistory("Bash", body, Budgets{BashChars: 10})
	assert.True(t, truncated)
	assert.Contains(t, out, "10 of 100 chars")
}

func TestTruncateForHistory_UnderBudgetIsUntouched(t *testing.T) {
	out, truncated := TruncateForHistory("Grep", "short", Budgets{GrepChars: 100})
	assert.False(t, truncated)
	assert.Equal(t, "short", out)
}

func TestTruncateForHistory_GrepTruncatesByLinesAndChars(t *testing.T) {
	lines := make([]string, 10000)
	for i := range lines {
		lines[i] = "match line"
	}
	body := strings.Join(lines, "\n")
	require.Greater(t, len(body), 70000)

	out, truncated := TruncateForHistory("Grep", body, Budgets{GrepLines: 100, GrepChars: 500})
	assert.True(t, truncated)
	assert.Contains(t, out, "[truncated for context:")
	assert.Contains(t, out, "chars,")
	assert.Contains(t, out, "lines]")
	assert.Contains(t, out, fmt.Sprintf("%d →", len(body)))
	assert.Contains(t, out, fmt.Sprintf("%d →", 10000))
}

func TestTruncateForHistory_GrepLineLimitAloneStillBoundsChars(t *testing.T) {
	lines := make([]string, 5)
	for i := range lines {
		lines[i] = strings.Repeat("z", 1000)
	}
	body := strings.Join(lines, "\n")

	out, truncated := TruncateForHistory("Grep", body, Budgets{GrepLines: 0, GrepChars: 50})
	assert.True(t, truncated)
	assert.Contains(t, out, "[truncated for context:")
	assert.LessOrEqual(t, strings.Index(out, "\n[truncated"), 50)
}

func TestTruncateForHistory_UnknownToolUsesDefaultBudget(t *testing.T) {
	body := strings.Repeat("y", 50)
	out, truncated := TruncateForHistory("SomeMCPTool", body, Budgets{DefaultChars: 10})
	assert.True(t, truncated)
	assert.Contains(t, out, "10 of 50 chars")
}
