package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAsSubAgent_FlattensWithoutRecursion(t *testing.T) {
	inner := ToolResult("call-1", "Read", "file contents", true, "", false)
	wrapped := WrapAsSubAgent(inner, "sub-1", 2)

	assert.Equal(t, KindSubAgentWrappedInner, wrapped.Kind)
	assert.Equal(t, KindToolResult, wrapped.InnerKind)
	assert.Equal(t, "sub-1", wrapped.SubAgentID)
	assert.Equal(t, 2, wrapped.SubAgentDepth)
	assert.Equal(t, "file contents", wrapped.InnerPayload["tool_output"])

	// The invariant under test: each variant serialises flat, with no
	// nested Event value anywhere in the payload.
	raw, err := json.Marshal(wrapped)
	require.NoError(t, err)

	var asMap map[string]any
	require.NoError(t, json.Unmarshal(raw, &asMap))
	for _, v := range asMap {
		nested, isMap := v.(map[string]any)
		if !isMap {
			continue
		}
		if _, isEventShaped := nested["kind"]; isEventShaped {
			t.Fatalf("found a nested Event-shaped value in serialised payload: %v", v)
		}
	}
}

func TestConstructors_SetExpectedFields(t *testing.T) {
	ts := ToolStart("c1", "Bash")
	assert.Equal(t, KindToolStart, ts.Kind)
	assert.Equal(t, "Bash", ts.ToolName)

	u := Usage(10, 20)
	assert.Equal(t, 10, u.InputTokens)
	assert.Equal(t, 20, u.OutputTokens)

	cc := ContextCompaction(5, 3)
	assert.Equal(t, 5, cc.CompactedCount)
	assert.Equal(t, 3, cc.PreservedCount)

	pr := PermissionRequest("req-1", "Bash", "Dangerous", map[string]any{"cmd": "rm -rf /"})
	assert.Equal(t, "req-1", pr.PermissionRequestID)
	assert.Equal(t, "Dangerous", pr.PermissionRisk)
}
