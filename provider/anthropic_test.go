package provider

import (
	"testing"

	"github.com/arborcode/agentcore/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicAdapter_TextAndToolCall(t *testing.T) {
	a := &anthropicAdapter{toolCalls: map[int]*pendingToolCall{}}

	events, err := a.Feed(`data: {"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"tu_1","name":"Read"}}`)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.KindToolStart, events[0].Kind)
	assert.Equal(t, "Read", events[0].ToolName)

	events, err = a.Feed(`data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"{\"path\":"}}`)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = a.Feed(`data: {"type":"content_block_delta","index":0,"delta":{"type":"input_json_delta","partial_json":"\"a.go\"}"}}`)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = a.Feed(`data: {"type":"content_block_stop","index":0}`)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.KindToolComplete, events[0].Kind)
	assert.Equal(t, `{"path":"a.go"}`, events[0].ToolArgsJSON)
}

func TestAnthropicAdapter_TextDelta(t *testing.T) {
	a := &anthropicAdapter{toolCalls: map[int]*pendingToolCall{}}
	events, err := a.Feed(`data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"hello"}}`)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "hello", events[0].Text)
}

func TestAnthropicAdapter_UnsupportedEventIsNonFatal(t *testing.T) {
	a := &anthropicAdapter{toolCalls: map[int]*pendingToolCall{}}
	_, err := a.Feed(`data: {"type":"some_future_event"}`)
	require.Error(t, err)
	var ae *event.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, event.UnsupportedEvent, ae.Kind)
}
