package subagent

import (
	"context"
	"testing"
	"time"

	"github.com/arborcode/agentcore/event"
	"github.com/arborcode/agentcore/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawn_TagsEventsAndBracketsStartEnd(t *testing.T) {
	runner := func(ctx context.Context, execCtx *tool.ExecutionContext, agentType Type, prompt string) (LoopResult, error) {
		assert.Equal(t, TypeExplore, agentType)
		return LoopResult{
			FinalText: "found the answer",
			Events:    []event.Event{event.TextDelta("working"), event.TextDelta("done")},
		}, nil
	}

	s := NewSpawner(2, runner)
	parent := tool.NewExecutionContext(t.TempDir(), "")

	output, cached, tagged, err := s.Spawn(context.Background(), parent, string(TypeExplore), "inspect src/lib.rs")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "found the answer", output)

	require.Len(t, tagged, 4) // start + 2 wrapped + end
	assert.Equal(t, event.KindSubAgentStart, tagged[0].Kind)
	assert.Equal(t, event.KindSubAgentWrappedInner, tagged[1].Kind)
	assert.Equal(t, event.KindSubAgentWrappedInner, tagged[2].Kind)
	assert.Equal(t, event.KindSubAgentEnd, tagged[3].Kind)
}

func TestSpawn_ChildContextIsOneDeeperThanParent(t *testing.T) {
	var observedDepth int
	runner := func(ctx context.Context, execCtx *tool.ExecutionContext, agentType Type, prompt string) (LoopResult, error) {
		observedDepth = execCtx.Depth
		return LoopResult{FinalText: "ok"}, nil
	}

	s := NewSpawner(1, runner)
	parent := tool.NewExecutionContext(t.TempDir(), "")
	parent.Depth = 1

	_, _, _, err := s.Spawn(context.Background(), parent, string(TypeBash), "run tests")
	require.NoError(t, err)
	assert.Equal(t, 2, observedDepth)
}

func TestSpawn_StopsWaitingOnceParentContextIsCancelled(t *testing.T) {
	childStarted := make(chan struct{})
	childCtxCancelled := make(chan struct{})
	runner := func(ctx context.Context, execCtx *tool.ExecutionContext, agentType Type, prompt string) (LoopResult, error) {
		close(childStarted)
		<-ctx.Done()
		close(childCtxCancelled)
		return LoopResult{}, ctx.Err()
	}

	s := NewSpawner(1, runner)
	parent := tool.NewExecutionContext(t.TempDir(), "")

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, _, _, err := s.Spawn(ctx, parent, string(TypeExplore), "long task")
		done <- err
	}()

	<-childStarted
	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Spawn did not stop waiting after its context was cancelled")
	}

	select {
	case <-childCtxCancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("child runLoop never observed the propagated cancellation")
	}
}

func TestToolSetFor_MatchesAgentTypeCapabilities(t *testing.T) {
	assert.NotContains(t, ToolSetFor(TypeExplore), "Task")
	assert.NotContains(t, ToolSetFor(TypeExplore), "Write")
	assert.Contains(t, ToolSetFor(TypeGeneralPurpose), "Task")
	assert.ElementsMatch(t, []string{"Bash", "Cwd"}, ToolSetFor(TypeBash))
}
