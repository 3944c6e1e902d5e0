package composer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAgent is a minimal Agent for testing composition without a real
// orchestrator.Loop: it emits a fixed sequence of events then Done.
type stubAgent struct {
	name        string
	events      []Event
	output      *string
	stateKey    string
	stateValue  any
	emitsError  bool
	errorText   string
	runDelay    time.Duration
}

func (s *stubAgent) Name() string { return s.name }

func (s *stubAgent) Run(ctx context.Context, actx *Context) <-chan Event {
	out := make(chan Event, 8)
	go func() {
		defer close(out)
		if s.runDelay > 0 {
			select {
			case <-time.After(s.runDelay):
			case <-ctx.Done():
				return
			}
		}
		for _, e := range s.events {
			out <- e
		}
		if s.stateKey != "" {
			out <- StateUpdate(s.stateKey, s.stateValue)
		}
		if s.emitsError {
			out <- Err(s.errorText)
			return
		}
		out <- Done(s.output)
	}()
	return out
}

func strPtr(s string) *string { return &s }

func drainComposer(ch <-chan Event) []Event {
	var out []Event
	for e := range ch {
		out = append(out, e)
	}
	return out
}

func TestSequentialAgent_FeedsOutputForward(t *testing.T) {
	a := &stubAgent{name: "a", output: strPtr("from-a")}
	var capturedInput string
	b := &stubAgentCapture{name: "b", capture: &capturedInput}

	seq := NewSequentialAgent("pipeline", a, b)
	events := drainComposer(seq.Run(context.Background(), &Context{Input: "start"}))

	require.NotEmpty(t, events)
	assert.Equal(t, "from-a", capturedInput)
	last := events[len(events)-1]
	assert.Equal(t, KindDone, last.Kind)
}

// stubAgentCapture records the input it was run with and finishes
// immediately, for asserting Sequential's input-threading behavior.
type stubAgentCapture struct {
	name    string
	capture *string
}

func (s *stubAgentCapture) Name() string { return s.name }
func (s *stubAgentCapture) Run(ctx context.Context, actx *Context) <-chan Event {
	*s.capture = actx.Input
	out := make(chan Event, 1)
	out <- DoneWith("from-b")
	close(out)
	return out
}

func TestSequentialAgent_StopsOnChildError(t *testing.T) {
	a := &stubAgent{name: "a", emitsError: true, errorText: "boom"}
	b := &stubAgentCapture{name: "b", capture: new(string)}

	seq := NewSequentialAgent("pipeline", a, b)
	events := drainComposer(seq.Run(context.Background(), &Context{Input: "start"}))

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, KindError, last.Kind)
	assert.Equal(t, "", *b.capture) // b never ran
}

func TestSequentialAgent_EmptyChildrenIsValidationError(t *testing.T) {
	seq := NewSequentialAgent("empty")
	events := drainComposer(seq.Run(context.Background(), &Context{Input: "x"}))
	require.Len(t, events, 1)
	assert.Equal(t, KindError, events[0].Kind)
}

func TestParallelAgent_JoinsOutputsInChildOrderWithSeparator(t *testing.T) {
	a := &stubAgent{name: "a", output: strPtr("alpha"), runDelay: 20 * time.Millisecond}
	b := &stubAgent{name: "b", output: strPtr("beta")}

	par := NewParallelAgent("fanout", a, b)
	events := drainComposer(par.Run(context.Background(), &Context{Input: "x"}))

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	require.Equal(t, KindDone, last.Kind)
	require.NotNil(t, last.Output)
	assert.Equal(t, "alpha\n\n---\n\nbeta", *last.Output)
}

func TestParallelAgent_RewritesStateUpdateKeysPerChild(t *testing.T) {
	a := &stubAgent{name: "left", output: strPtr("a"), stateKey: "score", stateValue: 1}
	b := &stubAgent{name: "right", output: strPtr("b"), stateKey: "score", stateValue: 2}

	par := NewParallelAgent("fanout", a, b)
	events := drainComposer(par.Run(context.Background(), &Context{Input: "x"}))

	seen := map[string]any{}
	for _, e := range events {
		if e.Kind == KindStateUpdate {
			seen[e.StateKey] = e.StateValue
		}
	}
	assert.Equal(t, 1, seen["left.score"])
	assert.Equal(t, 2, seen["right.score"])
}

func TestParallelAgent_EmptyChildrenIsValidationError(t *testing.T) {
	par := NewParallelAgent("empty")
	events := drainComposer(par.Run(context.Background(), &Context{Input: "x"}))
	require.Len(t, events, 1)
	assert.Equal(t, KindError, events[0].Kind)
}

func TestConditionalAgent_DispatchesOnMatchingBranch(t *testing.T) {
	state := NewSharedState()
	state.Set("route", "fast")

	fast := &stubAgent{name: "fast", output: strPtr("fast-path")}
	slow := &stubAgent{name: "slow", output: strPtr("slow-path")}

	cond := NewConditionalAgent("router", "route", map[string]Agent{"fast": fast, "slow": slow}, nil)
	events := drainComposer(cond.Run(context.Background(), &Context{Input: "x", State: state}))

	last := events[len(events)-1]
	require.Equal(t, KindDone, last.Kind)
	assert.Equal(t, "fast-path", *last.Output)
}

func TestConditionalAgent_FallsBackToDefault(t *testing.T) {
	state := NewSharedState()
	state.Set("route", "unknown-value")

	fast := &stubAgent{name: "fast", output: strPtr("fast-path")}
	def := &stubAgent{name: "default", output: strPtr("default-path")}

	cond := NewConditionalAgent("router", "route", map[string]Agent{"fast": fast}, def)
	events := drainComposer(cond.Run(context.Background(), &Context{Input: "x", State: state}))

	last := events[len(events)-1]
	assert.Equal(t, "default-path", *last.Output)
}

func TestConditionalAgent_NoMatchNoDefaultEmitsEmptyDone(t *testing.T) {
	state := NewSharedState()
	cond := NewConditionalAgent("router", "route", map[string]Agent{}, nil)
	events := drainComposer(cond.Run(context.Background(), &Context{Input: "x", State: state}))

	require.Len(t, events, 1)
	assert.Equal(t, KindDone, events[0].Kind)
	assert.Nil(t, events[0].Output)
}

func TestBuild_SingleStepUnwraps(t *testing.T) {
	pipeline := AgentPipeline{
		Name: "solo",
		Steps: []AgentStep{
			{Kind: StepLLM, Name: "only", Llm: &LlmStepConfig{Name: "only", Instruction: "do it"}},
		},
	}
	agent, err := Build(pipeline, func(cfg LlmStepConfig) LoopFactory { return nil })
	require.NoError(t, err)
	assert.Equal(t, "only", agent.Name())
	_, isSequential := agent.(*SequentialAgent)
	assert.False(t, isSequential)
}

func TestBuild_MultiStepBecomesSequential(t *testing.T) {
	pipeline := AgentPipeline{
		Name: "multi",
		Steps: []AgentStep{
			{Kind: StepLLM, Name: "one", Llm: &LlmStepConfig{Name: "one", Instruction: "a"}},
			{Kind: StepLLM, Name: "two", Llm: &LlmStepConfig{Name: "two", Instruction: "b"}},
		},
	}
	agent, err := Build(pipeline, func(cfg LlmStepConfig) LoopFactory { return nil })
	require.NoError(t, err)
	assert.Equal(t, "multi", agent.Name())
	_, isSequential := agent.(*SequentialAgent)
	assert.True(t, isSequential)
}

func TestBuild_ConditionalStepRecurses(t *testing.T) {
	pipeline := AgentPipeline{
		Steps: []AgentStep{
			{
				Kind: StepConditional, Name: "router",
				Conditional: &ConditionalStepConfig{
					ConditionKey: "route",
					Branches: map[string]AgentStep{
						"a": {Kind: StepLLM, Name: "branch-a", Llm: &LlmStepConfig{Name: "branch-a", Instruction: "x"}},
					},
				},
			},
		},
	}
	agent, err := Build(pipeline, func(cfg LlmStepConfig) LoopFactory { return nil })
	require.NoError(t, err)
	_, ok := agent.(*ConditionalAgent)
	assert.True(t, ok)
}

func TestBuild_EmptyPipelineIsError(t *testing.T) {
	_, err := Build(AgentPipeline{Name: "empty"}, func(cfg LlmStepConfig) LoopFactory { return nil })
	assert.Error(t, err)
}
