package composer

import "fmt"

// StepKind discriminates an AgentStep's variant.
type StepKind string

const (
	StepLLM         StepKind = "llm"
	StepSequential  StepKind = "sequential"
	StepParallel    StepKind = "parallel"
	StepConditional StepKind = "conditional"
)

// LlmStepConfig is the serialisable configuration for one LLM-backed leaf.
type LlmStepConfig struct {
	Name        string
	Instruction string
	Model       string
	Tools       []string
	Config      map[string]any
}

// ConditionalStepConfig is the serialisable configuration for a
// ConditionalAgent: which shared-state key to read, the branch steps
// keyed by the value that selects them, and an optional default.
type ConditionalStepConfig struct {
	ConditionKey  string
	Branches      map[string]AgentStep
	DefaultBranch *AgentStep
}

// AgentStep is one node of a serialisable agent tree. Exactly one of Llm,
// Sequential, Parallel, or Conditional should be populated, matching Kind.
type AgentStep struct {
	Kind StepKind `json:"kind"`
	Name string

	Llm         *LlmStepConfig
	Sequential  []AgentStep
	Parallel    []AgentStep
	Conditional *ConditionalStepConfig
}

// AgentPipeline is the top-level serialisable pipeline: an ordered list of
// steps. A single-step pipeline unwraps to that step directly rather than
// wrapping it in a redundant one-child Sequential; a multi-step pipeline
// becomes a Sequential named after the pipeline.
type AgentPipeline struct {
	Name  string
	Steps []AgentStep
}

// LoopFactoryResolver builds the LoopFactory an LLM step's agent should
// use, given that step's configuration — the pipeline builder has no
// opinion on how a host wires up providers/tools/permission gates per
// step, only on the tree shape.
type LoopFactoryResolver func(cfg LlmStepConfig) LoopFactory

// Build turns a serialisable AgentPipeline into a runnable Agent tree.
func Build(pipeline AgentPipeline, resolve LoopFactoryResolver) (Agent, error) {
	if len(pipeline.Steps) == 0 {
		return nil, fmt.Errorf("composer: pipeline %q has no steps", pipeline.Name)
	}
	if len(pipeline.Steps) == 1 {
		return buildStep(pipeline.Steps[0], resolve)
	}

	children := make([]Agent, 0, len(pipeline.Steps))
	for _, step := range pipeline.Steps {
		child, err := buildStep(step, resolve)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return NewSequentialAgent(pipeline.Name, children...), nil
}

func buildStep(step AgentStep, resolve LoopFactoryResolver) (Agent, error) {
	switch step.Kind {
	case StepLLM:
		if step.Llm == nil {
			return nil, fmt.Errorf("composer: llm step %q missing its configuration", step.Name)
		}
		return NewLlmAgent(step.Llm.Name, step.Llm.Instruction, resolve(*step.Llm)), nil

	case StepSequential:
		children, err := buildSteps(step.Sequential, resolve)
		if err != nil {
			return nil, err
		}
		return NewSequentialAgent(step.Name, children...), nil

	case StepParallel:
		children, err := buildSteps(step.Parallel, resolve)
		if err != nil {
			return nil, err
		}
		return NewParallelAgent(step.Name, children...), nil

	case StepConditional:
		if step.Conditional == nil {
			return nil, fmt.Errorf("composer: conditional step %q missing its configuration", step.Name)
		}
		branches := make(map[string]Agent, len(step.Conditional.Branches))
		for key, branchStep := range step.Conditional.Branches {
			branchAgent, err := buildStep(branchStep, resolve)
			if err != nil {
				return nil, err
			}
			branches[key] = branchAgent
		}
		var defaultAgent Agent
		if step.Conditional.DefaultBranch != nil {
			var err error
			defaultAgent, err = buildStep(*step.Conditional.DefaultBranch, resolve)
			if err != nil {
				return nil, err
			}
		}
		return NewConditionalAgent(step.Name, step.Conditional.ConditionKey, branches, defaultAgent), nil

	default:
		return nil, fmt.Errorf("composer: unknown step kind %q for step %q", step.Kind, step.Name)
	}
}

func buildSteps(steps []AgentStep, resolve LoopFactoryResolver) ([]Agent, error) {
	agents := make([]Agent, 0, len(steps))
	for _, step := range steps {
		a, err := buildStep(step, resolve)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, nil
}
