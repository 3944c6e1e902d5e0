package tool

import (
	"context"
	"fmt"
	"strings"

	agentcoreerrors "github.com/arborcode/agentcore/errors"
)

// TaskTool exposes the sub-agent spawner to the model. It never talks to
// the spawner package directly — ExecutionContext.Spawner is a narrow
// SpawnerHandle the host wires in, keeping this package free of an import
// cycle with subagent (which itself needs to execute tool calls).
type TaskTool struct{}

func NewTaskTool() *TaskTool { return &TaskTool{} }

func (t *TaskTool) Info() Info {
	return Info{
		Name:        "Task",
		Description: "Spawn a sub-agent to carry out a bounded task and return its final result.",
		Parameters: []Parameter{
			{Name: "subagent_type", Type: "string", Description: "explore | plan | general-purpose | bash",
				Required: false, Default: "explore", Enum: []string{"explore", "plan", "general-purpose", "bash"}},
			{Name: "prompt", Type: "string", Description: "Task description for the sub-agent", Required: true},
		},
		IsParallelSafe: false,
		IsLongRunning:  true,
		DefaultRisk:    RiskSafeWrite,
	}
}

func (t *TaskTool) Execute(ctx context.Context, execCtx *ExecutionContext, args map[string]any) (Result, error) {
	agentType := strArg(args, "subagent_type", strArg(args, "task_type", "explore"))
	prompt, _ := args["prompt"].(string)
	if prompt == "" {
		return errResult("Task", "prompt parameter is required")
	}

	if execCtx.Spawner == nil {
		err := agentcoreerrors.New("task_tool", "execute", agentcoreerrors.Validation,
			"this execution context has no task context attached; Task cannot be called from a leaf sub-agent", nil)
		return Result{Success: false, ToolName: "Task", Error: err.Error()}, err
	}

	if agentType == "general-purpose" && execCtx.Depth >= execCtx.MaxDepth {
		err := agentcoreerrors.New("task_tool", "execute", agentcoreerrors.Validation,
			fmt.Sprintf("maximum sub-agent depth %d reached; use explore or plan instead of general-purpose", execCtx.MaxDepth), nil)
		return Result{Success: false, ToolName: "Task", Error: err.Error()}, err
	}

	if cached, ok := execCtx.CachedTaskOutput(prompt); ok {
		return Result{Success: true, ToolName: "Task",
			Content:  "[cached] " + cached,
			IsDedup:  true,
			Metadata: map[string]any{"dedup": true}}, nil
	}

	output, cached, subEvents, err := execCtx.Spawner.Spawn(ctx, execCtx, agentType, prompt)
	if err != nil {
		return Result{Success: false, ToolName: "Task", Error: err.Error()}, err
	}

	if !cached && !isNarrationOnly(output) {
		execCtx.StoreTaskOutput(prompt, output)
	}

	content := output
	if cached {
		content = "[cached] " + output
	}
	return Result{Success: true, ToolName: "Task", Content: content, IsDedup: cached, SubEvents: subEvents}, nil
}

// isNarrationOnly reports whether a sub-agent's final text is just
// progress commentary ("Let me check...", trailing ellipses) rather than a
// substantive result. Narration must never populate the task-dedup cache:
// caching it would return stale commentary on a later identical prompt
// instead of the work that prompt actually describes.
func isNarrationOnly(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, prefix := range []string{"let me", "i'll", "i will", "checking", "looking"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return strings.HasSuffix(trimmed, "...") || strings.HasSuffix(trimmed, "…")
}
