package tool

import "context"

type CwdTool struct{}

func NewCwdTool() *CwdTool { return &CwdTool{} }

func (t *CwdTool) Info() Info {
	return Info{
		Name:           "Cwd",
		Description:    "Report the agent's current working directory.",
		IsParallelSafe: true,
		DefaultRisk:    RiskReadOnly,
	}
}

func (t *CwdTool) Execute(ctx context.Context, execCtx *ExecutionContext, args map[string]any) (Result, error) {
	return Result{Success: true, ToolName: "Cwd", Content: execCtx.WorkingDirectory}, nil
}
