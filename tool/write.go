package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type WriteTool struct{}

func NewWriteTool() *WriteTool { return &WriteTool{} }

func (t *WriteTool) Info() Info {
	return Info{
		Name:        "Write",
		Description: "Write content to a file, creating it or overwriting it entirely.",
		Parameters: []Parameter{
			{Name: "path", Type: "string", Description: "File path to write", Required: true},
			{Name: "content", Type: "string", Description: "Full file content", Required: true},
		},
		IsParallelSafe: false,
		DefaultRisk:    RiskSafeWrite,
	}
}

func (t *WriteTool) Execute(ctx context.Context, execCtx *ExecutionContext, args map[string]any) (Result, error) {
	path, _ := args["path"].(string)
	if path == "" {
		return errResult("Write", "path parameter is required")
	}
	content, ok := args["content"].(string)
	if !ok {
		return errResult("Write", "content parameter is required")
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(execCtx.WorkingDirectory, path)
	}

	if err := execCtx.CheckReadBeforeWrite(resolved); err != nil {
		return Result{Success: false, ToolName: "Write", Error: err.Error()}, err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return errResult("Write", fmt.Sprintf("failed to create parent directories: %v", err))
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return errResult("Write", fmt.Sprintf("failed to write %s: %v", path, err))
	}

	execCtx.MarkRead(path) // the content just written is now "known" for subsequent edits in this loop

	return Result{Success: true, ToolName: "Write",
		Content:  fmt.Sprintf("Wrote %d bytes to %s", len(content), path),
		Metadata: map[string]any{"bytes": len(content)}}, nil
}
