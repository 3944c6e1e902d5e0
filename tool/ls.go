package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type LSTool struct{}

func NewLSTool() *LSTool { return &LSTool{} }

func (t *LSTool) Info() Info {
	return Info{
		Name:        "LS",
		Description: "List files and directories at a path, non-recursively.",
		Parameters: []Parameter{
			{Name: "path", Type: "string", Description: "Directory to list (defaults to the working directory)", Required: false},
		},
		IsParallelSafe: true,
		DefaultRisk:    RiskReadOnly,
	}
}

func (t *LSTool) Execute(ctx context.Context, execCtx *ExecutionContext, args map[string]any) (Result, error) {
	path := strArg(args, "path", execCtx.WorkingDirectory)
	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(execCtx.WorkingDirectory, path)
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return errResult("LS", fmt.Sprintf("failed to list %s: %v", path, err))
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return Result{Success: true, ToolName: "LS",
		Content:  strings.Join(names, "\n"),
		Metadata: map[string]any{"count": len(names)}}, nil
}
