package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type EditTool struct{}

func NewEditTool() *EditTool { return &EditTool{} }

func (t *EditTool) Info() Info {
	return Info{
		Name:        "Edit",
		Description: "Replace exact text in a file. old_string must be unique unless replace_all is set.",
		Parameters: []Parameter{
			{Name: "path", Type: "string", Description: "File path to edit", Required: true},
			{Name: "old_string", Type: "string", Description: "Exact text to find", Required: true},
			{Name: "new_string", Type: "string", Description: "Replacement text", Required: true},
			{Name: "replace_all", Type: "boolean", Description: "Replace every occurrence instead of requiring uniqueness", Required: false, Default: false},
		},
		IsParallelSafe: false,
		DefaultRisk:    RiskSafeWrite,
	}
}

func (t *EditTool) Execute(ctx context.Context, execCtx *ExecutionContext, args map[string]any) (Result, error) {
	path, _ := args["path"].(string)
	if path == "" {
		return errResult("Edit", "path parameter is required")
	}
	oldString, _ := args["old_string"].(string)
	if oldString == "" {
		return errResult("Edit", "old_string parameter is required")
	}
	newString, ok := args["new_string"].(string)
	if !ok {
		return errResult("Edit", "new_string parameter is required")
	}
	replaceAll := boolArg(args, "replace_all", false)

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(execCtx.WorkingDirectory, path)
	}

	if err := execCtx.CheckReadBeforeWrite(resolved); err != nil {
		return Result{Success: false, ToolName: "Edit", Error: err.Error()}, err
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return errResult("Edit", fmt.Sprintf("failed to read %s: %v", path, err))
	}
	content := string(raw)

	replaced, count, err := applyReplace(content, oldString, newString, replaceAll)
	if err != nil {
		return errResult("Edit", err.Error())
	}

	if err := os.WriteFile(resolved, []byte(replaced), 0o644); err != nil {
		return errResult("Edit", fmt.Sprintf("failed to write %s: %v", path, err))
	}
	execCtx.MarkRead(path)

	return Result{Success: true, ToolName: "Edit",
		Content:  fmt.Sprintf("Replaced %d occurrence(s) in %s", count, path),
		Metadata: map[string]any{"replacements": count}}, nil
}

// applyReplace is shared by Edit and MultiEdit: it enforces uniqueness
// unless replaceAll is set, and reports zero matches as an error rather
// than silently no-op'ing.
func applyReplace(content, oldString, newString string, replaceAll bool) (string, int, error) {
	count := strings.Count(content, oldString)
	if count == 0 {
		return "", 0, fmt.Errorf("old_string not found in file")
	}
	if !replaceAll && count > 1 {
		return "", 0, fmt.Errorf("old_string is not unique (%d matches); set replace_all or provide more context", count)
	}
	if replaceAll {
		return strings.ReplaceAll(content, oldString, newString), count, nil
	}
	return strings.Replace(content, oldString, newString, 1), 1, nil
}
