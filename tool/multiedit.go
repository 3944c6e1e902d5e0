package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// EditOp is one entry of a MultiEdit call, applied in order against the
// same in-memory buffer so later ops can target text an earlier op just
// produced.
type EditOp struct {
	OldString  string `json:"old_string"`
	NewString  string `json:"new_string"`
	ReplaceAll bool   `json:"replace_all"`
}

type MultiEditTool struct{}

func NewMultiEditTool() *MultiEditTool { return &MultiEditTool{} }

type multiEditArgs struct {
	Path  string   `json:"path" jsonschema:"required,description=File path to edit"`
	Edits []EditOp `json:"edits" jsonschema:"required,description=Ordered list of replacements"`
}

func (t *MultiEditTool) Info() Info {
	return Info{
		Name:        "MultiEdit",
		Description: "Apply a sequence of exact-text replacements to a single file atomically.",
		Parameters: []Parameter{
			{Name: "path", Type: "string", Description: "File path to edit", Required: true},
			{Name: "edits", Type: "array", Description: "Ordered list of {old_string,new_string,replace_all} operations", Required: true},
		},
		Schema:         GenerateSchema[multiEditArgs](),
		IsParallelSafe: false,
		DefaultRisk:    RiskSafeWrite,
	}
}

func (t *MultiEditTool) Execute(ctx context.Context, execCtx *ExecutionContext, args map[string]any) (Result, error) {
	path, _ := args["path"].(string)
	if path == "" {
		return errResult("MultiEdit", "path parameter is required")
	}
	rawEdits, ok := args["edits"].([]any)
	if !ok || len(rawEdits) == 0 {
		return errResult("MultiEdit", "edits parameter must be a non-empty array")
	}

	ops := make([]EditOp, 0, len(rawEdits))
	for i, re := range rawEdits {
		m, ok := re.(map[string]any)
		if !ok {
			return errResult("MultiEdit", fmt.Sprintf("edits[%d] must be an object", i))
		}
		op := EditOp{
			OldString:  strArg(m, "old_string", ""),
			NewString:  strArg(m, "new_string", ""),
			ReplaceAll: boolArg(m, "replace_all", false),
		}
		if op.OldString == "" {
			return errResult("MultiEdit", fmt.Sprintf("edits[%d].old_string is required", i))
		}
		ops = append(ops, op)
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(execCtx.WorkingDirectory, path)
	}

	if err := execCtx.CheckReadBeforeWrite(resolved); err != nil {
		return Result{Success: false, ToolName: "MultiEdit", Error: err.Error()}, err
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return errResult("MultiEdit", fmt.Sprintf("failed to read %s: %v", path, err))
	}
	content := string(raw)

	total := 0
	for i, op := range ops {
		replaced, count, err := applyReplace(content, op.OldString, op.NewString, op.ReplaceAll)
		if err != nil {
			return errResult("MultiEdit", fmt.Sprintf("edit %d: %v", i, err))
		}
		content = replaced
		total += count
	}

	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return errResult("MultiEdit", fmt.Sprintf("failed to write %s: %v", path, err))
	}
	execCtx.MarkRead(path)

	return Result{Success: true, ToolName: "MultiEdit",
		Content:  fmt.Sprintf("Applied %d edit(s), %d total replacement(s), to %s", len(ops), total, path),
		Metadata: map[string]any{"edits": len(ops), "replacements": total}}, nil
}
