package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// binaryExtensions routes known binary formats to a "skipped" report
// instead of attempting a UTF-8 decode; a real deployment would hand
// these to format-specific parser collaborators instead.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".pdf": true, ".zip": true, ".gz": true, ".tar": true, ".exe": true,
	".so": true, ".dylib": true, ".woff": true, ".woff2": true, ".ico": true,
}

type ReadTool struct{}

func NewReadTool() *ReadTool { return &ReadTool{} }

func (t *ReadTool) Info() Info {
	return Info{
		Name:        "Read",
		Description: "Read a file from the local filesystem, optionally windowed by offset/limit lines.",
		Parameters: []Parameter{
			{Name: "path", Type: "string", Description: "Absolute or working-directory-relative file path", Required: true},
			{Name: "offset", Type: "number", Description: "1-indexed line to start from", Required: false},
			{Name: "limit", Type: "number", Description: "Maximum number of lines to return", Required: false, Default: 2000},
		},
		IsParallelSafe: true,
		DefaultRisk:    RiskReadOnly,
	}
}

func (t *ReadTool) Execute(ctx context.Context, execCtx *ExecutionContext, args map[string]any) (Result, error) {
	path, _ := args["path"].(string)
	if path == "" {
		return errResult("Read", "path parameter is required")
	}
	offset := intArg(args, "offset", 1)
	limit := intArg(args, "limit", 2000)

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(execCtx.WorkingDirectory, path)
	}

	if binaryExtensions[strings.ToLower(filepath.Ext(resolved))] {
		info, err := os.Stat(resolved)
		if err != nil {
			return errResult("Read", fmt.Sprintf("stat failed: %v", err))
		}
		execCtx.MarkRead(path)
		return Result{Success: true, ToolName: "Read",
			Content: fmt.Sprintf("[binary file skipped] (%d bytes)", info.Size())}, nil
	}

	if entry, hit := execCtx.CachedRead(resolved, offset, limit); hit {
		execCtx.MarkRead(path)
		return Result{
			Success:  true,
			ToolName: "Read",
			Content:  "[DEDUP] " + entry.firstLines,
			IsDedup:  true,
			Metadata: map[string]any{"line_count": entry.lineCount, "size": entry.size, "content_hash": entry.contentHash},
		}, nil
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return errResult("Read", fmt.Sprintf("failed to stat %s: %v", path, err))
	}
	raw, err := os.ReadFile(resolved)
	if err != nil {
		return errResult("Read", fmt.Sprintf("failed to read %s: %v", path, err))
	}

	lines := strings.Split(string(raw), "\n")
	start := offset - 1
	if start < 0 {
		start = 0
	}
	if start > len(lines) {
		start = len(lines)
	}
	end := start + limit
	if end > len(lines) {
		end = len(lines)
	}
	windowed := strings.Join(lines[start:end], "\n")

	execCtx.StoreRead(path, offset, limit, windowed, info.ModTime(), info.Size())
	execCtx.MarkRead(path)

	return Result{
		Success:  true,
		ToolName: "Read",
		Content:  windowed,
		Metadata: map[string]any{"line_count": len(lines), "size": info.Size()},
	}, nil
}

func errResult(name, msg string) (Result, error) {
	return Result{Success: false, ToolName: name, Error: msg}, fmt.Errorf("%s", msg)
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func strArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func boolArg(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}
