package tool

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

type GlobTool struct{}

func NewGlobTool() *GlobTool { return &GlobTool{} }

func (t *GlobTool) Info() Info {
	return Info{
		Name:        "Glob",
		Description: "Find files matching a glob pattern, sorted by modification time (most recent first).",
		Parameters: []Parameter{
			{Name: "pattern", Type: "string", Description: "Glob pattern matched against each file's path relative to the search root or its base name, e.g. *.go", Required: true},
			{Name: "path", Type: "string", Description: "Directory to search from (defaults to the working directory)", Required: false},
		},
		IsParallelSafe: true,
		DefaultRisk:    RiskReadOnly,
	}
}

type globHit struct {
	path    string
	modTime int64
}

func (t *GlobTool) Execute(ctx context.Context, execCtx *ExecutionContext, args map[string]any) (Result, error) {
	pattern, _ := args["pattern"].(string)
	if pattern == "" {
		return errResult("Glob", "pattern parameter is required")
	}
	root := strArg(args, "path", execCtx.WorkingDirectory)
	if !filepath.IsAbs(root) {
		root = filepath.Join(execCtx.WorkingDirectory, root)
	}

	var hits []globHit
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, rerr := filepath.Rel(root, p)
		if rerr != nil {
			rel = p
		}
		matched, merr := filepath.Match(pattern, rel)
		if merr == nil && !matched {
			matched, _ = filepath.Match(pattern, filepath.Base(p))
		}
		if !matched {
			return nil
		}
		info, ierr := d.Info()
		if ierr != nil {
			return nil
		}
		hits = append(hits, globHit{path: p, modTime: info.ModTime().UnixNano()})
		return nil
	})
	if err != nil {
		return errResult("Glob", fmt.Sprintf("walk failed: %v", err))
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].modTime > hits[j].modTime })

	paths := make([]string, len(hits))
	for i, h := range hits {
		paths[i] = h.path
	}

	if len(paths) == 0 {
		return Result{Success: true, ToolName: "Glob", Content: "(no matches)"}, nil
	}
	return Result{Success: true, ToolName: "Glob",
		Content:  strings.Join(paths, "\n"),
		Metadata: map[string]any{"count": len(paths)}}, nil
}
