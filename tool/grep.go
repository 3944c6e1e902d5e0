package tool

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type GrepTool struct{}

func NewGrepTool() *GrepTool { return &GrepTool{} }

func (t *GrepTool) Info() Info {
	return Info{
		Name:        "Grep",
		Description: "Search file contents with a regular expression, returning matching lines with file:line prefixes.",
		Parameters: []Parameter{
			{Name: "pattern", Type: "string", Description: "Regular expression to search for", Required: true},
			{Name: "path", Type: "string", Description: "Directory to search (defaults to the working directory)", Required: false},
			{Name: "glob", Type: "string", Description: "Restrict to files matching this glob, e.g. *.go", Required: false},
			{Name: "case_insensitive", Type: "boolean", Description: "Case-insensitive match", Required: false, Default: false},
		},
		IsParallelSafe: true,
		DefaultRisk:    RiskReadOnly,
	}
}

func (t *GrepTool) Execute(ctx context.Context, execCtx *ExecutionContext, args map[string]any) (Result, error) {
	pattern, _ := args["pattern"].(string)
	if pattern == "" {
		return errResult("Grep", "pattern parameter is required")
	}
	if boolArg(args, "case_insensitive", false) {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return errResult("Grep", fmt.Sprintf("invalid pattern: %v", err))
	}

	root := strArg(args, "path", execCtx.WorkingDirectory)
	if !filepath.IsAbs(root) {
		root = filepath.Join(execCtx.WorkingDirectory, root)
	}
	globPattern := strArg(args, "glob", "")

	var lines []string
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if globPattern != "" {
			if matched, _ := filepath.Match(globPattern, filepath.Base(p)); !matched {
				return nil
			}
		}
		f, ferr := os.Open(p)
		if ferr != nil {
			return nil
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			text := scanner.Text()
			if re.MatchString(text) {
				lines = append(lines, fmt.Sprintf("%s:%d:%s", p, lineNum, text))
			}
		}
		return nil
	})
	if walkErr != nil {
		return errResult("Grep", fmt.Sprintf("walk failed: %v", walkErr))
	}

	if len(lines) == 0 {
		return Result{Success: true, ToolName: "Grep", Content: "(no matches)"}, nil
	}
	return Result{Success: true, ToolName: "Grep",
		Content:  strings.Join(lines, "\n"),
		Metadata: map[string]any{"match_count": len(lines)}}, nil
}
