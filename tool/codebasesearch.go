package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CodebaseSearchTool performs a lexical relevance search across source
// files, the local analogue of the teacher's document-store search tool
// (tools/search.go) but against the filesystem directly rather than an
// indexed vector store — there is no embedding backend in this core, so
// relevance falls back to term-overlap scoring.
type CodebaseSearchTool struct {
	extensions map[string]bool
}

func NewCodebaseSearchTool() *CodebaseSearchTool {
	return &CodebaseSearchTool{extensions: map[string]bool{
		".go": true, ".md": true, ".yaml": true, ".yml": true, ".json": true,
		".ts": true, ".tsx": true, ".js": true, ".py": true, ".rs": true,
	}}
}

func (t *CodebaseSearchTool) Info() Info {
	return Info{
		Name:        "CodebaseSearch",
		Description: "Find files most relevant to a natural-language query, ranked by lexical term overlap.",
		Parameters: []Parameter{
			{Name: "query", Type: "string", Description: "Natural-language description of what to find", Required: true},
			{Name: "limit", Type: "number", Description: "Maximum number of results", Required: false, Default: 10},
		},
		IsParallelSafe: true,
		DefaultRisk:    RiskReadOnly,
	}
}

type searchHit struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

func (t *CodebaseSearchTool) Execute(ctx context.Context, execCtx *ExecutionContext, args map[string]any) (Result, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return errResult("CodebaseSearch", "query parameter is required")
	}
	limit := intArg(args, "limit", 10)

	terms := tokenize(query)
	if len(terms) == 0 {
		return errResult("CodebaseSearch", "query has no searchable terms")
	}

	var hits []searchHit
	_ = filepath.WalkDir(execCtx.WorkingDirectory, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !t.extensions[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		raw, rerr := os.ReadFile(p)
		if rerr != nil {
			return nil
		}
		score := scoreContent(string(raw), terms)
		if score > 0 {
			hits = append(hits, searchHit{Path: p, Score: score})
		}
		return nil
	})

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}

	payload, err := json.MarshalIndent(struct {
		Query   string      `json:"query"`
		Results []searchHit `json:"results"`
	}{Query: query, Results: hits}, "", "  ")
	if err != nil {
		return errResult("CodebaseSearch", fmt.Sprintf("marshal results: %v", err))
	}

	return Result{Success: true, ToolName: "CodebaseSearch",
		Content:  string(payload),
		Metadata: map[string]any{"count": len(hits)}}, nil
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	seen := make(map[string]bool)
	var out []string
	for _, f := range fields {
		if len(f) < 2 || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func scoreContent(content string, terms []string) float64 {
	lower := strings.ToLower(content)
	var score float64
	for _, term := range terms {
		score += float64(strings.Count(lower, term))
	}
	return score
}
