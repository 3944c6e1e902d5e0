package knowledge

import (
	"context"
	"fmt"
	"strings"
)

// ContextConfig bounds how much retrieved knowledge is allowed into a
// single prompt injection.
type ContextConfig struct {
	TopK        int
	MaxChars    int // 0 means unbounded
	MinScore    float64
}

func defaultContextConfig() ContextConfig {
	return ContextConfig{TopK: 5, MaxChars: 6000}
}

// BuildContext retrieves from r and renders the results into a single
// string ready to fold into a system prompt, under a "Knowledge
// Context" heading. Results below MinScore are dropped; the render is
// truncated (never mid-document) once MaxChars would be exceeded.
func BuildContext(ctx context.Context, r Retriever, query string, cfg ContextConfig) (string, error) {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultContextConfig().TopK
	}
	results, err := r.Retrieve(ctx, query, cfg.TopK)
	if err != nil {
		return "", err
	}

	var kept []Result
	for _, res := range results {
		if res.Score < cfg.MinScore {
			continue
		}
		kept = append(kept, res)
	}
	return RenderForPrompt(kept, cfg.MaxChars), nil
}

// RenderForPrompt concatenates results under a heading, stopping before
// any document whose inclusion would exceed maxChars (0 means
// unbounded). A dropped tail is noted so the caller knows it was cut,
// rather than silently looking exhaustive.
func RenderForPrompt(results []Result, maxChars int) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Knowledge Context\n\n")
	dropped := 0
	for i, res := range results {
		entry := fmt.Sprintf("### %s\n\n%s\n\n", res.Document.Source, strings.TrimSpace(res.Document.Content))
		if maxChars > 0 && b.Len()+len(entry) > maxChars {
			dropped = len(results) - i
			break
		}
		b.WriteString(entry)
	}
	out := strings.TrimRight(b.String(), "\n")
	if dropped > 0 {
		out += fmt.Sprintf("\n\n_(%d additional result(s) omitted for length)_", dropped)
	}
	return out
}
