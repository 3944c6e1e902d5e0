package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arborcode/agentcore/event"
)

// OllamaConfig configures a local Ollama server, per the teacher's
// llms/ollama.go OllamaProvider — ollama defaults to an unauthenticated
// localhost host.
type OllamaConfig struct {
	Model string
	Host  string // defaults to http://localhost:11434
}

// OllamaProvider implements Provider against Ollama's /api/chat streaming
// endpoint, which emits newline-delimited JSON objects (not SSE) — one
// object per line, with a final {"done": true} object.
type OllamaProvider struct {
	cfg    OllamaConfig
	client *http.Client
}

func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	if cfg.Host == "" {
		cfg.Host = "http://localhost:11434"
	}
	return &OllamaProvider{cfg: cfg, client: &http.Client{Timeout: 5 * time.Minute}}
}

func (p *OllamaProvider) Name() string { return "ollama" }

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Tools    []openAITool        `json:"tools,omitempty"` // ollama reuses the OpenAI function-tool shape
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatChunk struct {
	Message struct {
		Content   string `json:"content"`
		ToolCalls []struct {
			Function struct {
				Name      string         `json:"name"`
				Arguments map[string]any `json:"arguments"`
			} `json:"function"`
		} `json:"tool_calls"`
	} `json:"message"`
	Done           bool `json:"done"`
	PromptEvalCount int  `json:"prompt_eval_count"`
	EvalCount       int  `json:"eval_count"`
}

func (p *OllamaProvider) StreamMessage(ctx context.Context, messages []Message, tools []ToolDefinition, opts StreamOptions) (<-chan event.Event, error) {
	req := ollamaChatRequest{Model: p.cfg.Model, Stream: true}
	if opts.SystemPrompt != "" {
		req.Messages = append(req.Messages, ollamaChatMessage{Role: "system", Content: opts.SystemPrompt})
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, ollamaChatMessage{Role: string(m.Role), Content: m.Content})
	}
	for _, t := range tools {
		var ot openAITool
		ot.Type = "function"
		ot.Function.Name = t.Name
		ot.Function.Description = t.Description
		ot.Function.Parameters = t.InputSchema
		req.Tools = append(req.Tools, ot)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama: request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("ollama: status %d", resp.StatusCode)
	}

	out := make(chan event.Event, 256)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		adapter := &ollamaAdapter{}
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				out <- event.Err(ctx.Err().Error())
				return
			default:
			}

			events, ferr := adapter.Feed(scanner.Text())
			if ferr != nil {
				out <- event.Err(ferr.Error())
				return
			}
			for _, e := range events {
				out <- e
			}
		}
	}()

	return out, nil
}

// ollamaAdapter implements event.StreamAdapter over Ollama's NDJSON chat
// stream. Unlike Anthropic/OpenAI, Ollama sends each tool call whole (no
// incremental argument deltas), so ToolStart/ToolComplete fire back to
// back for every call in the final chunk.
type ollamaAdapter struct{}

func (a *ollamaAdapter) Name() string { return "ollama" }
func (a *ollamaAdapter) Reset()       {}

func (a *ollamaAdapter) Feed(line string) ([]event.Event, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	var chunk ollamaChatChunk
	if err := json.Unmarshal([]byte(line), &chunk); err != nil {
		return nil, &event.AdapterError{Kind: event.InvalidFormat, Chunk: line, Err: err}
	}

	var events []event.Event
	if chunk.Message.Content != "" {
		events = append(events, event.TextDelta(chunk.Message.Content))
	}
	for i, tc := range chunk.Message.ToolCalls {
		callID := fmt.Sprintf("ollama-call-%d", i)
		argsJSON, _ := json.Marshal(tc.Function.Arguments)
		events = append(events, event.ToolStart(callID, tc.Function.Name))
		events = append(events, event.ToolComplete(callID, tc.Function.Name, string(argsJSON)))
	}
	if chunk.Done {
		events = append(events, event.Usage(chunk.PromptEvalCount, chunk.EvalCount))
		events = append(events, event.Complete("stop"))
	}
	return events, nil
}
