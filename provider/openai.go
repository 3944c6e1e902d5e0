package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arborcode/agentcore/event"
)

// OpenAIConfig configures the Chat Completions API provider.
type OpenAIConfig struct {
	APIKey string
	Model  string
	Host   string // defaults to https://api.openai.com/v1
}

// OpenAIProvider implements Provider against the OpenAI-compatible Chat
// Completions streaming API (also used by most self-hosted gateways),
// directly porting the teacher's llms/openai.go makeStreamingRequest
// accumulation logic into unified events.
type OpenAIProvider struct {
	cfg    OpenAIConfig
	client *http.Client
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.Host == "" {
		cfg.Host = "https://api.openai.com/v1"
	}
	return &OpenAIProvider{cfg: cfg, client: &http.Client{Timeout: 5 * time.Minute}}
}

func (p *OpenAIProvider) Name() string { return "openai" }

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	Stream      bool            `json:"stream"`
	Tools       []openAITool    `json:"tools,omitempty"`
}

type openAIMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

type openAITool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	} `json:"function"`
}

type openAIStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *OpenAIProvider) StreamMessage(ctx context.Context, messages []Message, tools []ToolDefinition, opts StreamOptions) (<-chan event.Event, error) {
	req := openAIRequest{Model: p.cfg.Model, Temperature: opts.Temperature, Stream: true}
	if opts.SystemPrompt != "" {
		req.Messages = append(req.Messages, openAIMessage{Role: "system", Content: opts.SystemPrompt})
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openAIMessage{Role: string(m.Role), Content: m.Content, ToolCallID: m.ToolCallID})
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
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Host+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("openai: status %d: %s", resp.StatusCode, string(b))
	}

	out := make(chan event.Event, 256)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		adapter := &openAIAdapter{toolCalls: map[int]*pendingToolCall{}}
		reader := bufio.NewReader(resp.Body)
		for {
			select {
			case <-ctx.Done():
				out <- event.Err(ctx.Err().Error())
				return
			default:
			}

			line, rerr := reader.ReadString('\n')
			if rerr != nil {
				if rerr != io.EOF {
					out <- event.Err(fmt.Sprintf("openai: stream read: %v", rerr))
				}
				return
			}

			events, ferr := adapter.Feed(line)
			if ferr != nil {
				out <- event.Err(ferr.Error())
				return
			}
			for _, e := range events {
				out <- e
			}
			if adapter.done {
				return
			}
		}
	}()

	return out, nil
}

// openAIAdapter implements event.StreamAdapter over `data: {...}\n` SSE
// lines terminated by a literal `data: [DONE]`.
type openAIAdapter struct {
	toolCalls map[int]*pendingToolCall
	done      bool
}

func (a *openAIAdapter) Name() string { return "openai" }

func (a *openAIAdapter) Reset() { a.toolCalls = map[int]*pendingToolCall{}; a.done = false }

func (a *openAIAdapter) Feed(line string) ([]event.Event, error) {
	line = trimSSE(line)
	if line == "" {
		return nil, nil
	}
	if line == "[DONE]" {
		a.done = true
		return []event.Event{event.Complete("stop")}, nil
	}

	var chunk openAIStreamChunk
	if err := json.Unmarshal([]byte(line), &chunk); err != nil {
		return nil, &event.AdapterError{Kind: event.InvalidFormat, Chunk: line, Err: err}
	}

	var events []event.Event
	if chunk.Usage != nil {
		events = append(events, event.Usage(chunk.Usage.PromptTokens, chunk.Usage.CompletionTokens))
	}
	if len(chunk.Choices) == 0 {
		return events, nil
	}
	choice := chunk.Choices[0]

	if choice.Delta.Content != "" {
		events = append(events, event.TextDelta(choice.Delta.Content))
	}

	for _, dc := range choice.Delta.ToolCalls {
		tc, exists := a.toolCalls[dc.Index]
		if !exists {
			tc = &pendingToolCall{id: dc.ID, name: dc.Function.Name}
			a.toolCalls[dc.Index] = tc
			events = append(events, event.ToolStart(tc.id, tc.name))
		}
		tc.rawArgs.WriteString(dc.Function.Arguments)
	}

	if choice.FinishReason == "tool_calls" {
		for idx, tc := range a.toolCalls {
			events = append(events, event.ToolComplete(tc.id, tc.name, tc.rawArgs.String()))
			delete(a.toolCalls, idx)
		}
	} else if choice.FinishReason == "stop" {
		events = append(events, event.Complete("stop"))
		a.done = true
	}

	return events, nil
}

func trimSSE(line string) string {
	line = trimSuffixNL(line)
	const prefix = "data: "
	if len(line) >= len(prefix) && line[:len(prefix)] == prefix {
		return line[len(prefix):]
	}
	return ""
}

func trimSuffixNL(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
