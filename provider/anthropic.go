package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arborcode/agentcore/event"
)

// AnthropicConfig configures the Claude Messages API provider.
type AnthropicConfig struct {
	APIKey string
	Model  string
	Host   string // defaults to https://api.anthropic.com
}

// AnthropicProvider implements Provider against the Anthropic Messages
// API, directly porting the SSE-parsing structure of the teacher's
// llms/anthropic.go makeStreamingRequest into the unified-event model: the
// per-request tool-call accumulator map stays, but content_block_delta /
// content_block_stop now emit event.Event instead of the teacher's
// internal StreamChunk.
type AnthropicProvider struct {
	cfg    AnthropicConfig
	client *http.Client
}

func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	if cfg.Host == "" {
		cfg.Host = "https://api.anthropic.com"
	}
	return &AnthropicProvider{cfg: cfg, client: &http.Client{Timeout: 5 * time.Minute}}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	Stream      bool               `json:"stream"`
	System      string             `json:"system,omitempty"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicStreamEvent struct {
	Type         string `json:"type"`
	Index        int    `json:"index"`
	Delta        *struct {
		Type        string `json:"type"`
		Text        string `json:"text,omitempty"`
		PartialJSON string `json:"partial_json,omitempty"`
		StopReason  string `json:"stop_reason,omitempty"`
	} `json:"delta,omitempty"`
	ContentBlock *struct {
		Type string `json:"type"`
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"content_block,omitempty"`
	Usage *struct {
		OutputTokens int `json:"output_tokens"`
		InputTokens  int `json:"input_tokens"`
	} `json:"usage,omitempty"`
}

func (p *AnthropicProvider) buildRequest(messages []Message, tools []ToolDefinition, opts StreamOptions) anthropicRequest {
	req := anthropicRequest{
		Model:       p.cfg.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Stream:      true,
		System:      opts.SystemPrompt,
	}
	for _, m := range messages {
		if m.Role == RoleSystem {
			continue
		}
		req.Messages = append(req.Messages, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}
	for _, t := range tools {
		req.Tools = append(req.Tools, anthropicTool{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema})
	}
	return req
}

func (p *AnthropicProvider) StreamMessage(ctx context.Context, messages []Message, tools []ToolDefinition, opts StreamOptions) (<-chan event.Event, error) {
	reqBody := p.buildRequest(messages, tools, opts)
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Host+"/v1/messages", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("anthropic: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	if len(reqBody.Tools) > 0 {
		httpReq.Header.Set("anthropic-beta", "fine-grained-tool-streaming-2025-05-14")
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("anthropic: status %d: %s", resp.StatusCode, string(body))
	}

	out := make(chan event.Event, 256)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		adapter := &anthropicAdapter{toolCalls: map[int]*pendingToolCall{}}
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				out <- event.Err(ctx.Err().Error())
				return
			default:
			}

			line := scanner.Text()
			events, ferr := adapter.Feed(line)
			if ae, ok := ferr.(*event.AdapterError); ok && ae.Kind == event.UnsupportedEvent {
				continue
			}
			if ferr != nil {
				out <- event.Err(ferr.Error())
				return
			}
			for _, e := range events {
				out <- e
			}
		}
		if err := scanner.Err(); err != nil {
			out <- event.Err(fmt.Sprintf("anthropic: stream read: %v", err))
		}
	}()

	return out, nil
}

type pendingToolCall struct {
	id, name string
	rawArgs  strings.Builder
}

// anthropicAdapter implements event.StreamAdapter over Anthropic's SSE
// `data: {...}` lines — one line of input, zero-or-more unified events
// out, exactly the teacher's per-chunk switch in makeStreamingRequest
// restructured behind the adapter contract so it is independently
// testable and reusable across requests via Reset.
type anthropicAdapter struct {
	toolCalls map[int]*pendingToolCall
}

func (a *anthropicAdapter) Name() string { return "anthropic" }

func (a *anthropicAdapter) Reset() { a.toolCalls = map[int]*pendingToolCall{} }

func (a *anthropicAdapter) Feed(line string) ([]event.Event, error) {
	if line == "" || strings.HasPrefix(line, ":") {
		return nil, nil
	}
	if !strings.HasPrefix(line, "data: ") {
		return nil, nil
	}
	raw := strings.TrimPrefix(line, "data: ")

	var se anthropicStreamEvent
	if err := json.Unmarshal([]byte(raw), &se); err != nil {
		return nil, &event.AdapterError{Kind: event.InvalidFormat, Chunk: line, Err: err}
	}

	switch se.Type {
	case "content_block_start":
		if se.ContentBlock != nil && se.ContentBlock.Type == "tool_use" {
			a.toolCalls[se.Index] = &pendingToolCall{id: se.ContentBlock.ID, name: se.ContentBlock.Name}
			return []event.Event{event.ToolStart(se.ContentBlock.ID, se.ContentBlock.Name)}, nil
		}
		return nil, nil

	case "content_block_delta":
		if se.Delta == nil {
			return nil, nil
		}
		if se.Delta.Text != "" {
			return []event.Event{event.TextDelta(se.Delta.Text)}, nil
		}
		if se.Delta.PartialJSON != "" {
			if tc, ok := a.toolCalls[se.Index]; ok {
				tc.rawArgs.WriteString(se.Delta.PartialJSON)
			}
		}
		return nil, nil

	case "content_block_stop":
		if tc, ok := a.toolCalls[se.Index]; ok {
			delete(a.toolCalls, se.Index)
			return []event.Event{event.ToolComplete(tc.id, tc.name, tc.rawArgs.String())}, nil
		}
		return nil, nil

	case "message_delta":
		if se.Usage != nil {
			return []event.Event{event.Usage(se.Usage.InputTokens, se.Usage.OutputTokens)}, nil
		}
		return nil, nil

	case "message_stop":
		return []event.Event{event.Complete("end_turn")}, nil

	case "ping", "message_start":
		return nil, nil

	default:
		return nil, &event.AdapterError{Kind: event.UnsupportedEvent, Chunk: line, Err: fmt.Errorf("unhandled type %q", se.Type)}
	}
}
