package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/arborcode/agentcore/config"
	"github.com/arborcode/agentcore/event"
	"github.com/arborcode/agentcore/orchestrator"
	"github.com/arborcode/agentcore/permission"
	"github.com/arborcode/agentcore/provider"
	"github.com/arborcode/agentcore/tool"
	"github.com/google/uuid"
)

// RunCmd wires a single provider, the canonical tool bundle, and a
// permission gate into one orchestrator.Loop, runs it against a prompt,
// and prints the resulting event stream to stdout. It exists to exercise
// the core end-to-end from a terminal, not as a deployable agent host.
type RunCmd struct {
	Prompt       string `arg:"" help:"User prompt to send to the agent."`
	ProviderName string `help:"Provider entry to use from the config file." default:"default"`
	WorkingDir   string `help:"Working directory tools should operate against." default:"."`
	Level        string `help:"Starting permission level (strict, standard, permissive)." default:"standard"`
	MaxTurns     int    `help:"Maximum agentic-loop iterations." default:"25"`
}

func (c *RunCmd) Run(cli *CLI) error {
	var cfg *config.Config
	if cli.Config != "" {
		loaded, err := config.LoadConfig(cli.Config)
		if err != nil {
			return fmt.Errorf("run: load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("run: invalid config: %w", err)
	}

	providerCfg, ok := cfg.Providers[c.ProviderName]
	if !ok {
		return fmt.Errorf("run: no provider named %q in config", c.ProviderName)
	}

	p, err := buildProvider(providerCfg)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	repo, err := tool.NewCanonicalRepository()
	if err != nil {
		return fmt.Errorf("run: build tool repository: %w", err)
	}
	registry := tool.NewRegistry()
	if err := registry.RegisterRepository(repo); err != nil {
		return fmt.Errorf("run: register tools: %w", err)
	}

	gate := permission.NewGate(func() string { return uuid.NewString() })
	sessionID := uuid.NewString()
	gate.SetLevel(sessionID, permission.Level(c.Level))

	execCtx := tool.NewExecutionContext(c.WorkingDir, c.WorkingDir)

	loop := orchestrator.New(orchestrator.Options{
		Provider:      p,
		Registry:      registry,
		Gate:          gate,
		SessionID:     sessionID,
		MaxIterations: c.MaxTurns,
	}, execCtx)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for evt := range loop.Run(ctx, c.Prompt) {
		printEvent(evt)
		if evt.Kind == event.KindPermissionRequest {
			_ = gate.Resolve(evt.PermissionRequestID, false, false)
		}
	}
	return nil
}

func buildProvider(cfg config.ProviderConfig) (provider.Provider, error) {
	switch cfg.Type {
	case "anthropic":
		return provider.NewAnthropicProvider(provider.AnthropicConfig{
			APIKey: cfg.APIKey, Model: cfg.Model, Host: cfg.Host,
		}), nil
	case "openai":
		return provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey: cfg.APIKey, Model: cfg.Model, Host: cfg.Host,
		}), nil
	case "ollama":
		return provider.NewOllamaProvider(provider.OllamaConfig{
			Model: cfg.Model, Host: cfg.Host,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}

// printEvent renders the subset of event.Kind a terminal harness cares
// about; kinds with no useful terminal rendering (usage, telemetry) are
// dropped silently.
func printEvent(e event.Event) {
	switch e.Kind {
	case event.KindTextDelta:
		fmt.Print(e.Text)
	case event.KindToolStart:
		fmt.Printf("\n[tool] %s %s\n", e.ToolName, e.ToolCallID)
	case event.KindToolResult:
		fmt.Printf("[tool result] %s: %s\n", e.ToolName, e.ToolOutput)
	case event.KindPermissionRequest:
		fmt.Printf("\n[permission] %s requested, auto-denying in non-interactive harness\n", e.PermissionToolName)
	case event.KindError:
		fmt.Fprintf(os.Stderr, "\n[error] %s\n", e.ErrorMessage)
	case event.KindComplete:
		fmt.Printf("\n[done] %s\n", e.StopReason)
	}
}
