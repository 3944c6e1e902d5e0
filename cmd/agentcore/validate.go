package main

import (
	"fmt"

	"github.com/arborcode/agentcore/config"
)

// ValidateCmd loads a config file, applies defaults, and runs its full
// Validate chain, printing either "ok" or the first validation error.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	if cli.Config == "" {
		return fmt.Errorf("validate: --config is required")
	}

	cfg, err := config.LoadConfig(cli.Config)
	if err != nil {
		return fmt.Errorf("validate: load: %w", err)
	}
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	fmt.Printf("%s: ok (%d provider(s) configured)\n", cli.Config, len(cfg.Providers))
	return nil
}
