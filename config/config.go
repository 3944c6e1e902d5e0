// Package config provides configuration types and utilities for the
// orchestration core. This file contains the main unified configuration
// entry point.
package config

import (
	"fmt"
)

// ============================================================================
// MAIN UNIFIED CONFIGURATION
// ============================================================================

// Config represents the complete configuration for a running core instance.
// Like docker-compose.yml, this is the single entry point for all
// configuration — one struct, loaded from YAML, with an optional
// project-local TOML override layered on top.
type Config struct {
	// Version and metadata
	Version     string            `yaml:"version,omitempty"`
	Name        string            `yaml:"name,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`

	// Global settings
	Global GlobalSettings `yaml:"global,omitempty"`

	// Named LLM provider bindings
	Providers map[string]ProviderConfig `yaml:"providers,omitempty"`

	// Domain components
	Permission PermissionConfig `yaml:"permission,omitempty"`
	Skill      SkillConfig      `yaml:"skill,omitempty"`
	Knowledge  KnowledgeConfig  `yaml:"knowledge,omitempty"`
	Executor   ExecutorConfig   `yaml:"executor,omitempty"`
	SubAgent   SubAgentConfig   `yaml:"subagent,omitempty"`
	Quality    QualityConfig    `yaml:"quality,omitempty"`
	Webhook    WebhookConfig    `yaml:"webhook,omitempty"`
	Watcher    WatcherConfig    `yaml:"watcher,omitempty"`
	Recovery   RecoveryConfig   `yaml:"recovery,omitempty"`
}

// Validate implements ConfigInterface for Config.
func (c *Config) Validate() error {
	if err := c.Global.Validate(); err != nil {
		return fmt.Errorf("global settings validation failed: %w", err)
	}
	for name, provider := range c.Providers {
		if err := provider.Validate(); err != nil {
			return fmt.Errorf("provider '%s' validation failed: %w", name, err)
		}
	}
	if err := c.Permission.Validate(); err != nil {
		return fmt.Errorf("permission validation failed: %w", err)
	}
	if err := c.Skill.Validate(); err != nil {
		return fmt.Errorf("skill validation failed: %w", err)
	}
	if err := c.Knowledge.Validate(); err != nil {
		return fmt.Errorf("knowledge validation failed: %w", err)
	}
	if err := c.Executor.Validate(); err != nil {
		return fmt.Errorf("executor validation failed: %w", err)
	}
	if err := c.SubAgent.Validate(); err != nil {
		return fmt.Errorf("subagent validation failed: %w", err)
	}
	if err := c.Quality.Validate(); err != nil {
		return fmt.Errorf("quality validation failed: %w", err)
	}
	if err := c.Webhook.Validate(); err != nil {
		return fmt.Errorf("webhook validation failed: %w", err)
	}
	if err := c.Watcher.Validate(); err != nil {
		return fmt.Errorf("watcher validation failed: %w", err)
	}
	if err := c.Recovery.Validate(); err != nil {
		return fmt.Errorf("recovery validation failed: %w", err)
	}
	return nil
}

// SetDefaults implements ConfigInterface for Config.
func (c *Config) SetDefaults() {
	c.Global.SetDefaults()

	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	if len(c.Providers) == 0 {
		c.Providers["default"] = ProviderConfig{}
	}
	for name := range c.Providers {
		provider := c.Providers[name]
		provider.SetDefaults()
		c.Providers[name] = provider
	}

	c.Permission.SetDefaults()
	c.Skill.SetDefaults()
	c.Knowledge.SetDefaults()
	c.Executor.SetDefaults()
	c.SubAgent.SetDefaults()
	c.Quality.SetDefaults()
	c.Webhook.SetDefaults()
	c.Watcher.SetDefaults()
	c.Recovery.SetDefaults()
}

// ============================================================================
// GLOBAL SETTINGS
// ============================================================================

// GlobalSettings contains global configuration settings.
type GlobalSettings struct {
	Logging       LoggingConfig       `yaml:"logging,omitempty"`
	Performance   PerformanceConfig   `yaml:"performance,omitempty"`
	Observability ObservabilityConfig `yaml:"observability,omitempty"`
}

// Validate implements ConfigInterface for GlobalSettings.
func (c *GlobalSettings) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}
	if err := c.Performance.Validate(); err != nil {
		return fmt.Errorf("performance config validation failed: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("observability config validation failed: %w", err)
	}
	return nil
}

// SetDefaults implements ConfigInterface for GlobalSettings.
func (c *GlobalSettings) SetDefaults() {
	c.Logging.SetDefaults()
	c.Performance.SetDefaults()
	c.Observability.SetDefaults()
}

// ============================================================================
// CONFIGURATION LOADING
// ============================================================================

// LoadConfig loads the complete configuration from a YAML file, then layers
// an optional project-local TOML override (".agentcore.toml" in the same
// directory) on top when present.
func LoadConfig(filePath string) (*Config, error) {
	var config Config
	if err := loadConfig(filePath, &config); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyTOMLOverride(overridePathFor(filePath), &config); err != nil {
		return nil, fmt.Errorf("failed to apply TOML override: %w", err)
	}
	return &config, nil
}

// LoadConfigFromString loads configuration from a YAML string. No TOML
// override is applied — callers composing configuration in-process layer
// overrides themselves.
func LoadConfigFromString(yamlContent string) (*Config, error) {
	var config Config
	if err := loadConfigFromString(yamlContent, &config); err != nil {
		return nil, fmt.Errorf("failed to load config from string: %w", err)
	}
	return &config, nil
}

// ============================================================================
// HELPER METHODS
// ============================================================================

// GetProvider returns a provider configuration by name.
func (c *Config) GetProvider(name string) (*ProviderConfig, bool) {
	provider, exists := c.Providers[name]
	return &provider, exists
}

// ListProviders returns a list of all configured provider names.
func (c *Config) ListProviders() []string {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	return names
}
