// Package config provides the unified configuration types for the
// orchestration core. This file contains the per-domain sub-config types;
// config.go assembles them into the top-level Config.
package config

import (
	"fmt"
	"time"
)

// ============================================================================
// PROVIDER CONFIGURATIONS
// ============================================================================

// ProviderConfig configures one named LLM provider binding. Type selects
// which of provider.AnthropicConfig/OpenAIConfig/OllamaConfig fields apply;
// the others are ignored.
type ProviderConfig struct {
	Type        string  `yaml:"type"` // "anthropic", "openai", "ollama"
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	Host        string  `yaml:"host"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Timeout     int     `yaml:"timeout"` // seconds
}

// Validate implements ConfigInterface for ProviderConfig.
func (c *ProviderConfig) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("type is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Type == "anthropic" || c.Type == "openai" {
		if c.APIKey == "" {
			return fmt.Errorf("api_key is required for %s", c.Type)
		}
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface for ProviderConfig.
func (c *ProviderConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "anthropic"
	}
	if c.Host == "" {
		switch c.Type {
		case "openai":
			c.Host = "https://api.openai.com/v1"
		case "ollama":
			c.Host = "http://localhost:11434"
		default:
			c.Host = "https://api.anthropic.com"
		}
	}
	if c.Model == "" {
		switch c.Type {
		case "openai":
			c.Model = "gpt-4o"
		case "ollama":
			c.Model = "llama3.2"
		default:
			c.Model = "claude-sonnet-4-5"
		}
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.Timeout == 0 {
		c.Timeout = 120
	}
}

// ============================================================================
// PERMISSION CONFIGURATION
// ============================================================================

// PermissionConfig configures the approval gate's session defaults. The
// level names match permission.Level exactly ("strict", "standard",
// "permissive") since this config is decoded straight into a session's
// starting level.
type PermissionConfig struct {
	DefaultLevel string   `yaml:"default_level"` // "strict", "standard", "permissive"
	AlwaysAllow  []string `yaml:"always_allow"`   // tool names never requiring approval
	AlwaysDeny   []string `yaml:"always_deny"`    // tool names always refused without prompting
}

// Validate implements ConfigInterface for PermissionConfig.
func (c *PermissionConfig) Validate() error {
	switch c.DefaultLevel {
	case "", "strict", "standard", "permissive":
	default:
		return fmt.Errorf("invalid default_level: %s", c.DefaultLevel)
	}
	for _, name := range c.AlwaysAllow {
		if name == "" {
			return fmt.Errorf("always_allow entries must be non-empty")
		}
	}
	return nil
}

// SetDefaults implements ConfigInterface for PermissionConfig.
func (c *PermissionConfig) SetDefaults() {
	if c.DefaultLevel == "" {
		c.DefaultLevel = "standard"
	}
	if len(c.AlwaysAllow) == 0 {
		c.AlwaysAllow = []string{"Read", "LS", "Glob", "Grep", "Cwd"}
	}
}

// ============================================================================
// SKILL CONFIGURATION
// ============================================================================

// SkillSourceConfig is one location discovery walks for skill files.
type SkillSourceConfig struct {
	Path string `yaml:"path"`
	Tier string `yaml:"tier"` // "project", "user", "built_in"
}

// Validate implements ConfigInterface for SkillSourceConfig.
func (c *SkillSourceConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	switch c.Tier {
	case "project", "user", "built_in":
	default:
		return fmt.Errorf("invalid tier: %s", c.Tier)
	}
	return nil
}

// SetDefaults implements ConfigInterface for SkillSourceConfig.
func (c *SkillSourceConfig) SetDefaults() {
	if c.Tier == "" {
		c.Tier = "project"
	}
}

// SkillConfig configures skill discovery, selection, and context injection.
type SkillConfig struct {
	Sources      []SkillSourceConfig `yaml:"sources"`
	MaxSelected  int                 `yaml:"max_selected"`
	MaxLines     int                 `yaml:"max_lines"`
}

// Validate implements ConfigInterface for SkillConfig.
func (c *SkillConfig) Validate() error {
	for i := range c.Sources {
		if err := c.Sources[i].Validate(); err != nil {
			return fmt.Errorf("skill source %d validation failed: %w", i, err)
		}
	}
	if c.MaxSelected < 0 {
		return fmt.Errorf("max_selected must be non-negative")
	}
	if c.MaxLines < 0 {
		return fmt.Errorf("max_lines must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface for SkillConfig.
func (c *SkillConfig) SetDefaults() {
	if len(c.Sources) == 0 {
		c.Sources = []SkillSourceConfig{{Path: ".skills", Tier: "project"}}
	}
	for i := range c.Sources {
		c.Sources[i].SetDefaults()
	}
	if c.MaxSelected == 0 {
		c.MaxSelected = 5
	}
	if c.MaxLines == 0 {
		c.MaxLines = 400
	}
}

// ============================================================================
// KNOWLEDGE CONFIGURATION
// ============================================================================

// KnowledgeConfig configures relevance-ranked retrieval into the prompt.
type KnowledgeConfig struct {
	TopK     int     `yaml:"top_k"`
	MaxChars int     `yaml:"max_chars"`
	MinScore float64 `yaml:"min_score"`
}

// Validate implements ConfigInterface for KnowledgeConfig.
func (c *KnowledgeConfig) Validate() error {
	if c.TopK < 0 {
		return fmt.Errorf("top_k must be non-negative")
	}
	if c.MaxChars < 0 {
		return fmt.Errorf("max_chars must be non-negative")
	}
	if c.MinScore < 0 {
		return fmt.Errorf("min_score must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface for KnowledgeConfig.
func (c *KnowledgeConfig) SetDefaults() {
	if c.TopK == 0 {
		c.TopK = 5
	}
	if c.MaxChars == 0 {
		c.MaxChars = 4000
	}
}

// ============================================================================
// EXECUTOR CONFIGURATION (plan batch execution / sub-agent spawner)
// ============================================================================

// ExecutorConfig bounds the step executor's per-step dependency-output
// gathering and batch concurrency, mirroring stepexec.Limits.
type ExecutorConfig struct {
	MaxDepOutputChars int `yaml:"max_dep_output_chars"`
	MaxTotalDepChars  int `yaml:"max_total_dep_chars"`
	BatchWidth        int `yaml:"batch_width"`
}

// Validate implements ConfigInterface for ExecutorConfig.
func (c *ExecutorConfig) Validate() error {
	if c.MaxDepOutputChars < 0 || c.MaxTotalDepChars < 0 {
		return fmt.Errorf("dependency output limits must be non-negative")
	}
	if c.BatchWidth < 0 {
		return fmt.Errorf("batch_width must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface for ExecutorConfig.
func (c *ExecutorConfig) SetDefaults() {
	if c.MaxDepOutputChars == 0 {
		c.MaxDepOutputChars = 4000
	}
	if c.MaxTotalDepChars == 0 {
		c.MaxTotalDepChars = 12000
	}
	if c.BatchWidth == 0 {
		c.BatchWidth = 4
	}
}

// SubAgentConfig configures the bounded-concurrency Task spawner.
type SubAgentConfig struct {
	MaxConcurrency int `yaml:"max_concurrency"`
}

// Validate implements ConfigInterface for SubAgentConfig.
func (c *SubAgentConfig) Validate() error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface for SubAgentConfig.
func (c *SubAgentConfig) SetDefaults() {
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 3
	}
}

// ============================================================================
// QUALITY GATE CONFIGURATION
// ============================================================================

// CommandGateConfig configures one shell-backed quality gate.
type CommandGateConfig struct {
	ID      string        `yaml:"id"`
	Name    string        `yaml:"name"`
	Command []string      `yaml:"command"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate implements ConfigInterface for CommandGateConfig.
func (c *CommandGateConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("id is required")
	}
	if len(c.Command) == 0 {
		return fmt.Errorf("command is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface for CommandGateConfig.
func (c *CommandGateConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = c.ID
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// PluginGateConfig configures one out-of-process validator plugin.
type PluginGateConfig struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"` // path to the plugin binary
}

// Validate implements ConfigInterface for PluginGateConfig.
func (c *PluginGateConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("id is required")
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// SetDefaults implements ConfigInterface for PluginGateConfig.
func (c *PluginGateConfig) SetDefaults() {}

// QualityConfig configures the phase-ordered validation pipeline.
type QualityConfig struct {
	CommandGates     []CommandGateConfig `yaml:"command_gates"`
	PluginGates      []PluginGateConfig  `yaml:"plugin_gates"`
	ReviewEnabled    bool                `yaml:"review_enabled"`
	ReviewMinScore   int                 `yaml:"review_min_score"`
}

// Validate implements ConfigInterface for QualityConfig.
func (c *QualityConfig) Validate() error {
	for i := range c.CommandGates {
		if err := c.CommandGates[i].Validate(); err != nil {
			return fmt.Errorf("command gate %d validation failed: %w", i, err)
		}
	}
	for i := range c.PluginGates {
		if err := c.PluginGates[i].Validate(); err != nil {
			return fmt.Errorf("plugin gate %d validation failed: %w", i, err)
		}
	}
	if c.ReviewMinScore < 0 || c.ReviewMinScore > 100 {
		return fmt.Errorf("review_min_score must be between 0 and 100")
	}
	return nil
}

// SetDefaults implements ConfigInterface for QualityConfig.
func (c *QualityConfig) SetDefaults() {
	for i := range c.CommandGates {
		c.CommandGates[i].SetDefaults()
	}
	for i := range c.PluginGates {
		c.PluginGates[i].SetDefaults()
	}
	if c.ReviewMinScore == 0 {
		c.ReviewMinScore = 70
	}
}

// ============================================================================
// WEBHOOK CONFIGURATION
// ============================================================================

// WebhookChannelConfig configures one outbound notification channel.
type WebhookChannelConfig struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Type       string   `yaml:"type"` // "slack", "feishu", "telegram", "discord", "custom"
	Enabled    bool     `yaml:"enabled"`
	URL        string   `yaml:"url"`
	Secret     string   `yaml:"secret"`
	Global     bool     `yaml:"global"`
	SessionIDs []string `yaml:"session_ids"`
	Events     []string `yaml:"events"`
	RatePerSec float64  `yaml:"rate_per_sec"`
	RateBurst  int      `yaml:"rate_burst"`
}

// Validate implements ConfigInterface for WebhookChannelConfig.
func (c *WebhookChannelConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("id is required")
	}
	if c.Type == "" {
		return fmt.Errorf("type is required")
	}
	if c.Enabled && c.URL == "" {
		return fmt.Errorf("url is required for an enabled channel")
	}
	if c.RatePerSec < 0 {
		return fmt.Errorf("rate_per_sec must be non-negative")
	}
	if c.RateBurst < 0 {
		return fmt.Errorf("rate_burst must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface for WebhookChannelConfig.
func (c *WebhookChannelConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = c.ID
	}
	if c.RatePerSec == 0 {
		c.RatePerSec = 1.0
	}
	if c.RateBurst == 0 {
		c.RateBurst = 5
	}
}

// WebhookConfig configures the event-to-channel dispatcher.
type WebhookConfig struct {
	Channels       []WebhookChannelConfig `yaml:"channels"`
	MaxRetryAttempts int                  `yaml:"max_retry_attempts"`
}

// Validate implements ConfigInterface for WebhookConfig.
func (c *WebhookConfig) Validate() error {
	ids := make(map[string]bool)
	for i := range c.Channels {
		if err := c.Channels[i].Validate(); err != nil {
			return fmt.Errorf("channel %d validation failed: %w", i, err)
		}
		if ids[c.Channels[i].ID] {
			return fmt.Errorf("duplicate channel id: %s", c.Channels[i].ID)
		}
		ids[c.Channels[i].ID] = true
	}
	if c.MaxRetryAttempts < 0 {
		return fmt.Errorf("max_retry_attempts must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface for WebhookConfig.
func (c *WebhookConfig) SetDefaults() {
	for i := range c.Channels {
		c.Channels[i].SetDefaults()
	}
	if c.MaxRetryAttempts == 0 {
		c.MaxRetryAttempts = 5
	}
}

// ============================================================================
// WATCHER CONFIGURATION
// ============================================================================

// WatcherConfig configures the filesystem watcher.
type WatcherConfig struct {
	Target        string        `yaml:"target"` // "projects_root", "project", "file"
	Path          string        `yaml:"path"`
	DebounceDelay time.Duration `yaml:"debounce_delay"`
}

// Validate implements ConfigInterface for WatcherConfig.
func (c *WatcherConfig) Validate() error {
	switch c.Target {
	case "", "projects_root", "project", "file":
	default:
		return fmt.Errorf("invalid target: %s", c.Target)
	}
	if c.DebounceDelay < 0 {
		return fmt.Errorf("debounce_delay must be non-negative")
	}
	return nil
}

// SetDefaults implements ConfigInterface for WatcherConfig.
func (c *WatcherConfig) SetDefaults() {
	if c.Target == "" {
		c.Target = "projects_root"
	}
	if c.DebounceDelay == 0 {
		c.DebounceDelay = 100 * time.Millisecond
	}
}

// ============================================================================
// RECOVERY CONFIGURATION
// ============================================================================

// RecoveryConfig configures snapshot-driven resume.
type RecoveryConfig struct {
	ExpiryExpr string `yaml:"expiry_expr"` // cron expression, empty disables expiry
}

// Validate implements ConfigInterface for RecoveryConfig.
func (c *RecoveryConfig) Validate() error {
	return nil
}

// SetDefaults implements ConfigInterface for RecoveryConfig.
func (c *RecoveryConfig) SetDefaults() {}

// ============================================================================
// GLOBAL CONFIGURATIONS
// ============================================================================

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // Log level
	Format string `yaml:"format"` // Log format
	Output string `yaml:"output"` // Output destination
}

// Validate implements ConfigInterface for LoggingConfig.
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Level] {
		return fmt.Errorf("invalid log level: %s", c.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid log format: %s", c.Format)
	}
	validOutputs := map[string]bool{"stdout": true, "stderr": true, "file": true}
	if !validOutputs[c.Output] {
		return fmt.Errorf("invalid output destination: %s", c.Output)
	}
	return nil
}

// SetDefaults implements ConfigInterface for LoggingConfig.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
}

// PerformanceConfig represents performance configuration.
type PerformanceConfig struct {
	MaxConcurrency int           `yaml:"max_concurrency"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Validate implements ConfigInterface for PerformanceConfig.
func (c *PerformanceConfig) Validate() error {
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("max_concurrency must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// SetDefaults implements ConfigInterface for PerformanceConfig.
func (c *PerformanceConfig) SetDefaults() {
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 4
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Minute
	}
}

// ObservabilityConfig configures tracing and metrics export.
type ObservabilityConfig struct {
	Enabled        bool   `yaml:"enabled"`
	ServiceName    string `yaml:"service_name"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	PrometheusAddr string `yaml:"prometheus_addr"`
}

// Validate implements ConfigInterface for ObservabilityConfig.
func (c *ObservabilityConfig) Validate() error {
	return nil
}

// SetDefaults implements ConfigInterface for ObservabilityConfig.
func (c *ObservabilityConfig) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "agentcore"
	}
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}
