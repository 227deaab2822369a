// Package config loads and validates cosmos configuration from YAML, with
// environment variable overrides for provider credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"cosmos/internal/logging"
)

// Config holds all cosmos configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Cache    CacheConfig    `yaml:"cache"`
	Provider ProviderConfig `yaml:"provider"`
	Agent    AgentConfig    `yaml:"agent"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CacheConfig controls the C1 on-disk cache store.
type CacheConfig struct {
	Root          string `yaml:"root"`           // repo-relative, defaults to ".cosmos"
	LockTimeout   string `yaml:"lock_timeout"`   // e.g. "5s"
	HashThreshold int    `yaml:"hash_threshold"` // slow-path file-count ceiling
}

// ProviderConfig selects and configures the C2 chat-completion gateway.
type ProviderConfig struct {
	Provider string `yaml:"provider"` // openai|anthropic|openrouter|gemini|xai|zai
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`

	// SpeedTierChain is the ordered provider chain used for failover on the
	// low-latency model (§4.2 speed-tier failover).
	SpeedTierChain []string `yaml:"speed_tier_chain"`
}

// AgentConfig bounds the C3 agentic loop.
type AgentConfig struct {
	MaxIterations    int    `yaml:"max_iterations"`
	FinalizationGrace int   `yaml:"finalization_grace"`
	WallClockBudget  string `yaml:"wall_clock_budget"` // e.g. "120s"
	MaxParallelTools int    `yaml:"max_parallel_tools"`
}

// WorkflowConfig bounds the C5 review loop and related UI behavior.
type WorkflowConfig struct {
	MaxReviewIterations int `yaml:"max_review_iterations"`
}

// LoggingConfig mirrors logging.Config for YAML decoding.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	JSONFormat bool            `yaml:"json_format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "cosmos",
		Version: "0.1.0",

		Cache: CacheConfig{
			Root:          ".cosmos",
			LockTimeout:   "5s",
			HashThreshold: 2000,
		},

		Provider: ProviderConfig{
			Provider:       "openai",
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			Timeout:        "120s",
			SpeedTierChain: []string{"openai", "openrouter"},
		},

		Agent: AgentConfig{
			MaxIterations:     12,
			FinalizationGrace: 2,
			WallClockBudget:   "180s",
			MaxParallelTools:  4,
		},

		Workflow: WorkflowConfig{
			MaxReviewIterations: 3,
		},

		Logging: LoggingConfig{
			DebugMode:  false,
			JSONFormat: false,
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults if the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("loading config from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes configuration to a YAML file, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides reads provider API keys in priority order, matching the
// teacher's precedence: zai, anthropic, openai, gemini, xai, openrouter.
func (c *Config) applyEnvOverrides() {
	type override struct {
		env      string
		provider string
	}
	overrides := []override{
		{"ZAI_API_KEY", "zai"},
		{"ANTHROPIC_API_KEY", "anthropic"},
		{"OPENAI_API_KEY", "openai"},
		{"GEMINI_API_KEY", "gemini"},
		{"XAI_API_KEY", "xai"},
		{"OPENROUTER_API_KEY", "openrouter"},
	}
	for _, o := range overrides {
		if key := os.Getenv(o.env); key != "" {
			c.Provider.APIKey = key
			c.Provider.Provider = o.provider
			break
		}
	}

	if url := os.Getenv("COSMOS_PROVIDER_BASE_URL"); url != "" {
		c.Provider.BaseURL = url
	}
	if root := os.Getenv("COSMOS_CACHE_ROOT"); root != "" {
		c.Cache.Root = root
	}
}

// GetProviderTimeout returns the provider request timeout as a duration.
func (c *Config) GetProviderTimeout() time.Duration {
	d, err := time.ParseDuration(c.Provider.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetLockTimeout returns the cache advisory-lock timeout.
func (c *Config) GetLockTimeout() time.Duration {
	d, err := time.ParseDuration(c.Cache.LockTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetWallClockBudget returns the agentic loop's wall-clock budget.
func (c *Config) GetWallClockBudget() time.Duration {
	d, err := time.ParseDuration(c.Agent.WallClockBudget)
	if err != nil {
		return 180 * time.Second
	}
	return d
}

// ValidProviders lists supported chat-completion providers.
var ValidProviders = []string{"zai", "anthropic", "openai", "gemini", "xai", "openrouter"}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider API key not configured (set OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY, GEMINI_API_KEY, XAI_API_KEY, or ZAI_API_KEY)")
	}

	valid := false
	for _, p := range ValidProviders {
		if c.Provider.Provider == p {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid provider: %s (valid: %v)", c.Provider.Provider, ValidProviders)
	}
	return nil
}
