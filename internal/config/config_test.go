package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "cosmos", cfg.Name)
	assert.Equal(t, 12, cfg.Agent.MaxIterations)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Provider.Model = "gpt-4.1"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", loaded.Provider.Model)
}

func TestApplyEnvOverridesPrecedence(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-anthropic")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	// Anthropic precedes OpenAI in priority order, so it wins.
	assert.Equal(t, "anthropic", cfg.Provider.Provider)
	assert.Equal(t, "sk-anthropic", cfg.Provider.APIKey)
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider.APIKey = ""
	assert.Error(t, cfg.Validate())

	cfg.Provider.APIKey = "sk-test"
	cfg.Provider.Provider = "bogus"
	assert.Error(t, cfg.Validate())

	cfg.Provider.Provider = "openai"
	assert.NoError(t, cfg.Validate())
}

func TestGetProviderTimeoutFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider.Timeout = "not-a-duration"
	assert.Equal(t, 120_000_000_000.0, float64(cfg.GetProviderTimeout()))
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "config.yaml")
	require.NoError(t, DefaultConfig().Save(path))
	_, err := os.Stat(path)
	require.NoError(t, err)
}
