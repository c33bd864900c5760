package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"fast":    {"provider": "stub", "model": "fast-stub"},
		"quality": {"provider": "stub", "model": "quality-stub"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultDatabasePath, cfg.DatabasePath)
	assert.Equal(t, DefaultTrailCap, cfg.TrailCap)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout())
}

func TestLoadEnvSubstitution(t *testing.T) {
	t.Setenv("PMTOOLKIT_TEST_KEY", "sk-test-123")
	path := writeConfig(t, `{
		"fast":    {"provider": "openai", "model": "gpt-4o-mini", "api_key": "${PMTOOLKIT_TEST_KEY}"},
		"quality": {"provider": "stub", "model": "quality-stub"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test-123", cfg.Fast.APIKey)
}

func TestLoadEnvFallbackForAPIKey(t *testing.T) {
	t.Setenv(EnvAnthropicAPIKey, "sk-ant-from-env")
	path := writeConfig(t, `{
		"fast":    {"provider": "stub", "model": "fast-stub"},
		"quality": {"provider": "anthropic", "model": "claude-sonnet-4-20250514"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-from-env", cfg.Quality.APIKey)
}

func TestLoadRejectsMissingAPIKey(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "")
	path := writeConfig(t, `{
		"fast":    {"provider": "openai", "model": "gpt-4o-mini"},
		"quality": {"provider": "stub", "model": "quality-stub"}
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires an API key")
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, `{
		"fast":    {"provider": "carrier-pigeon", "model": "m"},
		"quality": {"provider": "stub", "model": "quality-stub"}
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestOllamaHostDefault(t *testing.T) {
	t.Setenv(EnvOllamaHost, "")
	path := writeConfig(t, `{
		"fast":    {"provider": "ollama", "model": "llama3.2"},
		"quality": {"provider": "stub", "model": "quality-stub"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaHost, cfg.Fast.Host)
}

func TestRequestTimeoutOverride(t *testing.T) {
	path := writeConfig(t, `{
		"request_timeout_secs": 30,
		"fast":    {"provider": "stub", "model": "fast-stub"},
		"quality": {"provider": "stub", "model": "quality-stub"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
}
