// Package config loads toolkit configuration from a JSON file with
// environment variable substitution and sensible defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"
)

// Provider names accepted in engine configuration.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderGemini    = "gemini"
	ProviderStub      = "stub"
)

// Environment variables consulted when the config file leaves keys blank.
const (
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvOllamaHost      = "OLLAMA_HOST"
)

// Defaults applied when the config file omits values.
const (
	DefaultListenAddr     = ":8080"
	DefaultDatabasePath   = "pmtoolkit.db"
	DefaultRequestTimeout = 120 * time.Second
	DefaultTrailCap       = 64
	DefaultOllamaHost     = "http://localhost:11434"

	DefaultQualityModel = "claude-sonnet-4-20250514"
	DefaultFastModel    = "gpt-4o-mini"
)

// EngineConfig selects the provider and model behind one engine slot.
type EngineConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key,omitempty"`
	Host     string `json:"host,omitempty"` // ollama only
}

// Config is the root toolkit configuration.
type Config struct {
	ListenAddr         string       `json:"listen_addr"`
	DatabasePath       string       `json:"database_path"`
	RequestTimeoutSecs int          `json:"request_timeout_secs"`
	TrailCap           int          `json:"trail_cap"`
	Fast               EngineConfig `json:"fast"`
	Quality            EngineConfig `json:"quality"`
}

// RequestTimeout returns the per-generation timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSecs <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads and validates configuration from a JSON file. Placeholders of
// the form ${ENV_VAR} are replaced before parsing; placeholders whose
// variable is unset are left as-is.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dataStr := envVarRegex.ReplaceAllStringFunc(string(data), func(match string) string {
		envVar := match[2 : len(match)-1]
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})

	var cfg Config
	if err := json.Unmarshal([]byte(dataStr), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns a config usable without a config file, relying entirely on
// environment variables for credentials.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath
	}
	if cfg.TrailCap <= 0 {
		cfg.TrailCap = DefaultTrailCap
	}
	if cfg.Quality.Provider == "" {
		cfg.Quality.Provider = ProviderAnthropic
	}
	if cfg.Fast.Provider == "" {
		cfg.Fast.Provider = ProviderOpenAI
	}
	applyEngineDefaults(&cfg.Quality, DefaultQualityModel)
	applyEngineDefaults(&cfg.Fast, DefaultFastModel)
}

func applyEngineDefaults(ec *EngineConfig, defaultModel string) {
	if ec.Model == "" {
		ec.Model = defaultModel
	}
	if ec.APIKey == "" {
		switch ec.Provider {
		case ProviderAnthropic:
			ec.APIKey = os.Getenv(EnvAnthropicAPIKey)
		case ProviderOpenAI:
			ec.APIKey = os.Getenv(EnvOpenAIAPIKey)
		case ProviderGemini:
			ec.APIKey = os.Getenv(EnvGeminiAPIKey)
		}
	}
	if ec.Provider == ProviderOllama && ec.Host == "" {
		if host := os.Getenv(EnvOllamaHost); host != "" {
			ec.Host = host
		} else {
			ec.Host = DefaultOllamaHost
		}
	}
}

func validate(cfg *Config) error {
	for _, slot := range []struct {
		name string
		ec   *EngineConfig
	}{
		{"fast", &cfg.Fast},
		{"quality", &cfg.Quality},
	} {
		switch slot.ec.Provider {
		case ProviderAnthropic, ProviderOpenAI, ProviderGemini:
			if slot.ec.APIKey == "" {
				return fmt.Errorf("%s engine: provider %q requires an API key", slot.name, slot.ec.Provider)
			}
		case ProviderOllama, ProviderStub:
			// no credentials needed
		default:
			return fmt.Errorf("%s engine: unknown provider %q", slot.name, slot.ec.Provider)
		}
		if slot.ec.Model == "" {
			return fmt.Errorf("%s engine: model must be set", slot.name)
		}
	}
	return nil
}
