// Package factory builds the fast/quality engine pair from configuration,
// wiring each provider client with the standard middleware chain.
package factory

import (
	"fmt"

	"pmtoolkit/pkg/config"
	"pmtoolkit/pkg/llm"
	"pmtoolkit/pkg/llm/internal/provider/anthropic"
	"pmtoolkit/pkg/llm/internal/provider/gemini"
	"pmtoolkit/pkg/llm/internal/provider/ollama"
	"pmtoolkit/pkg/llm/internal/provider/openai"
	"pmtoolkit/pkg/llm/middleware"
	"pmtoolkit/pkg/logx"
	"pmtoolkit/pkg/tokens"
)

// BuildEngines constructs the fast and quality engine clients from cfg.
// Both clients share one metrics recorder and token counter so usage is
// reported uniformly regardless of provider.
func BuildEngines(cfg *config.Config, logger *logx.Logger, recorder *middleware.Recorder) (llm.Engines, error) {
	counter, err := tokens.NewCounter()
	if err != nil {
		// Counter is nil-safe; usage falls back to a length heuristic.
		logger.Warn("token counter unavailable, using length estimate: %v", err)
	}

	fast, err := buildClient(&cfg.Fast, cfg, logger, recorder, counter)
	if err != nil {
		return llm.Engines{}, fmt.Errorf("fast engine: %w", err)
	}
	quality, err := buildClient(&cfg.Quality, cfg, logger, recorder, counter)
	if err != nil {
		return llm.Engines{}, fmt.Errorf("quality engine: %w", err)
	}
	return llm.Engines{Fast: fast, Quality: quality}, nil
}

func buildClient(ec *config.EngineConfig, cfg *config.Config, logger *logx.Logger, recorder *middleware.Recorder, counter *tokens.Counter) (llm.Client, error) {
	var base llm.Client
	switch ec.Provider {
	case config.ProviderAnthropic:
		base = anthropic.New(ec.APIKey, ec.Model)
	case config.ProviderOpenAI:
		base = openai.New(ec.APIKey, ec.Model)
	case config.ProviderOllama:
		base = ollama.New(ec.Host, ec.Model)
	case config.ProviderGemini:
		base = gemini.New(ec.APIKey, ec.Model)
	case config.ProviderStub:
		base = llm.NewStubClient(ec.Model)
	default:
		return nil, fmt.Errorf("unknown provider %q", ec.Provider)
	}

	return llm.Chain(base,
		middleware.Logging(logger),
		middleware.Metrics(recorder),
		middleware.Usage(counter),
		middleware.Timeout(cfg.RequestTimeout()),
	), nil
}
