// Package llm provides provider-neutral types and interfaces for text-generation
// engine clients, plus middleware composition for cross-cutting concerns.
package llm

import "context"

// Engine selects which configured engine instance handles a generation call.
type Engine string

const (
	// EngineFast is the lower-cost, lower-latency engine instance.
	EngineFast Engine = "fast"
	// EngineQuality is the higher-fidelity engine instance.
	EngineQuality Engine = "quality"
)

// DefaultMaxTokens caps generation output when a request does not set a limit.
const DefaultMaxTokens = 4096

// Request describes a single generation call. Immutable once constructed.
type Request struct {
	// System is the system instruction for the engine.
	System string
	// Prompt is the user prompt.
	Prompt string
	// Temperature overrides the provider default when non-nil.
	Temperature *float64
	// MaxTokens caps the response length; 0 means DefaultMaxTokens.
	MaxTokens int
}

// Result is the outcome of a generation call. Never mutated after creation.
type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Client is the boundary to a text-generation engine.
type Client interface {
	// Generate performs one blocking request/response generation call.
	Generate(ctx context.Context, req Request) (Result, error)

	// ModelName returns the underlying model identifier.
	ModelName() string
}

// Engines holds the two engine instances a pipeline chooses between.
type Engines struct {
	Fast    Client
	Quality Client
}

// Select returns the client for the given engine selector.
func (e Engines) Select(sel Engine) Client {
	if sel == EngineFast {
		return e.Fast
	}
	return e.Quality
}

// NewRequest creates a generation request with the default token cap.
func NewRequest(system, prompt string) Request {
	return Request{
		System:    system,
		Prompt:    prompt,
		MaxTokens: DefaultMaxTokens,
	}
}

// Temp is a convenience for building per-step temperature overrides.
func Temp(v float64) *float64 {
	return &v
}
