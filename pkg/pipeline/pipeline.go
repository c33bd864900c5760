// Package pipeline implements the iterative draft, critique, revise
// refinement loop shared by every document kind.
package pipeline

import (
	"context"
	"fmt"

	"pmtoolkit/pkg/audit"
	"pmtoolkit/pkg/llm"
)

// Temperatures are the optional sampling temperatures per step. Nil means
// provider default.
type Temperatures struct {
	Draft    *float64
	Critique *float64
	Revision *float64
}

// Config describes one refinement run. The prompt builders close over the
// caller's original input; BuildCritique must carry that input so critiques
// judge the draft against what the user actually asked for.
type Config struct {
	Kind   string
	Rounds int

	DraftSystem    string
	CritiqueSystem string
	RevisionSystem string

	BuildDraft    func() (string, error)
	BuildCritique func(draft string) (string, error)
	BuildRevision func(draft, critique string) (string, error)

	RevisionEngines []llm.Engine
	Temperatures    Temperatures
}

func (c *Config) validate() error {
	if c.Rounds < 1 {
		return fmt.Errorf("pipeline %s: rounds must be >= 1, got %d", c.Kind, c.Rounds)
	}
	if len(c.RevisionEngines) != c.Rounds {
		return fmt.Errorf("pipeline %s: %d revision engines for %d rounds", c.Kind, len(c.RevisionEngines), c.Rounds)
	}
	if c.BuildDraft == nil || c.BuildCritique == nil || c.BuildRevision == nil {
		return fmt.Errorf("pipeline %s: prompt builders must all be set", c.Kind)
	}
	return nil
}

// Round records one critique/revision cycle. Draft is the revised draft the
// round produced.
type Round struct {
	Index    int
	Critique llm.Result
	Draft    llm.Result
	Engine   llm.Engine
}

// Usage totals token consumption across the whole run, seed draft included.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

func (u *Usage) add(r llm.Result) {
	u.InputTokens += r.InputTokens
	u.OutputTokens += r.OutputTokens
}

// Outcome is the result of a completed run.
type Outcome struct {
	Final  string
	Rounds []Round
	Usage  Usage
}

// Run executes the refinement loop: seed draft on the quality engine, then
// per round a critique on the quality engine followed by a revision on the
// round's configured engine. Every draft and critique is appended to the
// trail as it is produced; a failed generation aborts the run but leaves
// already-appended entries in place.
func Run(ctx context.Context, cfg *Config, engines llm.Engines, trail *audit.Trail) (*Outcome, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var usage Usage

	prompt, err := cfg.BuildDraft()
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: build draft prompt: %w", cfg.Kind, err)
	}
	draft, err := engines.Quality.Generate(ctx, llm.Request{
		System:      cfg.DraftSystem,
		Prompt:      prompt,
		Temperature: cfg.Temperatures.Draft,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: draft generation failed: %w", cfg.Kind, err)
	}
	usage.add(draft)

	rounds := make([]Round, 0, cfg.Rounds)
	for i := 0; i < cfg.Rounds; i++ {
		trail.Append(audit.RoleAssistant, draft.Text)

		critiquePrompt, err := cfg.BuildCritique(draft.Text)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: build critique prompt round %d: %w", cfg.Kind, i, err)
		}
		critique, err := engines.Quality.Generate(ctx, llm.Request{
			System:      cfg.CritiqueSystem,
			Prompt:      critiquePrompt,
			Temperature: cfg.Temperatures.Critique,
		})
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: critique round %d failed: %w", cfg.Kind, i, err)
		}
		usage.add(critique)
		trail.Append(audit.RoleAssistant, critique.Text)

		revisionPrompt, err := cfg.BuildRevision(draft.Text, critique.Text)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: build revision prompt round %d: %w", cfg.Kind, i, err)
		}
		engine := cfg.RevisionEngines[i]
		revised, err := engines.Select(engine).Generate(ctx, llm.Request{
			System:      cfg.RevisionSystem,
			Prompt:      revisionPrompt,
			Temperature: cfg.Temperatures.Revision,
		})
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: revision round %d failed: %w", cfg.Kind, i, err)
		}
		usage.add(revised)

		rounds = append(rounds, Round{Index: i, Critique: critique, Draft: revised, Engine: engine})
		draft = revised
	}

	trail.Append(audit.RoleAssistant, draft.Text)

	return &Outcome{Final: draft.Text, Rounds: rounds, Usage: usage}, nil
}
