// Package prompts provides the embedded prompt catalog: system and user
// prompt templates plus the per-kind pipeline manifest.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v3"

	"pmtoolkit/pkg/llm"
)

//go:embed *.tpl.md catalog.yaml
var promptFS embed.FS

// Name identifies an embedded prompt template.
type Name string

// System prompt templates.
const (
	PRDAuthorSystem        Name = "prd_author_system.tpl.md"
	PRDEditorSystem        Name = "prd_editor_system.tpl.md"
	DirectorSystem         Name = "director_system.tpl.md"
	TrackingSystem         Name = "tracking_system.tpl.md"
	TrackingDirectorSystem Name = "tracking_director_system.tpl.md"
	GTMSystem              Name = "gtm_system.tpl.md"
	GTMDirectorSystem      Name = "gtm_director_system.tpl.md"
	BrainstormSystem       Name = "brainstorm_system.tpl.md"
)

// User prompt templates.
const (
	PRDDraft           Name = "prd_draft.tpl.md"
	PRDCritique        Name = "prd_critique.tpl.md"
	PRDImproveDraft    Name = "prd_improve_draft.tpl.md"
	PRDImproveCritique Name = "prd_improve_critique.tpl.md"
	TrackingDraft      Name = "tracking_draft.tpl.md"
	TrackingCritique   Name = "tracking_critique.tpl.md"
	GTMDraft           Name = "gtm_draft.tpl.md"
	GTMCritique        Name = "gtm_critique.tpl.md"
	Revision           Name = "revision.tpl.md"
	BrainstormTurn     Name = "brainstorm_turn.tpl.md"
)

// Data holds the values a prompt template may reference. Unused fields are
// simply ignored by templates that do not mention them.
type Data struct {
	Subject  string // product or feature name
	Customer string // customer segment (tracking plans)
	Details  string // product description or additional details
	Document string // source document: pasted PRD
	Draft    string // current working draft
	Critique string // latest critique
	Label    string // artifact label used in revision prompts
	Input    string // brainstorm user input
	Context  string // brainstorm conversation context
}

// Temperatures are the optional per-step sampling temperatures for a kind.
// Nil means use the provider default.
type Temperatures struct {
	Draft    *float64 `yaml:"draft"`
	Critique *float64 `yaml:"critique"`
	Revision *float64 `yaml:"revision"`
}

// Pipeline is one manifest entry: the refinement parameters for a document kind.
type Pipeline struct {
	Rounds           int          `yaml:"rounds"`
	RevisionEngines  []llm.Engine `yaml:"revision_engines"`
	Label            string       `yaml:"label"`
	DraftSystem      Name         `yaml:"draft_system"`
	CritiqueSystem   Name         `yaml:"critique_system"`
	RevisionSystem   Name         `yaml:"revision_system"` // defaults to DraftSystem
	DraftTemplate    Name         `yaml:"draft_template"`
	CritiqueTemplate Name         `yaml:"critique_template"`
	RevisionTemplate Name         `yaml:"revision_template"`
	Temperatures     Temperatures `yaml:"temperatures"`
}

type manifest struct {
	Pipelines map[string]Pipeline `yaml:"pipelines"`
}

// Catalog holds the parsed templates and the pipeline manifest.
type Catalog struct {
	templates map[Name]*template.Template
	pipelines map[string]Pipeline
}

var templateNames = []Name{
	PRDAuthorSystem,
	PRDEditorSystem,
	DirectorSystem,
	TrackingSystem,
	TrackingDirectorSystem,
	GTMSystem,
	GTMDirectorSystem,
	BrainstormSystem,
	PRDDraft,
	PRDCritique,
	PRDImproveDraft,
	PRDImproveCritique,
	TrackingDraft,
	TrackingCritique,
	GTMDraft,
	GTMCritique,
	Revision,
	BrainstormTurn,
}

// Load parses the embedded templates and manifest.
func Load() (*Catalog, error) {
	c := &Catalog{
		templates: make(map[Name]*template.Template, len(templateNames)),
	}

	for _, name := range templateNames {
		content, err := promptFS.ReadFile(string(name))
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		tmpl, err := template.New(string(name)).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		c.templates[name] = tmpl
	}

	raw, err := promptFS.ReadFile("catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	c.pipelines = m.Pipelines

	for kind, p := range c.pipelines {
		if err := c.validatePipeline(kind, &p); err != nil {
			return nil, err
		}
		if p.RevisionSystem == "" {
			p.RevisionSystem = p.DraftSystem
			c.pipelines[kind] = p
		}
	}
	return c, nil
}

func (c *Catalog) validatePipeline(kind string, p *Pipeline) error {
	if p.Rounds < 1 {
		return fmt.Errorf("pipeline %s: rounds must be >= 1, got %d", kind, p.Rounds)
	}
	if len(p.RevisionEngines) != p.Rounds {
		return fmt.Errorf("pipeline %s: %d revision engines for %d rounds", kind, len(p.RevisionEngines), p.Rounds)
	}
	for _, e := range p.RevisionEngines {
		if e != llm.EngineFast && e != llm.EngineQuality {
			return fmt.Errorf("pipeline %s: unknown engine %q", kind, e)
		}
	}
	for _, name := range []Name{p.DraftSystem, p.CritiqueSystem, p.DraftTemplate, p.CritiqueTemplate, p.RevisionTemplate} {
		if _, ok := c.templates[name]; !ok {
			return fmt.Errorf("pipeline %s: references unknown template %q", kind, name)
		}
	}
	if p.RevisionSystem != "" {
		if _, ok := c.templates[p.RevisionSystem]; !ok {
			return fmt.Errorf("pipeline %s: references unknown template %q", kind, p.RevisionSystem)
		}
	}
	return nil
}

// Pipeline returns the manifest entry for a document kind.
func (c *Catalog) Pipeline(kind string) (Pipeline, error) {
	p, ok := c.pipelines[kind]
	if !ok {
		return Pipeline{}, fmt.Errorf("unknown pipeline kind %q", kind)
	}
	return p, nil
}

// Render renders the named template with data.
func (c *Catalog) Render(name Name, data *Data) (string, error) {
	tmpl, ok := c.templates[name]
	if !ok {
		return "", fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}
