// Package toolkit exposes the PM document features: PRD creation and
// improvement, tracking plans, GTM plans, brainstorming, and history.
package toolkit

import (
	"context"
	"fmt"
	"strings"

	"pmtoolkit/pkg/audit"
	"pmtoolkit/pkg/llm"
	"pmtoolkit/pkg/logx"
	"pmtoolkit/pkg/pipeline"
	"pmtoolkit/pkg/prompts"
	"pmtoolkit/pkg/session"
	"pmtoolkit/pkg/store"
)

// Kind identifies a document pipeline.
type Kind string

// Supported document kinds.
const (
	KindPRDCreate    Kind = "prd_create"
	KindPRDImprove   Kind = "prd_improve"
	KindTrackingPlan Kind = "tracking_plan"
	KindGTMPlan      Kind = "gtm_plan"
)

// ValidationError reports rejected input before any engine call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Artifact is the result of one pipeline invocation.
type Artifact struct {
	Kind     Kind           `json:"kind"`
	Markdown string         `json:"markdown"`
	Filename string         `json:"filename"`
	Rounds   int            `json:"rounds"`
	Usage    pipeline.Usage `json:"usage"`
	RecordID string         `json:"record_id,omitempty"`
	Saved    bool           `json:"saved"`
}

// Toolkit wires the prompt catalog, engine pair, and store together.
type Toolkit struct {
	catalog *prompts.Catalog
	engines llm.Engines
	store   *store.Store
	logger  *logx.Logger
}

// New creates a toolkit.
func New(catalog *prompts.Catalog, engines llm.Engines, st *store.Store) *Toolkit {
	return &Toolkit{
		catalog: catalog,
		engines: engines,
		store:   st,
		logger:  logx.NewLogger("toolkit"),
	}
}

// PRDCreateInput is the input for a new PRD.
type PRDCreateInput struct {
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`
}

// Validate rejects empty fields.
func (in *PRDCreateInput) Validate() error {
	if strings.TrimSpace(in.ProductName) == "" {
		return &ValidationError{Field: "product_name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.ProductDescription) == "" {
		return &ValidationError{Field: "product_description", Reason: "must not be empty"}
	}
	return nil
}

// CreatePRD runs the full two-round PRD refinement.
func (t *Toolkit) CreatePRD(ctx context.Context, sess *session.Session, in *PRDCreateInput) (*Artifact, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	data := &prompts.Data{Subject: in.ProductName, Details: in.ProductDescription}
	out, p, err := t.run(ctx, sess, KindPRDCreate, data)
	if err != nil {
		return nil, err
	}
	return t.finish(sess, KindPRDCreate, p, out, &store.ArtifactRecord{
		Owner:         sess.Owner,
		Subject:       in.ProductName,
		SourceInput:   in.ProductDescription,
		Output:        out.Final,
		IsNewCreation: true,
	}, "Product_Requirements_Document.md"), nil
}

// PRDImproveInput is the input for improving an existing PRD.
type PRDImproveInput struct {
	Document string `json:"document"`
}

// Validate rejects an empty document.
func (in *PRDImproveInput) Validate() error {
	if strings.TrimSpace(in.Document) == "" {
		return &ValidationError{Field: "document", Reason: "must not be empty"}
	}
	return nil
}

// ImprovePRD runs the single-round editor refinement over a pasted PRD.
func (t *Toolkit) ImprovePRD(ctx context.Context, sess *session.Session, in *PRDImproveInput) (*Artifact, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	data := &prompts.Data{Document: in.Document}
	out, p, err := t.run(ctx, sess, KindPRDImprove, data)
	if err != nil {
		return nil, err
	}
	return t.finish(sess, KindPRDImprove, p, out, &store.ArtifactRecord{
		Owner:         sess.Owner,
		Subject:       "Improve PRD",
		SourceInput:   in.Document,
		Output:        out.Final,
		IsNewCreation: false,
	}, "Product_Requirements_Document.md"), nil
}

// TrackingPlanInput is the input for a tracking plan.
type TrackingPlanInput struct {
	FeatureName string `json:"feature_name"`
	Customer    string `json:"customer"`
	Details     string `json:"details"`
	Document    string `json:"document"`
}

// Validate rejects empty feature name or source document.
func (in *TrackingPlanInput) Validate() error {
	if strings.TrimSpace(in.FeatureName) == "" {
		return &ValidationError{Field: "feature_name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Document) == "" {
		return &ValidationError{Field: "document", Reason: "must not be empty"}
	}
	return nil
}

// TrackingPlan generates an event tracking plan from a PRD.
func (t *Toolkit) TrackingPlan(ctx context.Context, sess *session.Session, in *TrackingPlanInput) (*Artifact, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	data := &prompts.Data{
		Subject:  in.FeatureName,
		Customer: in.Customer,
		Details:  in.Details,
		Document: in.Document,
	}
	out, p, err := t.run(ctx, sess, KindTrackingPlan, data)
	if err != nil {
		return nil, err
	}
	return t.finish(sess, KindTrackingPlan, p, out, &store.ArtifactRecord{
		Owner:       sess.Owner,
		Subject:     in.FeatureName,
		SourceInput: in.Document,
		Output:      out.Final,
	}, "tracking_plan.md"), nil
}

// GTMPlanInput is the input for a go-to-market plan.
type GTMPlanInput struct {
	Document string `json:"document"`
	Details  string `json:"details"`
}

// Validate rejects an empty source document.
func (in *GTMPlanInput) Validate() error {
	if strings.TrimSpace(in.Document) == "" {
		return &ValidationError{Field: "document", Reason: "must not be empty"}
	}
	return nil
}

// GTMPlan generates a go-to-market plan from a PRD.
func (t *Toolkit) GTMPlan(ctx context.Context, sess *session.Session, in *GTMPlanInput) (*Artifact, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	data := &prompts.Data{Details: in.Details, Document: in.Document}
	out, p, err := t.run(ctx, sess, KindGTMPlan, data)
	if err != nil {
		return nil, err
	}
	return t.finish(sess, KindGTMPlan, p, out, &store.ArtifactRecord{
		Owner:       sess.Owner,
		Subject:     "GTM Plan",
		SourceInput: in.Document,
		Output:      out.Final,
	}, "gtm_plan.md"), nil
}

// run resolves the kind's manifest entry into a pipeline config and executes it.
func (t *Toolkit) run(ctx context.Context, sess *session.Session, kind Kind, data *prompts.Data) (*pipeline.Outcome, *prompts.Pipeline, error) {
	p, err := t.catalog.Pipeline(string(kind))
	if err != nil {
		return nil, nil, err
	}
	data.Label = p.Label

	draftSystem, err := t.catalog.Render(p.DraftSystem, data)
	if err != nil {
		return nil, nil, err
	}
	critiqueSystem, err := t.catalog.Render(p.CritiqueSystem, data)
	if err != nil {
		return nil, nil, err
	}
	revisionSystem, err := t.catalog.Render(p.RevisionSystem, data)
	if err != nil {
		return nil, nil, err
	}

	cfg := &pipeline.Config{
		Kind:            string(kind),
		Rounds:          p.Rounds,
		DraftSystem:     draftSystem,
		CritiqueSystem:  critiqueSystem,
		RevisionSystem:  revisionSystem,
		RevisionEngines: p.RevisionEngines,
		Temperatures: pipeline.Temperatures{
			Draft:    p.Temperatures.Draft,
			Critique: p.Temperatures.Critique,
			Revision: p.Temperatures.Revision,
		},
		BuildDraft: func() (string, error) {
			return t.catalog.Render(p.DraftTemplate, data)
		},
		BuildCritique: func(draft string) (string, error) {
			d := *data
			d.Draft = draft
			return t.catalog.Render(p.CritiqueTemplate, &d)
		},
		BuildRevision: func(draft, critique string) (string, error) {
			d := *data
			d.Draft = draft
			d.Critique = critique
			return t.catalog.Render(p.RevisionTemplate, &d)
		},
	}

	out, err := pipeline.Run(ctx, cfg, t.engines, sess.Trail)
	if err != nil {
		return nil, nil, err
	}
	return out, &p, nil
}

// finish persists the artifact record and assembles the response. A failed
// save is logged and reported via Saved=false; the artifact is still returned.
func (t *Toolkit) finish(sess *session.Session, kind Kind, p *prompts.Pipeline, out *pipeline.Outcome, rec *store.ArtifactRecord, filename string) *Artifact {
	artifact := &Artifact{
		Kind:     kind,
		Markdown: out.Final,
		Filename: filename,
		Rounds:   len(out.Rounds),
		Usage:    out.Usage,
	}
	id, err := t.store.SaveArtifact(rec)
	if err != nil {
		t.logger.Warn("failed to save %s artifact for %s: %v", kind, sess.Owner, err)
		return artifact
	}
	artifact.RecordID = id
	artifact.Saved = true
	return artifact
}

// brainstormContextWindow is how many recent chat messages accompany a turn.
const brainstormContextWindow = 6

// Brainstorm runs one chat turn against the quality engine with the last few
// session messages as context. Both sides of the exchange are persisted;
// storage failures are warnings only.
func (t *Toolkit) Brainstorm(ctx context.Context, sess *session.Session, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", &ValidationError{Field: "input", Reason: "must not be empty"}
	}

	sess.AppendChat("user", input)
	if _, err := t.store.SaveMessage(&store.MessageRecord{
		Owner: sess.Owner, Content: input, FromUser: true,
	}); err != nil {
		t.logger.Warn("failed to save brainstorm message for %s: %v", sess.Owner, err)
	}

	var b strings.Builder
	for _, msg := range sess.ChatContext(brainstormContextWindow) {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}

	data := &prompts.Data{Input: input, Context: b.String()}
	system, err := t.catalog.Render(prompts.BrainstormSystem, data)
	if err != nil {
		return "", err
	}
	prompt, err := t.catalog.Render(prompts.BrainstormTurn, data)
	if err != nil {
		return "", err
	}

	result, err := t.engines.Quality.Generate(ctx, llm.Request{System: system, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("brainstorm generation failed: %w", err)
	}

	sess.AppendChat("assistant", result.Text)
	if _, err := t.store.SaveMessage(&store.MessageRecord{
		Owner: sess.Owner, Content: result.Text, FromUser: false,
	}); err != nil {
		t.logger.Warn("failed to save brainstorm response for %s: %v", sess.Owner, err)
	}
	return result.Text, nil
}

// History is the session trail plus the owner's persisted artifacts.
type History struct {
	Trail     []audit.Entry          `json:"trail"`
	Artifacts []store.ArtifactRecord `json:"artifacts"`
}

// History returns the session's audit snapshot and the owner's saved
// artifacts, newest first.
func (t *Toolkit) History(sess *session.Session) (*History, error) {
	artifacts, err := t.store.ListArtifacts(sess.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return &History{
		Trail:     sess.Trail.Snapshot(),
		Artifacts: artifacts,
	}, nil
}
