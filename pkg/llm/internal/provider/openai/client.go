// Package openai provides the OpenAI engine client using the official Go package.
package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"pmtoolkit/pkg/llm"
	"pmtoolkit/pkg/llm/llmerrors"
)

// Client wraps the official OpenAI Go client to implement llm.Client.
type Client struct {
	client openai.Client
	model  string
}

// New creates an OpenAI engine client (raw client, middleware applied at a higher level).
func New(apiKey, model string) *Client {
	return &Client{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Generate implements llm.Client using the Responses API.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	if req.Prompt == "" {
		return llm.Result{}, llmerrors.NewError(llmerrors.ErrorTypeBadPrompt, "prompt cannot be empty")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(int64(maxTokens)),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(req.Prompt)},
	}
	if req.System != "" {
		params.Instructions = openai.String(req.System)
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return llm.Result{}, llmerrors.Classify(err)
	}
	if resp == nil {
		return llm.Result{}, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse, "received nil response from OpenAI Responses API")
	}

	text := resp.OutputText()
	if text == "" {
		return llm.Result{}, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse, "no text content in OpenAI response")
	}

	return llm.Result{
		Text:         text,
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}, nil
}

// ModelName returns the model name for this client.
func (c *Client) ModelName() string {
	return c.model
}
