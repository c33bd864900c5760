// Package gemini provides the Google Gemini engine client.
package gemini

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"pmtoolkit/pkg/llm"
	"pmtoolkit/pkg/llm/llmerrors"
)

// Client wraps the Google GenAI client to implement llm.Client.
type Client struct {
	mu     sync.Mutex
	client *genai.Client
	apiKey string
	model  string
}

// New creates a Gemini engine client. The underlying genai client requires a
// context, so creation is deferred to the first Generate call.
func New(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
	}
}

func (c *Client) ensureClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, llmerrors.NewErrorWithCause(llmerrors.ErrorTypeAuth, err, fmt.Sprintf("failed to create Gemini client: %v", err))
	}
	c.client = client
	return client, nil
}

// Generate implements llm.Client.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	if req.Prompt == "" {
		return llm.Result{}, llmerrors.NewError(llmerrors.ErrorTypeBadPrompt, "prompt cannot be empty")
	}

	client, err := c.ensureClient(ctx)
	if err != nil {
		return llm.Result{}, err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}

	//nolint:gosec // MaxTokens validated at higher layer, overflow acceptable
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if req.Temperature != nil {
		temperature := float32(*req.Temperature)
		config.Temperature = &temperature
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: req.Prompt}}},
	}

	result, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return llm.Result{}, llmerrors.Classify(err)
	}
	if result == nil || result.Text() == "" {
		return llm.Result{}, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse, "no text content in Gemini response")
	}

	out := llm.Result{Text: result.Text()}
	if result.UsageMetadata != nil {
		out.InputTokens = int(result.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

// ModelName returns the model name for this client.
func (c *Client) ModelName() string {
	return c.model
}
