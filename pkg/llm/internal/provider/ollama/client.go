// Package ollama provides a local engine client backed by the Ollama runtime.
package ollama

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"pmtoolkit/pkg/llm"
	"pmtoolkit/pkg/llm/llmerrors"
)

// Client wraps the Ollama API client to implement llm.Client.
type Client struct {
	client *api.Client
	model  string
}

// New creates an Ollama engine client.
// hostURL should be the Ollama server URL (e.g., "http://localhost:11434").
func New(hostURL, model string) *Client {
	parsedURL, err := url.Parse(hostURL)
	if err != nil {
		parsedURL, _ = url.Parse("http://localhost:11434")
	}

	return &Client{
		client: api.NewClient(parsedURL, http.DefaultClient),
		model:  model,
	}
}

// Generate implements llm.Client.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	if req.Prompt == "" {
		return llm.Result{}, llmerrors.NewError(llmerrors.ErrorTypeBadPrompt, "prompt cannot be empty")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}

	messages := make([]api.Message, 0, 2)
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, api.Message{Role: "user", Content: req.Prompt})

	options := map[string]any{
		"num_predict": maxTokens,
	}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}

	var response api.ChatResponse
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})
	if err != nil {
		return llm.Result{}, llmerrors.Classify(err)
	}
	if response.Message.Content == "" {
		return llm.Result{}, llmerrors.NewError(llmerrors.ErrorTypeEmptyResponse, "no text content in Ollama response")
	}

	return llm.Result{
		Text:         response.Message.Content,
		InputTokens:  response.Metrics.PromptEvalCount,
		OutputTokens: response.Metrics.EvalCount,
	}, nil
}

// ModelName returns the model name for this client.
func (c *Client) ModelName() string {
	return c.model
}
