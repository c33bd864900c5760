// Package tokens provides tiktoken-based token counting for generation usage accounting.
package tokens

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// Counter counts tokens for prompt and completion text.
// Used when an engine response omits usage counters.
type Counter struct {
	codec tokenizer.Codec
}

// NewCounter creates a token counter. All supported engines are approximated
// with the GPT-4 encoding; exact counts come from provider usage fields when
// available, so this only needs to be close.
func NewCounter() (*Counter, error) {
	codec, err := tokenizer.ForModel(tokenizer.GPT4)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer codec: %w", err)
	}
	return &Counter{codec: codec}, nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if c == nil || c.codec == nil {
		return estimate(text)
	}
	n, err := c.codec.Count(text)
	if err != nil {
		return estimate(text)
	}
	return n
}

// estimate falls back to the usual 4-chars-per-token heuristic.
func estimate(text string) int {
	return len(text) / 4
}
