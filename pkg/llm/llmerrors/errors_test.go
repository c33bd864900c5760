package llmerrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	err := NewError(ErrorTypeAuth, "bad key")
	assert.Equal(t, "generation error (auth): bad key", err.Error())

	err = NewErrorWithStatus(ErrorTypeRateLimit, 429, "")
	assert.Equal(t, "generation error (rate_limit): status 429", err.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewErrorWithCause(ErrorTypeTransient, cause, "network error")
	assert.ErrorIs(t, err, cause)
}

func TestIsAndTypeOf(t *testing.T) {
	err := NewError(ErrorTypeBadPrompt, "empty prompt")
	wrapped := fmt.Errorf("draft step: %w", err)

	assert.True(t, Is(wrapped, ErrorTypeBadPrompt))
	assert.False(t, Is(wrapped, ErrorTypeAuth))
	assert.Equal(t, ErrorTypeBadPrompt, TypeOf(wrapped))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorType
	}{
		{"nil_context_deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"context_canceled", context.Canceled, ErrorTypeTransient},
		{"status_401", errors.New("request failed, status code: 401"), ErrorTypeAuth},
		{"status_429", errors.New("request failed, status code: 429"), ErrorTypeRateLimit},
		{"status_400", errors.New("request failed, status code: 400"), ErrorTypeBadPrompt},
		{"status_503", errors.New("request failed, status code: 503"), ErrorTypeTransient},
		{"connection_text", errors.New("connection reset by peer"), ErrorTypeTransient},
		{"quota_text", errors.New("quota exceeded for project"), ErrorTypeRateLimit},
		{"unauthorized_text", errors.New("unauthorized request"), ErrorTypeAuth},
		{"unknown", errors.New("something odd happened"), ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := Classify(tt.err)
			assert.Equal(t, tt.expected, classified.Type)
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestSanitizePromptShort(t *testing.T) {
	assert.Equal(t, "short prompt", SanitizePrompt("short prompt", 100))
}

func TestSanitizePromptLong(t *testing.T) {
	prompt := strings.Repeat("describe the product ", 100)
	sanitized := SanitizePrompt(prompt, 300)

	assert.Less(t, len(sanitized), len(prompt))
	assert.Contains(t, sanitized, "hash:")
	assert.Contains(t, sanitized, fmt.Sprintf("[%d chars", len(prompt)))
}
