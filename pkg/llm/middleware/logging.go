package middleware

import (
	"context"
	"time"

	"pmtoolkit/pkg/llm"
	"pmtoolkit/pkg/llm/llmerrors"
	"pmtoolkit/pkg/logx"
)

// Maximum prompt characters shown in debug logs before sanitization kicks in.
const logPromptMaxChars = 400

// Logging returns middleware that logs each generation call and its outcome.
func Logging(logger *logx.Logger) llm.Middleware {
	return func(next llm.Client) llm.Client {
		return llm.WrapClient(
			func(ctx context.Context, req llm.Request) (llm.Result, error) {
				start := time.Now()
				logger.Debug("generate model=%s prompt=%s",
					next.ModelName(), llmerrors.SanitizePrompt(req.Prompt, logPromptMaxChars))

				res, err := next.Generate(ctx, req)
				elapsed := time.Since(start)

				if err != nil {
					logger.Error("generate model=%s failed after %s: %v",
						next.ModelName(), elapsed.Round(time.Millisecond), err)
					return res, err
				}

				logger.Debug("generate model=%s ok in=%d out=%d elapsed=%s",
					next.ModelName(), res.InputTokens, res.OutputTokens,
					elapsed.Round(time.Millisecond))
				return res, nil
			},
			next.ModelName,
		)
	}
}
