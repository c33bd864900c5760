// Package middleware provides cross-cutting wrappers for engine clients:
// bounded per-request timeouts, request logging, Prometheus metrics, and
// token-usage backfill. There is intentionally no retry or rate-limit
// middleware; a failed generation call is surfaced to the caller as-is.
package middleware

import (
	"context"
	"time"

	"pmtoolkit/pkg/llm"
)

// Timeout returns middleware that bounds each generation call.
// Prevents a hung provider request from stalling a pipeline run forever.
func Timeout(duration time.Duration) llm.Middleware {
	return func(next llm.Client) llm.Client {
		return llm.WrapClient(
			func(ctx context.Context, req llm.Request) (llm.Result, error) {
				timeoutCtx, cancel := context.WithTimeout(ctx, duration)
				defer cancel()
				return next.Generate(timeoutCtx, req)
			},
			next.ModelName,
		)
	}
}
