package middleware

import (
	"context"

	"pmtoolkit/pkg/llm"
	"pmtoolkit/pkg/tokens"
)

// Usage returns middleware that backfills token counters on results from
// providers that omit usage metadata. Counts from the provider always win;
// the tiktoken approximation is only used when a counter is zero.
func Usage(counter *tokens.Counter) llm.Middleware {
	return func(next llm.Client) llm.Client {
		return llm.WrapClient(
			func(ctx context.Context, req llm.Request) (llm.Result, error) {
				res, err := next.Generate(ctx, req)
				if err != nil {
					return res, err
				}

				if res.InputTokens == 0 {
					res.InputTokens = counter.Count(req.System) + counter.Count(req.Prompt)
				}
				if res.OutputTokens == 0 && res.Text != "" {
					res.OutputTokens = counter.Count(res.Text)
				}
				return res, nil
			},
			next.ModelName,
		)
	}
}
