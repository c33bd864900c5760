package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmtoolkit/pkg/llm"
	"pmtoolkit/pkg/logx"
	"pmtoolkit/pkg/tokens"
)

func TestTimeoutSetsDeadline(t *testing.T) {
	var sawDeadline bool
	base := llm.WrapClient(
		func(ctx context.Context, _ llm.Request) (llm.Result, error) {
			_, sawDeadline = ctx.Deadline()
			return llm.Result{Text: "ok"}, nil
		},
		func() string { return "base" },
	)

	client := llm.Chain(base, Timeout(5*time.Second))
	_, err := client.Generate(context.Background(), llm.Request{Prompt: "p"})
	require.NoError(t, err)
	assert.True(t, sawDeadline)
}

func TestTimeoutExpires(t *testing.T) {
	base := llm.WrapClient(
		func(ctx context.Context, _ llm.Request) (llm.Result, error) {
			<-ctx.Done()
			return llm.Result{}, ctx.Err()
		},
		func() string { return "slow" },
	)

	client := llm.Chain(base, Timeout(10*time.Millisecond))
	_, err := client.Generate(context.Background(), llm.Request{Prompt: "p"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUsageBackfillsMissingCounters(t *testing.T) {
	base := llm.WrapClient(
		func(_ context.Context, _ llm.Request) (llm.Result, error) {
			return llm.Result{Text: "four words of text"}, nil
		},
		func() string { return "base" },
	)

	counter, err := tokens.NewCounter()
	require.NoError(t, err)

	client := llm.Chain(base, Usage(counter))
	res, err := client.Generate(context.Background(), llm.Request{System: "sys", Prompt: "hello there"})
	require.NoError(t, err)
	assert.Greater(t, res.InputTokens, 0)
	assert.Greater(t, res.OutputTokens, 0)
}

func TestUsageKeepsProviderCounters(t *testing.T) {
	base := llm.WrapClient(
		func(_ context.Context, _ llm.Request) (llm.Result, error) {
			return llm.Result{Text: "t", InputTokens: 123, OutputTokens: 456}, nil
		},
		func() string { return "base" },
	)

	client := llm.Chain(base, Usage(nil))
	res, err := client.Generate(context.Background(), llm.Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, 123, res.InputTokens)
	assert.Equal(t, 456, res.OutputTokens)
}

func TestMetricsRecordsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := NewRecorder(reg)

	base := llm.NewStubClient("stub-model", "reply")
	client := llm.Chain(base, Metrics(recorder))

	_, err := client.Generate(context.Background(), llm.Request{Prompt: "p"})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["generation_requests_total"])
	assert.True(t, names["generation_tokens_total"])
	assert.True(t, names["generation_request_duration_seconds"])
}

func TestChainOrderOutermostFirst(t *testing.T) {
	var order []string
	tag := func(name string) llm.Middleware {
		return func(next llm.Client) llm.Client {
			return llm.WrapClient(
				func(ctx context.Context, req llm.Request) (llm.Result, error) {
					order = append(order, name)
					return next.Generate(ctx, req)
				},
				next.ModelName,
			)
		}
	}

	base := llm.NewStubClient("stub", "ok")
	client := llm.Chain(base, tag("first"), tag("second"), Logging(logx.NewLogger("test")))
	_, err := client.Generate(context.Background(), llm.Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}
