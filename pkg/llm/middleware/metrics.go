package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pmtoolkit/pkg/llm"
	"pmtoolkit/pkg/llm/llmerrors"
)

// Recorder collects Prometheus metrics for generation calls.
type Recorder struct {
	requestsTotal   *prometheus.CounterVec
	tokensTotal     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRecorder creates a metrics recorder registered against reg.
// Pass nil to use the default Prometheus registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "generation_requests_total",
				Help: "Total number of generation requests by model, status, and error type",
			},
			[]string{"model", "status", "error_type"},
		),
		tokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "generation_tokens_total",
				Help: "Total number of tokens used in generation requests",
			},
			[]string{"model", "type"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "generation_request_duration_seconds",
				Help:    "Duration of generation requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
	}
}

// ObserveRequest records metrics for a completed generation call.
func (r *Recorder) ObserveRequest(model string, inputTokens, outputTokens int, err error, duration time.Duration) {
	status := "success"
	errorType := ""
	if err != nil {
		status = "error"
		errorType = llmerrors.TypeOf(err).String()
	}

	r.requestsTotal.WithLabelValues(model, status, errorType).Inc()
	if err == nil {
		r.tokensTotal.WithLabelValues(model, "prompt").Add(float64(inputTokens))
		r.tokensTotal.WithLabelValues(model, "completion").Add(float64(outputTokens))
	}
	r.requestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// Metrics returns middleware that records each generation call into recorder.
func Metrics(recorder *Recorder) llm.Middleware {
	return func(next llm.Client) llm.Client {
		return llm.WrapClient(
			func(ctx context.Context, req llm.Request) (llm.Result, error) {
				start := time.Now()
				res, err := next.Generate(ctx, req)
				recorder.ObserveRequest(next.ModelName(), res.InputTokens, res.OutputTokens, err, time.Since(start))
				return res, err
			},
			next.ModelName,
		)
	}
}
