// Package metrics provides Prometheus instrumentation for llmkit clients.
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	c := chat.New(
//		chat.WithInterceptor(m.Interceptor()),
//		chat.WithMiddleware(m.Middleware()),
//	)
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lgc202/llmkit/httpx"
	"github.com/lgc202/llmkit/llm"
)

const namespace = "llmkit"

// Collector holds the metric vectors of one or more clients.
type Collector struct {
	// RoundTripLatency tracks the time until response headers arrive.
	RoundTripLatency *prometheus.HistogramVec

	// InFlight tracks round trips waiting for response headers.
	InFlight prometheus.Gauge

	// CompletionsTotal counts completed calls by mode ("blocking" or "stream").
	CompletionsTotal *prometheus.CounterVec

	// TokenUsageTotal counts tokens reported by blocking calls.
	TokenUsageTotal *prometheus.CounterVec
}

// New registers the collector's metrics with reg. A nil reg leaves them
// unregistered.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		RoundTripLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_round_trip_seconds",
				Help:      "Time until vendor response headers arrive, in seconds.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"host", "status"},
		),
		InFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_in_flight_requests",
				Help:      "Number of vendor requests waiting for response headers.",
			},
		),
		CompletionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completions_total",
				Help:      "Total number of completed chat calls.",
			},
			[]string{"provider", "model", "mode"},
		),
		TokenUsageTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_usage_total",
				Help:      "Total number of tokens reported by vendors.",
			},
			[]string{"provider", "model", "direction"}, // direction: "input" or "output"
		),
	}
}

// Interceptor records completed calls and their token usage.
func (c *Collector) Interceptor() llm.Interceptor {
	return func(_ context.Context, req *llm.ChatRequest, res *llm.ChatResult) error {
		provider, model := string(req.Model.Provider), req.Model.Name
		if res == nil {
			c.CompletionsTotal.WithLabelValues(provider, model, "stream").Inc()
			return nil
		}

		c.CompletionsTotal.WithLabelValues(provider, model, "blocking").Inc()
		if u := res.Usage; u != nil {
			c.TokenUsageTotal.WithLabelValues(provider, model, "input").Add(float64(u.PromptTokens))
			c.TokenUsageTotal.WithLabelValues(provider, model, "output").Add(float64(u.CompletionTokens))
		}
		return nil
	}
}

// Middleware observes every vendor round trip.
func (c *Collector) Middleware() httpx.Middleware {
	before := func(*http.Request) error {
		c.InFlight.Inc()
		return nil
	}
	after := func(req *http.Request, resp *http.Response, err error, dur time.Duration) {
		c.InFlight.Dec()
		status := "error"
		if err == nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		c.RoundTripLatency.WithLabelValues(req.URL.Host, status).Observe(dur.Seconds())
	}
	return httpx.Hooks([]httpx.BeforeHook{before}, []httpx.AfterHook{after})
}
