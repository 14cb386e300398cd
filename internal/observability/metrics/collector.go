// Package metrics exposes the gateway's prometheus instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the metric families for HTTP traffic, provider calls,
// and debate runs.
type Collector struct {
	RequestDuration *prometheus.HistogramVec
	RequestCount    *prometheus.CounterVec

	ProviderLatency *prometheus.HistogramVec
	ProviderErrors  *prometheus.CounterVec
	ProviderTokens  *prometheus.CounterVec

	DebateDuration    *prometheus.HistogramVec
	DebateRounds      prometheus.Histogram
	DebateTermination *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewCollector builds and registers the metric families on a private
// registry so tests can create collectors freely.
func NewCollector() *Collector {
	c := &Collector{
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_provider_latency_seconds",
				Help:    "LLM provider call latency in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider", "model"},
		),
		ProviderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_provider_errors_total",
				Help: "Total LLM provider errors by kind",
			},
			[]string{"provider", "kind"},
		),
		ProviderTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_provider_tokens_total",
				Help: "Total tokens reported by providers",
			},
			[]string{"provider", "model", "direction"},
		),

		DebateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "debate_duration_seconds",
				Help:    "Whole debate run duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 900},
			},
			[]string{"termination_reason"},
		),
		DebateRounds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "debate_rounds",
				Help:    "Rounds completed per debate run",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			},
		),
		DebateTermination: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "debate_terminations_total",
				Help: "Debate runs by termination reason",
			},
			[]string{"termination_reason"},
		),

		registry: prometheus.NewRegistry(),
	}

	c.registry.MustRegister(
		c.RequestDuration,
		c.RequestCount,
		c.ProviderLatency,
		c.ProviderErrors,
		c.ProviderTokens,
		c.DebateDuration,
		c.DebateRounds,
		c.DebateTermination,
	)

	return c
}

// ObserveRequest records one handled HTTP request.
func (c *Collector) ObserveRequest(method, endpoint, status string, duration time.Duration) {
	c.RequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
	c.RequestCount.WithLabelValues(method, endpoint, status).Inc()
}

// ObserveProviderCall records latency and token usage for one provider call.
func (c *Collector) ObserveProviderCall(provider, model string, duration time.Duration, promptTokens, completionTokens int) {
	c.ProviderLatency.WithLabelValues(provider, model).Observe(duration.Seconds())
	if promptTokens > 0 {
		c.ProviderTokens.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		c.ProviderTokens.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
	}
}

// ObserveProviderError counts one provider failure.
func (c *Collector) ObserveProviderError(provider, kind string) {
	c.ProviderErrors.WithLabelValues(provider, kind).Inc()
}

// ObserveDebate records one finished debate run.
func (c *Collector) ObserveDebate(reason string, rounds int, duration time.Duration) {
	c.DebateDuration.WithLabelValues(reason).Observe(duration.Seconds())
	c.DebateRounds.Observe(float64(rounds))
	c.DebateTermination.WithLabelValues(reason).Inc()
}

// Handler serves the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
