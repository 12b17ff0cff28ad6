// Package metrics exports Prometheus counters and histograms for use
// cases, free-text parser calls and HTTP requests.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/alexanderramin/buildseq/internal/llm"
	"github.com/alexanderramin/buildseq/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector buildseq registers.
type Metrics struct {
	// Use case metrics
	UseCaseCalls    *prometheus.CounterVec
	UseCaseErrors   *prometheus.CounterVec
	UseCaseDuration *prometheus.HistogramVec

	// Sequencing output
	SequencedTasks *prometheus.HistogramVec
	ScheduleDays   *prometheus.HistogramVec

	// LLM parser calls
	LLMCalls    *prometheus.CounterVec
	LLMAttempts *prometheus.HistogramVec
	LLMLatency  *prometheus.HistogramVec

	// HTTP boundary
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		UseCaseCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildseq_use_case_calls_total",
				Help: "Use case executions by name and outcome",
			},
			[]string{"use_case", "success"},
		),
		UseCaseErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildseq_use_case_errors_total",
				Help: "Use case failures by error code",
			},
			[]string{"use_case", "code"},
		),
		UseCaseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buildseq_use_case_duration_seconds",
				Help:    "Use case latency",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"use_case"},
		),
		SequencedTasks: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buildseq_sequenced_tasks",
				Help:    "Tasks per successful sequencing run",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
			},
			[]string{"use_case"},
		),
		ScheduleDays: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buildseq_schedule_total_days",
				Help:    "Total schedule length in days per successful sequencing run",
				Buckets: []float64{1, 7, 14, 30, 60, 90, 180, 365},
			},
			[]string{"use_case"},
		),
		LLMCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildseq_llm_calls_total",
				Help: "LLM calls by task, model and result code",
			},
			[]string{"task", "model", "code"},
		),
		LLMAttempts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buildseq_llm_attempts",
				Help:    "Attempts per LLM call including retries",
				Buckets: []float64{1, 2, 3, 4, 5},
			},
			[]string{"task"},
		),
		LLMLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buildseq_llm_latency_seconds",
				Help:    "LLM call latency including retries",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 60},
			},
			[]string{"task"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildseq_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		),
	}
}

// NewRegistry creates a private registry with buildseq, Go runtime and
// process collectors registered.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, NewMetrics(reg)
}

// HandlerFor serves the exposition format for reg.
func HandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObserveUseCase implements service.UseCaseObserver.
func (m *Metrics) ObserveUseCase(_ context.Context, event service.UseCaseEvent) {
	m.UseCaseCalls.WithLabelValues(event.Name, strconv.FormatBool(event.Success)).Inc()
	m.UseCaseDuration.WithLabelValues(event.Name).Observe(event.Duration.Seconds())
	if !event.Success {
		m.UseCaseErrors.WithLabelValues(event.Name, event.Code).Inc()
		return
	}
	if n, ok := event.Fields["tasks"].(int); ok {
		m.SequencedTasks.WithLabelValues(event.Name).Observe(float64(n))
	}
	if days, ok := event.Fields["total_days"].(float64); ok {
		m.ScheduleDays.WithLabelValues(event.Name).Observe(days)
	}
}

// OnCallComplete implements llm.Observer.
func (m *Metrics) OnCallComplete(event llm.CallEvent) {
	code := "OK"
	if !event.Success {
		code = event.ErrorCode
	}
	task := string(event.Task)
	m.LLMCalls.WithLabelValues(task, event.Model, code).Inc()
	m.LLMAttempts.WithLabelValues(task).Observe(float64(event.Attempts))
	m.LLMLatency.WithLabelValues(task).Observe(float64(event.LatencyMs) / 1000)
}

// ObserveHTTP counts one finished request.
func (m *Metrics) ObserveHTTP(route string, status int) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

var (
	_ service.UseCaseObserver = (*Metrics)(nil)
	_ llm.Observer            = (*Metrics)(nil)
)
