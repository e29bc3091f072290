package metrics

import (
	"context"
	"strconv"

	"github.com/alexanderramin/unload/internal/llm"
	"github.com/alexanderramin/unload/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "unload"

// Metrics holds the application's own Prometheus collectors. HTTP request
// metrics come from the fiber middleware on the same registry.
type Metrics struct {
	UseCases        *prometheus.CounterVec
	UseCaseDuration *prometheus.HistogramVec
	LLMCalls        *prometheus.CounterVec
	LLMLatency      *prometheus.HistogramVec
	LLMTokens       *prometheus.CounterVec
	ItemsExtracted  prometheus.Counter
	ClarityJobRuns  *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UseCases: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "use_cases_total",
			Help:      "Service use cases by name and outcome.",
		}, []string{"use_case", "success"}),
		UseCaseDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "use_case_duration_seconds",
			Help:      "Service use case latency.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"use_case"}),
		LLMCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "Completion calls by task and error code.",
		}, []string{"task", "code"}),
		LLMLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_call_duration_seconds",
			Help:      "Completion call latency.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"task"}),
		LLMTokens: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens consumed by direction.",
		}, []string{"task", "direction"}),
		ItemsExtracted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_extracted_total",
			Help:      "Items inserted from thought dumps.",
		}),
		ClarityJobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clarity_job_users_total",
			Help:      "Users processed by the daily clarity job by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveUseCase implements service.UseCaseObserver.
func (m *Metrics) ObserveUseCase(_ context.Context, e service.UseCaseEvent) {
	m.UseCases.WithLabelValues(e.Name, strconv.FormatBool(e.Success)).Inc()
	m.UseCaseDuration.WithLabelValues(e.Name).Observe(e.Duration.Seconds())
	if e.Name == "capture.process" && e.Success {
		if n, ok := e.Fields["extracted_count"].(int); ok {
			m.ItemsExtracted.Add(float64(n))
		}
	}
}

// OnCallComplete implements llm.Observer.
func (m *Metrics) OnCallComplete(e llm.LLMCallEvent) {
	code := "ok"
	if !e.Success {
		code = e.ErrorCode
	}
	task := string(e.Task)
	m.LLMCalls.WithLabelValues(task, code).Inc()
	m.LLMLatency.WithLabelValues(task).Observe(float64(e.LatencyMs) / 1000)
	m.LLMTokens.WithLabelValues(task, "input").Add(float64(e.InputTokens))
	m.LLMTokens.WithLabelValues(task, "output").Add(float64(e.OutputTokens))
}

// JobOutcome counts one user handled by the daily clarity job.
func (m *Metrics) JobOutcome(outcome string) {
	m.ClarityJobRuns.WithLabelValues(outcome).Inc()
}
