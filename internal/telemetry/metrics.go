package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/shaiso/invoker/internal/domain"
)

const namespace = "invoker"

// DefaultPushJob — имя job в Pushgateway по умолчанию.
const DefaultPushJob = "invoker"

// Metrics — Prometheus метрики выполнения команд.
//
// Реализует orchestrator.Observer. Регистр собственный, не глобальный.
type Metrics struct {
	registry *prometheus.Registry

	commandsTotal   *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	skippedTotal    prometheus.Counter
}

// NewMetrics создаёт и регистрирует метрики.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Executed commands by capability and status.",
		}, []string{"capability", "status", "stage"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command execution time by capability.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"capability"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs by status.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Run execution time.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		skippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_skipped_total",
			Help:      "Commands not started because an earlier command failed.",
		}),
	}

	m.registry.MustRegister(
		m.commandsTotal,
		m.commandDuration,
		m.runsTotal,
		m.runDuration,
		m.skippedTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry возвращает регистр метрик.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler возвращает HTTP handler для /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RunStarted ничего не считает: run учитывается по завершении.
func (m *Metrics) RunStarted(context.Context, *domain.Run) error {
	return nil
}

// CommandFinished учитывает выполненную команду.
func (m *Metrics) CommandFinished(_ context.Context, _ *domain.Run, exec *domain.Execution) error {
	capability := exec.Capability()
	m.commandsTotal.WithLabelValues(capability, string(exec.Status), exec.Stage).Inc()
	m.commandDuration.WithLabelValues(capability).Observe(exec.Duration().Seconds())
	return nil
}

// RunFinished учитывает завершённый run.
func (m *Metrics) RunFinished(_ context.Context, run *domain.Run) error {
	m.runsTotal.WithLabelValues(string(run.Status)).Inc()
	m.runDuration.Observe(run.Duration().Seconds())
	if skipped := run.Skipped(); skipped > 0 {
		m.skippedTotal.Add(float64(skipped))
	}
	return nil
}

// Push отправляет текущие значения метрик в Pushgateway.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if job == "" {
		job = DefaultPushJob
	}
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
