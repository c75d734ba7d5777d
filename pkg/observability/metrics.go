package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/teller/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "teller"

// Metrics holds the engine collectors.
type Metrics struct {
	turns         *prometheus.CounterVec
	turnDuration  prometheus.Histogram
	flowEnds      *prometheus.CounterVec
	operations    *prometheus.CounterVec
	operationTime *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Processed messages by classified intent.",
			},
			[]string{"intent"},
		),
		turnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "turn_duration_seconds",
				Help:      "Time spent processing one message.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		flowEnds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "flow_ends_total",
				Help:      "Ended transactional flows by intent and outcome.",
			},
			[]string{"intent", "outcome"},
		),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bank_operations_total",
				Help:      "Calls to the banking backend by operation and status.",
			},
			[]string{"operation", "status"},
		),
		operationTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bank_operation_duration_seconds",
				Help:      "Duration of calls to the banking backend.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		gatherer: reg,
	}

	for _, c := range []prometheus.Collector{m.turns, m.turnDuration, m.flowEnds, m.operations, m.operationTime} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks records events into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			m.turns.WithLabelValues(string(e.Intent)).Inc()
			m.turnDuration.Observe(e.Duration.Seconds())
		},
		OnFlowEnd: func(_ context.Context, e *domain.FlowEvent) {
			m.flowEnds.WithLabelValues(string(e.Intent), string(e.Outcome)).Inc()
		},
		OnOperation: func(_ context.Context, e *domain.OperationEvent) {
			status := "ok"
			if e.Err != nil {
				status = "error"
			}
			m.operations.WithLabelValues(e.Operation, status).Inc()
			m.operationTime.WithLabelValues(e.Operation).Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
