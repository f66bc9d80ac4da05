// Package metrics exports native resource lifecycle and evaluation metrics
// to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hvm-interop/hvm-go/domain/entities"
	"github.com/hvm-interop/hvm-go/domain/ports"
)

const namespace = "hvm"

// Observer implements ports.LifecycleObserver with Prometheus collectors.
type Observer struct {
	events      *prometheus.CounterVec
	live        *prometheus.GaugeVec
	evaluations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	iterations  *prometheus.CounterVec
}

var _ ports.LifecycleObserver = (*Observer)(nil)

// NewObserver creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewObserver(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)

	return &Observer{
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "native",
				Name:      "resource_events_total",
				Help:      "Native allocations handed to the host, released, and released by the finalizer.",
			},
			[]string{"kind", "event"},
		),
		live: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "native",
				Name:      "resources_live",
				Help:      "Native allocations currently owned by the host.",
			},
			[]string{"kind"},
		),
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Evaluations by runtime and outcome.",
			},
			[]string{"runtime", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Reduction time reported by the engine.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
			},
			[]string{"runtime"},
		),
		iterations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interactions_total",
				Help:      "Interactions performed by the engine.",
			},
			[]string{"runtime"},
		),
	}
}

// OnLifecycleEvent implements ports.LifecycleObserver.
func (o *Observer) OnLifecycleEvent(ev entities.LifecycleEvent) {
	o.events.WithLabelValues(string(ev.Kind), string(ev.Type)).Inc()

	switch ev.Type {
	case entities.EventAllocated:
		o.live.WithLabelValues(string(ev.Kind)).Inc()
	case entities.EventReleased:
		o.live.WithLabelValues(string(ev.Kind)).Dec()
	}
}

// ObserveEvaluation records the outcome of one evaluation. result is ignored
// when err is non-nil.
func (o *Observer) ObserveEvaluation(runtime entities.RuntimeType, result entities.EvaluationResult, err error) {
	rt := runtime.String()
	if err != nil {
		o.evaluations.WithLabelValues(rt, string(entities.ReportStatusError)).Inc()
		return
	}
	o.evaluations.WithLabelValues(rt, string(entities.ReportStatusSuccess)).Inc()
	o.duration.WithLabelValues(rt).Observe(result.Duration.Seconds())
	o.iterations.WithLabelValues(rt).Add(float64(result.Iterations))
}
