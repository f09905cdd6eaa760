// Package monitoring exposes Prometheus metrics for PAC compilation,
// evaluation, and name resolution.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the evaluator. A nil *Metrics is
// a valid no-op receiver, so instrumentation stays optional.
type Metrics struct {
	CompilesTotal     *prometheus.CounterVec
	EvaluationsTotal  *prometheus.CounterVec
	EvaluationSeconds prometheus.Histogram
	ResolutionsTotal  *prometheus.CounterVec
}

// New creates a metrics collector registered on reg. A nil reg registers on
// a private throwaway registry, which keeps tests independent.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		CompilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pac_compiles_total",
				Help: "Total number of PAC script compilations",
			},
			[]string{"result"},
		),
		EvaluationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pac_evaluations_total",
				Help: "Total number of FindProxyForURL evaluations",
			},
			[]string{"result"},
		),
		EvaluationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pac_evaluation_duration_seconds",
				Help:    "FindProxyForURL evaluation duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pac_resolutions_total",
				Help: "Total number of name lookups issued by predicates",
			},
			[]string{"result"},
		),
	}
}

// RecordCompile records one compilation outcome.
func (m *Metrics) RecordCompile(err error) {
	if m == nil {
		return
	}
	m.CompilesTotal.WithLabelValues(resultLabel(err)).Inc()
}

// RecordEvaluation records one evaluation outcome and its duration.
func (m *Metrics) RecordEvaluation(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.WithLabelValues(resultLabel(err)).Inc()
	m.EvaluationSeconds.Observe(duration.Seconds())
}

// RecordResolution records one name-lookup outcome.
func (m *Metrics) RecordResolution(err error) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
