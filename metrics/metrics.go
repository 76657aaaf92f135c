// Package metrics exposes Prometheus collectors for conversation turns,
// language model calls and produced PDF artifacts. A nil *Metrics is valid
// and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bureaubot"

type Metrics struct {
	turnsTotal       *prometheus.CounterVec
	turnDuration     *prometheus.HistogramVec
	delegateTotal    *prometheus.CounterVec
	delegateDuration *prometheus.HistogramVec
	artifactsTotal   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Total number of processed user turns by entry stage",
			},
			[]string{"stage", "status"}, // status: success, error
		),
		turnDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "turn_duration_seconds",
				Help:      "Duration of a user turn including collaborator calls",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		delegateTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delegate_requests_total",
				Help:      "Total number of language model calls",
			},
			[]string{"provider", "status"},
		),
		delegateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "delegate_request_duration_seconds",
				Help:      "Duration of language model calls in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),
		artifactsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifacts_total",
				Help:      "Total number of filled PDFs by rendering mode",
			},
			[]string{"mode"}, // mode: form, overlay, failed
		),
	}
	if reg != nil {
		reg.MustRegister(m.turnsTotal, m.turnDuration, m.delegateTotal, m.delegateDuration, m.artifactsTotal)
	}
	return m
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) ObserveTurn(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(stage, status(err)).Inc()
	m.turnDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) ObserveDelegate(provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.delegateTotal.WithLabelValues(provider, status(err)).Inc()
	m.delegateDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *Metrics) ObserveArtifact(mode string) {
	if m == nil {
		return
	}
	m.artifactsTotal.WithLabelValues(mode).Inc()
}
