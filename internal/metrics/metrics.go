// Package metrics registers the Prometheus collectors for the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "manga_engine"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	// Game metrics
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "actions_total",
			Help:      "Player actions by kind and result",
		},
		[]string{"action", "result"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "sessions_active",
			Help:      "Sessions created minus sessions deleted by this process",
		},
	)

	EndingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "endings_total",
			Help:      "Games finished by ending id",
		},
		[]string{"ending"},
	)

	ChapterScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "chapter_score",
			Help:      "Score of published chapters",
			Buckets:   []float64{5, 10, 20, 40, 80, 160, 320},
		},
	)
)

// Action results.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// RecordAction counts one player action.
func RecordAction(action, result string) {
	ActionsTotal.WithLabelValues(action, result).Inc()
}
