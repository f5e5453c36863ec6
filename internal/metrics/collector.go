// Package metrics exposes run-level Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

// Collector records orchestrator runs.
type Collector struct {
	registry    *prometheus.Registry
	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	scores      *prometheus.HistogramVec
}

var _ ports.RunObserver = (*Collector)(nil)

// NewCollector registers the metrics on a private registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runraiser_runs_total",
				Help: "Total number of orchestrator runs by outcome",
			},
			[]string{"outcome"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runraiser_run_duration_seconds",
				Help:    "Orchestrator run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		scores: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runraiser_selected_score",
				Help:    "Judge score of the selected candidate",
				Buckets: prometheus.LinearBuckets(50, 5, 11),
			},
			[]string{"platform"},
		),
	}
	c.registry.MustRegister(c.runsTotal, c.runDuration, c.scores)
	return c
}

// ObserveRun counts a finished run.
func (c *Collector) ObserveRun(outcome string, elapsed time.Duration) {
	c.runsTotal.WithLabelValues(outcome).Inc()
	c.runDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveScore records the winning candidate's score.
func (c *Collector) ObserveScore(platform domain.Platform, score int) {
	c.scores.WithLabelValues(string(platform)).Observe(float64(score))
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
