package optimizer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records line-search outcomes as Prometheus collectors.
// A nil *Metrics records nothing.
type Metrics struct {
	rounds      *prometheus.CounterVec
	statuses    *prometheus.CounterVec
	iterations  prometheus.Histogram
	evaluations prometheus.Histogram
	duration    prometheus.Histogram
	ensemble    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		rounds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lutboost_line_search_rounds_total",
			Help: "Line searches by result (accepted or rejected)",
		}, []string{"result"}),
		statuses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lutboost_solver_status_total",
			Help: "Solver terminations by status",
		}, []string{"status"}),
		iterations: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lutboost_solver_iterations",
			Help:    "Solver major iterations per line search",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 20, 50},
		}),
		evaluations: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lutboost_solver_evaluations",
			Help:    "Objective evaluations per line search",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lutboost_line_search_duration_seconds",
			Help:    "Line search duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
		}),
		ensemble: f.NewGauge(prometheus.GaugeOpts{
			Name: "lutboost_ensemble_rounds",
			Help: "Number of accepted rounds in the ensemble",
		}),
	}
}

func (m *Metrics) observe(sol Solution, accepted bool, elapsed time.Duration, rounds int) {
	if m == nil {
		return
	}
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	m.rounds.WithLabelValues(result).Inc()
	m.statuses.WithLabelValues(sol.Status.String()).Inc()
	m.iterations.Observe(float64(sol.Iterations))
	m.evaluations.Observe(float64(sol.Evaluations))
	m.duration.Observe(elapsed.Seconds())
	m.ensemble.Set(float64(rounds))
}
