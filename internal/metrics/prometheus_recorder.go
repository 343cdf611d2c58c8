package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder exposes build counters and durations to a Prometheus
// registerer.
type PrometheusRecorder struct {
	buildsStarted   prometheus.Counter
	buildsSucceeded prometheus.Counter
	buildsFailed    prometheus.Counter
	buildDuration   prometheus.Histogram
}

// NewPrometheusRecorder registers the build metrics with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		buildsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flora_builds_started_total",
			Help: "Number of site builds started.",
		}),
		buildsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flora_builds_succeeded_total",
			Help: "Number of site builds that completed successfully.",
		}),
		buildsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flora_builds_failed_total",
			Help: "Number of site builds that failed.",
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "flora_build_duration_seconds",
			Help:    "Duration of successful site builds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
	reg.MustRegister(r.buildsStarted, r.buildsSucceeded, r.buildsFailed, r.buildDuration)
	return r
}

func (r *PrometheusRecorder) BuildStarted() { r.buildsStarted.Inc() }

func (r *PrometheusRecorder) BuildSucceeded(d time.Duration) {
	r.buildsSucceeded.Inc()
	r.buildDuration.Observe(d.Seconds())
}

func (r *PrometheusRecorder) BuildFailed() { r.buildsFailed.Inc() }
