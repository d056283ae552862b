package feed

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRankPassesTotal      = "feed_rank_passes_total"
	MetricRankDuration         = "feed_rank_duration_seconds"
	MetricRankResultSize       = "feed_rank_result_size"
	MetricRankFallbacksTotal   = "feed_rank_fallbacks_total"
	MetricInstructionsCompiled = "feed_instructions_compiled_total"
)

// Status constants for pass completion.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics contains Prometheus metrics for ranking operations.
// All operations are thread-safe.
type Metrics struct {
	rankPasses   *prometheus.CounterVec
	rankDuration prometheus.Histogram
	resultSize   prometheus.Histogram
	fallbacks    prometheus.Counter
	instructions *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to
// register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		rankPasses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankPassesTotal,
				Help: "Total number of feed ranking passes by status",
			},
			[]string{"status"},
		),
		rankDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricRankDuration,
				Help:    "Histogram of feed ranking pass duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
		),
		resultSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricRankResultSize,
				Help:    "Histogram of ranked page sizes returned to viewers",
				Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
			},
		),
		fallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricRankFallbacksTotal,
				Help: "Total number of ranking passes that used the relaxed-mute fallback",
			},
		),
		instructions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricInstructionsCompiled,
				Help: "Total number of instruction compilations by status",
			},
			[]string{"status"},
		),
	}
}

// Register registers all collectors with the provided registry.
// Returns the first registration error encountered.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.rankPasses,
		m.rankDuration,
		m.resultSize,
		m.fallbacks,
		m.instructions,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRankPass records one completed ranking pass.
func (m *Metrics) ObserveRankPass(duration time.Duration, resultSize int, relaxed bool, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.rankPasses.WithLabelValues(status).Inc()
	m.rankDuration.Observe(duration.Seconds())
	if err == nil {
		m.resultSize.Observe(float64(resultSize))
	}
	if relaxed {
		m.fallbacks.Inc()
	}
}

// ObserveInstruction records one instruction compilation attempt.
func (m *Metrics) ObserveInstruction(err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	m.instructions.WithLabelValues(status).Inc()
}
