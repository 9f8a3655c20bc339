package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/traqcheck/intake-client/internal/poller"
)

const namespace = "traqcheck"

var _ poller.Metrics = (*PollMetrics)(nil)

// PollMetrics records poll reads and loop endings.
type PollMetrics struct {
	reads        *prometheus.CounterVec
	readDuration *prometheus.HistogramVec
	loops        *prometheus.CounterVec
}

// NewPollMetrics creates the poll collectors and registers them with reg.
func NewPollMetrics(reg prometheus.Registerer) (*PollMetrics, error) {
	m := &PollMetrics{
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "reads_total",
			Help:      "Snapshot reads issued by poll loops, by outcome.",
		}, []string{"outcome"}),
		readDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "read_duration_seconds",
			Help:      "Latency of snapshot reads issued by poll loops.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		loops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "loops_total",
			Help:      "Finished poll loops, by how they ended.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.reads, m.readDuration, m.loops} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveRead implements poller.Metrics.
func (m *PollMetrics) ObserveRead(outcome string, elapsed time.Duration) {
	m.reads.WithLabelValues(outcome).Inc()
	m.readDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// LoopFinished implements poller.Metrics.
func (m *PollMetrics) LoopFinished(outcome string) {
	m.loops.WithLabelValues(outcome).Inc()
}
