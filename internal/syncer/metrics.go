package syncer

import "github.com/prometheus/client_golang/prometheus"

var (
	flushCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weeklit",
		Subsystem: "sync",
		Name:      "flushes_total",
		Help:      "Persist calls issued for pending minutes, labeled by result kind.",
	}, []string{"result"})

	retryCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "weeklit",
		Subsystem: "sync",
		Name:      "retries_total",
		Help:      "Retries scheduled after a transient persist failure.",
	})

	exhaustedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "weeklit",
		Subsystem: "sync",
		Name:      "retries_exhausted_total",
		Help:      "Pending updates that gave up after the retry bound.",
	})

	discardedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "weeklit",
		Subsystem: "sync",
		Name:      "discarded_responses_total",
		Help:      "Persist responses dropped because they were stale or targeted a deleted activity.",
	})

	pendingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "weeklit",
		Subsystem: "sync",
		Name:      "pending_updates",
		Help:      "Activities with unsaved minutes.",
	})

	flushDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "weeklit",
		Subsystem: "sync",
		Name:      "flush_duration_seconds",
		Help:      "Latency of persist calls.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(flushCounter, retryCounter, exhaustedCounter, discardedCounter, pendingGauge, flushDuration)
}
