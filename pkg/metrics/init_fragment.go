package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initFragmentMetrics() {
	r.FragmentsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fragments_total",
			Help:      "Fragments produced (out) and accepted for reassembly (in)",
		},
		[]string{"direction"},
	)

	r.DuplicateFragments = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fragments_duplicate_total",
			Help:      "Fragments ignored because their index was already buffered",
		},
	)

	r.RejectedFragments = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "fragments_rejected_total",
			Help:      "Malformed fragments refused by the assembler",
		},
	)

	r.SessionsCompleted = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sessions_completed_total",
			Help:      "Sessions reassembled into a payload",
		},
	)

	r.SessionsExpired = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sessions_expired_total",
			Help:      "Incomplete sessions discarded after their TTL",
		},
	)

	r.SessionsPending = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "sessions_pending",
			Help:      "Reassembly buffers waiting for more fragments",
		},
	)

	r.ReassembledBytes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "reassembled_bytes",
			Help:      "Size of reassembled payloads",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 7),
		},
	)
}
