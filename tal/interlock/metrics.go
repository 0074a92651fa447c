package interlock

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	traversalHops = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shingo_traversal_hops",
		Help:    "Sections visited per walk over the section graph.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
	reservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shingo_reservations_total",
		Help: "Route reservation requests by result.",
	}, []string{"result"})
	deadlockTrapsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shingo_deadlock_traps_active",
		Help: "Sections with a deadlock trap held by some train.",
	})
	buildSignalsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shingo_build_signals_dropped_total",
		Help: "Signals and placements dropped while building, by reason.",
	}, []string{"reason"})
)
