package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsFetched counts events received from relays, by kind.
	EventsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raffle_events_fetched_total",
			Help: "Events received from relays",
		},
		[]string{"kind"},
	)

	// RecordsRejected counts events that failed record validation, by kind.
	RecordsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raffle_records_rejected_total",
			Help: "Events discarded by record validation",
		},
		[]string{"kind"},
	)

	// DrawsPerformed counts published draw results, by outcome
	// (published, superseded, failed).
	DrawsPerformed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raffle_draws_total",
			Help: "Draw attempts by outcome",
		},
		[]string{"outcome"},
	)

	// AggregateDuration tracks the latency of a full campaign aggregation pass.
	AggregateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "raffle_aggregate_duration_seconds",
			Help: "Duration of campaign stats aggregation in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.5,   // 500ms
				1.0,   // 1s
			},
		},
	)

	// PendingRecords tracks the size of the locally-held pending set.
	PendingRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "raffle_pending_records",
			Help: "Locally published records awaiting relay confirmation",
		},
	)
)
