package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Entry metrics
	EntriesCreated  *prometheus.CounterVec
	EntriesUpdated  *prometheus.CounterVec
	EntriesDeleted  *prometheus.CounterVec
	EntriesReviewed *prometheus.CounterVec

	// Transition metrics
	TransitionDuration prometheus.Histogram
	TransitionErrors   *prometheus.CounterVec

	// Balance metrics
	BalanceAmount prometheus.Gauge

	// Profit/loss metrics
	ProfitResolutions prometheus.Counter
	ProfitReversals   prometheus.Counter
	ProfitResolved    prometheus.Histogram
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		EntriesCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopbook_entries_created_total",
				Help: "Total number of entries created by kind",
			},
			[]string{"kind"},
		),
		EntriesUpdated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopbook_entries_updated_total",
				Help: "Total number of entries updated by kind",
			},
			[]string{"kind"},
		),
		EntriesDeleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopbook_entries_deleted_total",
				Help: "Total number of entries deleted by kind",
			},
			[]string{"kind"},
		),
		EntriesReviewed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopbook_entries_reviewed_total",
				Help: "Total number of review verdicts by status",
			},
			[]string{"status"},
		),

		TransitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "shopbook_transition_duration_seconds",
			Help:    "Duration of ledger transitions",
			Buckets: prometheus.DefBuckets,
		}),
		TransitionErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shopbook_transition_errors_total",
				Help: "Total number of failed transitions by operation",
			},
			[]string{"operation"},
		),

		BalanceAmount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "shopbook_balance_amount",
			Help: "Current running balance",
		}),

		ProfitResolutions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopbook_profit_resolutions_total",
			Help: "Total number of profit/loss resolutions",
		}),
		ProfitReversals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopbook_profit_reversals_total",
			Help: "Total number of profit/loss reversals",
		}),
		ProfitResolved: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "shopbook_profit_resolved_amount",
			Help:    "Resolved profit or loss amounts",
			Buckets: []float64{-10000, -1000, -100, 0, 100, 1000, 10000, 100000},
		}),
	}
}
