// Package metrics exposes Prometheus collectors for economy operations and
// aggregate wealth gauges.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_operations_total",
			Help: "Total number of economy operations labeled by operation and status",
		},
		[]string{"operation", "status"},
	)
	operationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "economy_operation_duration_seconds",
			Help:    "Duration of economy operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	gambleOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "economy_gamble_outcomes_total",
			Help: "Gambling outcomes split by game and result",
		},
		[]string{"game", "outcome"},
	)
	lotteryPrizesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "economy_lottery_prizes_total",
			Help: "Total amount of lottery prize money paid out",
		},
	)
	usersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "economy_users_total",
			Help: "Number of known user ledgers",
		},
	)
	totalWallet = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "economy_wallet_total",
			Help: "Sum of all wallet balances",
		},
	)
	totalBank = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "economy_bank_total",
			Help: "Sum of all bank balances",
		},
	)
	totalLoan = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "economy_loan_total",
			Help: "Sum of all outstanding loans",
		},
	)
)

// RecordOperation increments the operation counter and records its duration.
func RecordOperation(operation, status string, duration time.Duration) {
	if operation == "" {
		operation = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	operationsTotal.WithLabelValues(operation, status).Inc()
	operationDurationSeconds.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordGamble tracks a gambling outcome ("win" or "loss") for a game.
func RecordGamble(game, outcome string) {
	if game == "" {
		game = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}

	gambleOutcomesTotal.WithLabelValues(game, outcome).Inc()
}

// RecordLotteryPrize adds a paid-out prize to the running total.
func RecordLotteryPrize(prize int64) {
	if prize <= 0 {
		return
	}

	lotteryPrizesTotal.Add(float64(prize))
}

// SetWealthSnapshot publishes aggregate economy gauges, typically from the
// scheduled snapshot task.
func SetWealthSnapshot(users int, wallet, bank int64, loan float64) {
	usersTotal.Set(float64(users))
	totalWallet.Set(float64(wallet))
	totalBank.Set(float64(bank))
	totalLoan.Set(loan)
}
