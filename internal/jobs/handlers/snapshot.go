// Package handlers implements background task handlers.
package handlers

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/dmikhr/coinpurse-bot/internal/ledgerstore"
	"github.com/dmikhr/coinpurse-bot/pkg/metrics"
)

// SnapshotHandler aggregates wealth totals across all ledgers and publishes
// them as Prometheus gauges.
type SnapshotHandler struct {
	store ledgerstore.Store
	log   *slog.Logger
}

// NewSnapshotHandler builds the economy snapshot task handler.
func NewSnapshotHandler(store ledgerstore.Store, log *slog.Logger) *SnapshotHandler {
	if log == nil {
		log = slog.Default()
	}

	return &SnapshotHandler{store: store, log: log}
}

// ProcessTask walks the ledger table and updates the wealth gauges.
func (h *SnapshotHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	ids, err := h.store.UserIDs(ctx)
	if err != nil {
		h.log.Error("snapshot: failed to list users", slog.Any("error", err))
		return err
	}

	var (
		totalWallet int64
		totalBank   int64
		totalLoan   float64
	)

	for _, id := range ids {
		ledger, err := h.store.GetOrCreate(ctx, id)
		if err != nil {
			h.log.Error("snapshot: failed to load ledger", slog.String("user_id", id), slog.Any("error", err))
			return err
		}

		totalWallet += ledger.Wallet
		totalBank += ledger.Bank
		totalLoan += ledger.Loan
	}

	metrics.SetWealthSnapshot(len(ids), totalWallet, totalBank, totalLoan)

	h.log.Info("economy snapshot published",
		slog.Int("users", len(ids)),
		slog.Int64("wallet_total", totalWallet),
		slog.Int64("bank_total", totalBank),
		slog.Float64("loan_total", totalLoan),
	)

	return nil
}
