// Package ledgerstore persists per-user economy ledgers. The store is the
// single source of truth: every engine operation loads from it, mutates a
// private copy, and saves before reporting success.
package ledgerstore

import (
	"context"
	"errors"

	"github.com/dmikhr/coinpurse-bot/internal/domain"
)

// ErrNotFound indicates that no ledger exists for the requested user.
var ErrNotFound = errors.New("ledger not found")

// Store defines the persistence contract for user ledgers.
type Store interface {
	// GetOrCreate returns a copy of the user's ledger, creating and
	// persisting the default ledger on first touch.
	GetOrCreate(ctx context.Context, userID string) (*domain.Ledger, error)
	// Save durably writes the given ledgers as a single atomic unit.
	Save(ctx context.Context, ledgers ...*domain.Ledger) error
	// UserIDs lists every known user ID.
	UserIDs(ctx context.Context) ([]string, error)
	// Count returns the number of known ledgers.
	Count(ctx context.Context) (int, error)
}
