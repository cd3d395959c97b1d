// Package economy implements the ledger state engine: every operation loads
// the affected ledgers, validates preconditions, mutates private copies, and
// persists through the store before reporting success. The engine keeps no
// state of its own between calls.
package economy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmikhr/coinpurse-bot/internal/catalog"
	"github.com/dmikhr/coinpurse-bot/internal/domain"
	apperrors "github.com/dmikhr/coinpurse-bot/internal/errors"
	"github.com/dmikhr/coinpurse-bot/internal/ledgerstore"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// Config tunes the economy's fixed rules.
type Config struct {
	TicketPrice       int64   `mapstructure:"ticket_price"`
	LotteryPrize      int64   `mapstructure:"lottery_prize"`
	LoanInterestRate  float64 `mapstructure:"loan_interest_rate"`
	BankInterestRate  float64 `mapstructure:"bank_interest_rate"`
	JackpotMultiplier int64   `mapstructure:"jackpot_multiplier"`
	RobFineMin        int64   `mapstructure:"rob_fine_min"`
	RobFineMax        int64   `mapstructure:"rob_fine_max"`
	FallbackItemValue int64   `mapstructure:"fallback_item_value"`
}

// DefaultConfig returns the stock economy rules.
func DefaultConfig() Config {
	return Config{
		TicketPrice:       50,
		LotteryPrize:      1000,
		LoanInterestRate:  0.10,
		BankInterestRate:  0.05,
		JackpotMultiplier: 5,
		RobFineMin:        20,
		RobFineMax:        100,
		FallbackItemValue: 50,
	}
}

// Engine executes economy operations against the ledger store.
type Engine struct {
	store ledgerstore.Store
	cat   *catalog.Catalog
	rng   Source
	clock func() time.Time
	cfg   Config
	log   *slog.Logger
	locks *keyedMutex
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSource overrides the random source, used by tests for determinism.
func WithSource(src Source) Option {
	return func(e *Engine) {
		if src != nil {
			e.rng = src
		}
	}
}

// WithClock overrides the history timestamp clock.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithConfig overrides the economy rules.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// NewEngine constructs an Engine over the given store and catalogs.
func NewEngine(store ledgerstore.Store, cat *catalog.Catalog, log *slog.Logger, opts ...Option) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if cat == nil {
		cat = catalog.Default()
	}

	e := &Engine{
		store: store,
		cat:   cat,
		rng:   NewSource(),
		clock: func() time.Time { return time.Now().UTC() },
		cfg:   DefaultConfig(),
		log:   log,
		locks: newKeyedMutex(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Balance returns the user's current balances, creating the ledger on first
// touch.
func (e *Engine) Balance(ctx context.Context, userID string) (*BalanceResult, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BalanceResult{Wallet: ledger.Wallet, Bank: ledger.Bank}, nil
}

func (e *Engine) load(ctx context.Context, userID string) (*domain.Ledger, error) {
	ledger, err := e.store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	return ledger, nil
}

// loadPair fetches both ledgers of a two-party operation. When actor and
// target are the same user, one shared copy serves both roles so the final
// save does not clobber itself.
func (e *Engine) loadPair(ctx context.Context, actorID, targetID string) (*domain.Ledger, *domain.Ledger, error) {
	actor, err := e.load(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	if actorID == targetID {
		return actor, actor, nil
	}

	target, err := e.load(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}

	return actor, target, nil
}

// persist saves the given ledgers, deduplicating shared copies, and wraps
// failures in the storage error kind.
func (e *Engine) persist(ctx context.Context, ledgers ...*domain.Ledger) error {
	distinct := ledgers[:0]
	seen := make(map[*domain.Ledger]struct{}, len(ledgers))
	for _, ledger := range ledgers {
		if ledger == nil {
			continue
		}
		if _, dup := seen[ledger]; dup {
			continue
		}
		seen[ledger] = struct{}{}
		distinct = append(distinct, ledger)
	}

	if err := e.store.Save(ctx, distinct...); err != nil {
		e.log.Error("failed to persist ledgers", slog.Any("error", err))
		return apperrors.NewStorageError(err)
	}

	return nil
}

// addHistory appends a timestamped action entry to the ledger being mutated.
// The entry is persisted together with the operation's other changes.
func (e *Engine) addHistory(ledger *domain.Ledger, format string, args ...any) {
	action := fmt.Sprintf(format, args...)
	entry := fmt.Sprintf("[%s] %s", e.clock().Format(historyTimeLayout), action)
	ledger.History = append(ledger.History, entry)
}
