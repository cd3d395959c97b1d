package ledgerstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmikhr/coinpurse-bot/internal/domain"
)

// PostgresStore persists ledgers in a single flat table keyed by user ID,
// one JSONB document per user. Multi-ledger saves run in one transaction so
// transfers and robberies commit all-or-nothing.
type PostgresStore struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

// NewPostgresStore creates a SQL-backed ledger store.
func NewPostgresStore(db *sql.DB, log *slog.Logger) *PostgresStore {
	if log == nil {
		log = slog.Default()
	}

	return &PostgresStore{
		db:  db,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreate returns the user's ledger, inserting the default ledger when
// the user is seen for the first time. A concurrent first touch for the same
// user loses the insert race and re-reads the winner's row.
func (s *PostgresStore) GetOrCreate(ctx context.Context, userID string) (*domain.Ledger, error) {
	ledger, err := s.get(ctx, userID)
	if err == nil {
		return ledger, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	fresh := domain.NewLedger(userID, s.now())
	data, err := json.Marshal(fresh)
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}

	const insert = `
		INSERT INTO ledgers (user_id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, insert, userID, data, fresh.UpdatedAt)
	if err != nil {
		s.log.Error("failed to create ledger", slog.String("user_id", userID), slog.Any("error", err))
		return nil, fmt.Errorf("insert ledger: %w", err)
	}

	if rows, raErr := res.RowsAffected(); raErr == nil && rows == 0 {
		// Lost the race; the other writer's row is authoritative.
		return s.get(ctx, userID)
	}

	s.log.Info("created ledger", slog.String("user_id", userID))

	return fresh, nil
}

func (s *PostgresStore) get(ctx context.Context, userID string) (*domain.Ledger, error) {
	const query = `
		SELECT data
		FROM ledgers
		WHERE user_id = $1
	`

	var data []byte
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		s.log.Error("failed to fetch ledger", slog.String("user_id", userID), slog.Any("error", err))
		return nil, fmt.Errorf("select ledger: %w", err)
	}

	var ledger domain.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("decode ledger for user %q: %w", userID, err)
	}

	return &ledger, nil
}

// Save upserts every given ledger within one transaction.
func (s *PostgresStore) Save(ctx context.Context, ledgers ...*domain.Ledger) error {
	if len(ledgers) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger save: %w", err)
	}

	const upsert = `
		INSERT INTO ledgers (user_id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`

	now := s.now()
	for _, ledger := range ledgers {
		if ledger == nil {
			continue
		}

		ledger.UpdatedAt = now

		data, mErr := json.Marshal(ledger)
		if mErr != nil {
			s.rollback(tx)
			return fmt.Errorf("encode ledger for user %q: %w", ledger.UserID, mErr)
		}

		if _, execErr := tx.ExecContext(ctx, upsert, ledger.UserID, data, now); execErr != nil {
			s.rollback(tx)
			s.log.Error("failed to save ledger", slog.String("user_id", ledger.UserID), slog.Any("error", execErr))
			return fmt.Errorf("upsert ledger for user %q: %w", ledger.UserID, execErr)
		}
	}

	if err := tx.Commit(); err != nil {
		s.rollback(tx)
		return fmt.Errorf("commit ledger save: %w", err)
	}

	return nil
}

// UserIDs lists every known user ID in sorted order.
func (s *PostgresStore) UserIDs(ctx context.Context) ([]string, error) {
	const query = `
		SELECT user_id
		FROM ledgers
		ORDER BY user_id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select user ids: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.log.Error("failed to close user id rows", slog.Any("error", cerr))
		}
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}

	return ids, nil
}

// Count returns the number of known ledgers.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM ledgers`

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count ledgers: %w", err)
	}

	return count, nil
}

func (s *PostgresStore) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.log.Error("ledger save rollback failed", slog.Any("error", err))
	}
}
