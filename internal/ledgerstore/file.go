package ledgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dmikhr/coinpurse-bot/internal/domain"
)

// FileStore keeps the full ledger table in memory and writes it to a single
// JSON document on every save. Writes go through a temp file and rename so a
// crash mid-write never leaves a torn table on disk.
type FileStore struct {
	mu    sync.Mutex
	path  string
	table map[string]*domain.Ledger
	log   *slog.Logger
	now   func() time.Time
}

// NewFileStore opens (or initializes) the ledger document at path.
func NewFileStore(path string, log *slog.Logger) (*FileStore, error) {
	if log == nil {
		log = slog.Default()
	}

	s := &FileStore{
		path:  path,
		table: make(map[string]*domain.Ledger),
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read ledger file %q: %w", s.path, err)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.table); err != nil {
		return fmt.Errorf("decode ledger file %q: %w", s.path, err)
	}

	s.log.Info("ledger file loaded", slog.String("path", s.path), slog.Int("users", len(s.table)))

	return nil
}

// GetOrCreate returns a copy of the user's ledger, persisting the default
// ledger when the user is seen for the first time.
func (s *FileStore) GetOrCreate(ctx context.Context, userID string) (*domain.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ledger, ok := s.table[userID]; ok {
		return ledger.Clone(), nil
	}

	ledger := domain.NewLedger(userID, s.now())
	s.table[userID] = ledger

	if err := s.persistLocked(); err != nil {
		delete(s.table, userID)
		return nil, err
	}

	s.log.Info("created ledger", slog.String("user_id", userID))

	return ledger.Clone(), nil
}

// Save applies the given ledgers to the table and persists the whole document.
// On persist failure the previous in-memory entries are restored so the table
// matches what is on disk.
func (s *FileStore) Save(ctx context.Context, ledgers ...*domain.Ledger) error {
	if len(ledgers) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make(map[string]*domain.Ledger, len(ledgers))
	for _, ledger := range ledgers {
		if ledger == nil {
			continue
		}

		previous[ledger.UserID] = s.table[ledger.UserID]

		updated := ledger.Clone()
		updated.UpdatedAt = s.now()
		s.table[ledger.UserID] = updated
	}

	if err := s.persistLocked(); err != nil {
		for userID, old := range previous {
			if old == nil {
				delete(s.table, userID)
			} else {
				s.table[userID] = old
			}
		}

		return err
	}

	return nil
}

// UserIDs lists known users in sorted order.
func (s *FileStore) UserIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.table))
	for id := range s.table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, nil
}

// Count returns the number of known ledgers.
func (s *FileStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.table), nil
}

func (s *FileStore) persistLocked() error {
	data, err := json.MarshalIndent(s.table, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger table: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ledgers-*.json")
	if err != nil {
		return fmt.Errorf("create temp ledger file: %w", err)
	}

	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write ledger file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close ledger file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace ledger file: %w", err)
	}

	return nil
}
