package economy

import "context"

// DefaultHistoryLimit is how many entries a history listing shows.
const DefaultHistoryLimit = 10

// Record appends a timestamped free-form action entry to the user's history
// and persists it. Engine operations write their own entries inline; this is
// the hook for the transport layer to log out-of-band actions.
func (e *Engine) Record(ctx context.Context, userID, action string) error {
	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return err
	}

	e.addHistory(ledger, "%s", action)

	return e.persist(ctx, ledger)
}

// Recent returns the last n history entries, most recent last. n <= 0 uses
// the default limit. A user without history gets an empty slice.
func (e *Engine) Recent(ctx context.Context, userID string, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultHistoryLimit
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	ledger, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ledger.RecentHistory(n), nil
}
