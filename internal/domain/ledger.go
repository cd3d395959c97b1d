package domain

import "time"

// DefaultWallet is the starting cash balance for a freshly created ledger.
const DefaultWallet int64 = 100

// Ledger is the per-user economy record persisted by the store.
// Loan is a float64 because loan interest compounds to fractional cents.
type Ledger struct {
	UserID         string    `json:"user_id"`
	Wallet         int64     `json:"wallet"`
	Bank           int64     `json:"bank"`
	Job            string    `json:"job,omitempty"`
	JobLevel       int       `json:"job_level"`
	Inventory      []string  `json:"inventory"`
	Loan           float64   `json:"loan"`
	LotteryTickets int       `json:"lottery_tickets"`
	History        []string  `json:"history"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewLedger returns the default ledger state for a first-touch user.
func NewLedger(userID string, now time.Time) *Ledger {
	return &Ledger{
		UserID:    userID,
		Wallet:    DefaultWallet,
		Bank:      0,
		JobLevel:  1,
		Inventory: []string{},
		History:   []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers can mutate without sharing slices.
func (l *Ledger) Clone() *Ledger {
	if l == nil {
		return nil
	}

	cp := *l
	cp.Inventory = append([]string(nil), l.Inventory...)
	cp.History = append([]string(nil), l.History...)

	return &cp
}

// HasItem reports whether at least one occurrence of item is held.
func (l *Ledger) HasItem(item string) bool {
	for _, owned := range l.Inventory {
		if owned == item {
			return true
		}
	}

	return false
}

// RemoveItem removes exactly one occurrence of item, preserving order.
// It reports whether an occurrence was found.
func (l *Ledger) RemoveItem(item string) bool {
	for i, owned := range l.Inventory {
		if owned == item {
			l.Inventory = append(l.Inventory[:i], l.Inventory[i+1:]...)
			return true
		}
	}

	return false
}

// RecentHistory returns the last n history entries, most recent last.
func (l *Ledger) RecentHistory(n int) []string {
	if n <= 0 || len(l.History) == 0 {
		return nil
	}

	if len(l.History) <= n {
		return append([]string(nil), l.History...)
	}

	return append([]string(nil), l.History[len(l.History)-n:]...)
}
