package economy

import (
	"sort"
	"sync"
)

// keyedMutex serializes read-modify-write sequences per user ledger. Locks
// for multiple users are always taken in sorted ID order so two-party
// operations running in opposite directions cannot deadlock.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for every distinct user ID and returns the
// corresponding unlock function.
func (k *keyedMutex) Lock(userIDs ...string) func() {
	ids := dedupeSorted(userIDs)

	held := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		mu := k.mutexFor(id)
		mu.Lock()
		held = append(held, mu)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (k *keyedMutex) mutexFor(userID string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	mu, ok := k.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		k.locks[userID] = mu
	}

	return mu
}

func dedupeSorted(ids []string) []string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	out := sorted[:0]
	for i, id := range sorted {
		if i > 0 && sorted[i-1] == id {
			continue
		}
		out = append(out, id)
	}

	return out
}
