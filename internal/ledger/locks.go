package ledger

import "sync"

// keyedMutex hands out one mutex per room number so balance mutations
// for the same room serialize while different rooms stay independent.
// Entries are never removed; the key space is bounded by the number of
// rooms in the building.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for key and returns its unlock function.
func (km *keyedMutex) lock(key string) func() {
	km.mu.Lock()
	m, ok := km.locks[key]
	if !ok {
		m = &sync.Mutex{}
		km.locks[key] = m
	}
	km.mu.Unlock()

	m.Lock()
	return m.Unlock
}
