package session

import (
	"context"
	"sync"
	"time"

	"github.com/m3rciful/hskbot/internal/quiz"
)

// MemoryStore keeps sessions in process memory. Each user gets their own
// lock so a slow mutation for one user never stalls another.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[int64]*memEntry
	idleTTL time.Duration
}

type memEntry struct {
	mu      sync.Mutex
	sess    *quiz.Session
	touched time.Time
}

// NewMemory builds an in-memory store. idleTTL <= 0 disables eviction;
// otherwise Sweep removes sessions idle longer than idleTTL.
func NewMemory(idleTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]*memEntry),
		idleTTL: idleTTL,
	}
}

func (m *MemoryStore) entry(userID int64) *memEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[userID]
	if !ok {
		e = &memEntry{sess: quiz.NewSession(userID), touched: time.Now()}
		m.entries[userID] = e
	}
	return e
}

// lockEntry returns the user's entry with its lock held. A sweep may evict
// the entry between the map lookup and the lock acquisition; committing
// into that orphan would lose the mutation, so the entry is re-checked
// against the map once locked and the lookup retried on a mismatch.
func (m *MemoryStore) lockEntry(userID int64) *memEntry {
	for {
		e := m.entry(userID)
		e.mu.Lock()

		m.mu.Lock()
		current := m.entries[userID]
		m.mu.Unlock()
		if current == e {
			return e
		}
		e.mu.Unlock()
	}
}

// Mutate implements Store.
func (m *MemoryStore) Mutate(_ context.Context, userID int64, fn func(*quiz.Session) error) error {
	e := m.lockEntry(userID)
	defer e.mu.Unlock()

	work := *e.sess
	if err := fn(&work); err != nil {
		return err
	}
	*e.sess = work
	e.touched = time.Now()
	return nil
}

// Peek implements Store. It returns a copy; callers must not hold on to
// the session across updates.
func (m *MemoryStore) Peek(_ context.Context, userID int64) (*quiz.Session, bool, error) {
	m.mu.Lock()
	e, ok := m.entries[userID]
	m.mu.Unlock()
	if !ok {
		return nil, false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	copied := *e.sess
	return &copied, true, nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.entries, userID)
	m.mu.Unlock()
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.entries = make(map[int64]*memEntry)
	m.mu.Unlock()
	return nil
}

// Sweep evicts sessions idle longer than the configured window and
// returns how many were removed. An entry whose lock is held by an
// in-flight mutation is skipped; the next sweep picks it up.
func (m *MemoryStore) Sweep(now time.Time) int {
	if m.idleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for userID, e := range m.entries {
		if !e.mu.TryLock() {
			continue
		}
		idle := now.Sub(e.touched)
		e.mu.Unlock()
		if idle > m.idleTTL {
			delete(m.entries, userID)
			evicted++
		}
	}
	return evicted
}
