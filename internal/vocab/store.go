package vocab

import (
	"sort"
	"sync"
)

// Store holds the loaded vocabulary set bucketed by HSK level.
// Reads vastly outnumber writes: the only write after startup is an
// admin-triggered reload, so a plain RWMutex is enough.
type Store struct {
	mu      sync.RWMutex
	byLevel map[int][]Entry
	total   int
}

// NewStore builds a store from already validated entries.
func NewStore(entries []Entry) *Store {
	s := &Store{}
	s.Replace(entries)
	return s
}

// Query returns all entries for the given level. It fails with
// *NotFoundError when the level has no vocabulary; the caller decides how
// to surface that, the store never substitutes another level.
func (s *Store) Query(level int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool, ok := s.byLevel[level]
	if !ok || len(pool) == 0 {
		return nil, &NotFoundError{Level: level}
	}
	return pool, nil
}

// Levels returns the sorted levels that have at least one entry.
func (s *Store) Levels() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	levels := make([]int, 0, len(s.byLevel))
	for level := range s.byLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}

// Len returns the total number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Replace swaps the whole vocabulary set. Slices handed out by earlier
// Query calls stay valid; they keep pointing at the old set.
func (s *Store) Replace(entries []Entry) {
	byLevel := make(map[int][]Entry)
	for _, e := range entries {
		byLevel[e.Level] = append(byLevel[e.Level], e)
	}

	s.mu.Lock()
	s.byLevel = byLevel
	s.total = len(entries)
	s.mu.Unlock()
}
