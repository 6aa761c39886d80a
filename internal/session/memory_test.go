package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/hskbot/internal/quiz"
)

func TestMemoryMutateCreatesSession(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	err := m.Mutate(ctx, 42, func(s *quiz.Session) error {
		if s.UserID != 42 {
			t.Fatalf("UserID = %d, want 42", s.UserID)
		}
		if s.State != quiz.StateChoosingLevel {
			t.Fatalf("fresh state = %s", s.State)
		}
		s.Level = 3
		s.State = quiz.StateChoosingDirection
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	s, ok, err := m.Peek(ctx, 42)
	if err != nil || !ok {
		t.Fatalf("Peek: ok=%v err=%v", ok, err)
	}
	if s.Level != 3 || s.State != quiz.StateChoosingDirection {
		t.Fatalf("changes not committed: %+v", s)
	}
}

func TestMemoryMutateDiscardsOnError(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	if err := m.Mutate(ctx, 1, func(s *quiz.Session) error {
		s.Level = 2
		return nil
	}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	boom := errors.New("boom")
	err := m.Mutate(ctx, 1, func(s *quiz.Session) error {
		s.Level = 6
		s.Score.Total = 99
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Mutate error = %v, want boom", err)
	}

	s, ok, _ := m.Peek(ctx, 1)
	if !ok {
		t.Fatal("session gone")
	}
	if s.Level != 2 || s.Score.Total != 0 {
		t.Fatalf("failed mutation leaked: %+v", s)
	}
}

func TestMemoryPeekReturnsCopy(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	if err := m.Mutate(ctx, 7, func(s *quiz.Session) error { return nil }); err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	s, _, _ := m.Peek(ctx, 7)
	s.Score.Total = 100

	again, _, _ := m.Peek(ctx, 7)
	if again.Score.Total != 0 {
		t.Fatalf("Peek handed out shared state: %+v", again)
	}
}

func TestMemoryPeekUnknownUser(t *testing.T) {
	m := NewMemory(0)
	if _, ok, err := m.Peek(context.Background(), 404); ok || err != nil {
		t.Fatalf("Peek(404) = ok=%v err=%v, want miss", ok, err)
	}
}

func TestMemoryClear(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	if err := m.Mutate(ctx, 9, func(s *quiz.Session) error { return nil }); err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if err := m.Clear(ctx, 9); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := m.Peek(ctx, 9); ok {
		t.Fatal("session survived Clear")
	}
}

func TestMemorySweep(t *testing.T) {
	m := NewMemory(time.Minute)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		if err := m.Mutate(ctx, id, func(s *quiz.Session) error { return nil }); err != nil {
			t.Fatalf("Mutate(%d): %v", id, err)
		}
	}

	if evicted := m.Sweep(time.Now()); evicted != 0 {
		t.Fatalf("fresh sessions evicted: %d", evicted)
	}

	if evicted := m.Sweep(time.Now().Add(2 * time.Minute)); evicted != 3 {
		t.Fatalf("evicted = %d, want 3", evicted)
	}
	if _, ok, _ := m.Peek(ctx, 1); ok {
		t.Fatal("evicted session still readable")
	}
}

func TestMemorySweepDisabled(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	if err := m.Mutate(ctx, 1, func(s *quiz.Session) error { return nil }); err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if evicted := m.Sweep(time.Now().Add(time.Hour)); evicted != 0 {
		t.Fatalf("eviction ran with TTL disabled: %d", evicted)
	}
}

func TestMemorySweepSkipsBusyEntry(t *testing.T) {
	m := NewMemory(time.Minute)
	ctx := context.Background()

	hold := make(chan struct{})
	entered := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.Mutate(ctx, 1, func(s *quiz.Session) error {
			close(entered)
			<-hold
			return nil
		})
	}()
	<-entered

	if evicted := m.Sweep(time.Now().Add(2 * time.Minute)); evicted != 0 {
		t.Fatalf("busy session evicted: %d", evicted)
	}

	close(hold)
	if err := <-done; err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if _, ok, _ := m.Peek(ctx, 1); !ok {
		t.Fatal("session lost after sweep skipped it")
	}
}

func TestMemoryLockEntryRevalidatesAfterEviction(t *testing.T) {
	m := NewMemory(time.Minute)
	ctx := context.Background()

	// Fetch the entry the way Mutate does, then let a sweep evict it
	// before the lock is taken.
	stale := m.entry(1)
	m.mu.Lock()
	delete(m.entries, 1)
	m.mu.Unlock()

	e := m.lockEntry(1)
	if e == stale {
		e.mu.Unlock()
		t.Fatal("locked an entry the sweep already removed")
	}
	m.mu.Lock()
	current := m.entries[1]
	m.mu.Unlock()
	if current != e {
		e.mu.Unlock()
		t.Fatal("locked entry is not the one in the map")
	}
	e.mu.Unlock()

	// A mutation after the eviction must land in the live entry.
	if err := m.Mutate(ctx, 1, func(s *quiz.Session) error {
		s.Level = 5
		return nil
	}); err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	s, ok, _ := m.Peek(ctx, 1)
	if !ok || s.Level != 5 {
		t.Fatalf("mutation lost after eviction race: ok=%v session=%+v", ok, s)
	}
}

func TestMemoryConcurrentMutations(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()

	const workers = 8
	const rounds = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				_ = m.Mutate(ctx, 1, func(s *quiz.Session) error {
					s.Score.Total++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	s, ok, _ := m.Peek(ctx, 1)
	if !ok {
		t.Fatal("session missing")
	}
	if s.Score.Total != workers*rounds {
		t.Fatalf("total = %d, want %d", s.Score.Total, workers*rounds)
	}
}
