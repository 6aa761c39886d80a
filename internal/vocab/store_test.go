package vocab

import (
	"errors"
	"reflect"
	"testing"
)

func TestStoreQuery(t *testing.T) {
	s := NewStore([]Entry{
		{Source: "回", Target: "return", Level: 1},
		{Source: "好", Target: "good", Level: 1},
		{Source: "经济", Target: "economy", Level: 4},
	})

	pool, err := s.Query(1)
	if err != nil {
		t.Fatalf("Query(1): %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("len(pool) = %d, want 2", len(pool))
	}

	_, err = s.Query(3)
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("Query(3) error = %v, want NotFoundError", err)
	}
	if nfErr.Level != 3 {
		t.Fatalf("NotFoundError.Level = %d, want 3", nfErr.Level)
	}
}

func TestStoreLevelsSorted(t *testing.T) {
	s := NewStore([]Entry{
		{Source: "a", Target: "a", Level: 6},
		{Source: "b", Target: "b", Level: 2},
		{Source: "c", Target: "c", Level: 4},
		{Source: "d", Target: "d", Level: 2},
	})

	if got, want := s.Levels(), []int{2, 4, 6}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Levels() = %v, want %v", got, want)
	}
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
}

func TestStoreReplace(t *testing.T) {
	s := NewStore([]Entry{{Source: "回", Target: "return", Level: 1}})

	old, err := s.Query(1)
	if err != nil {
		t.Fatalf("Query before replace: %v", err)
	}

	s.Replace([]Entry{
		{Source: "经济", Target: "economy", Level: 4},
		{Source: "文化", Target: "culture", Level: 4},
	})

	if _, err := s.Query(1); err == nil {
		t.Fatal("level 1 survived the replace")
	}
	pool, err := s.Query(4)
	if err != nil {
		t.Fatalf("Query(4): %v", err)
	}
	if len(pool) != 2 || s.Len() != 2 {
		t.Fatalf("pool = %v, len = %d", pool, s.Len())
	}

	// Slices from before the swap keep pointing at the old set.
	if old[0].Source != "回" {
		t.Fatalf("old pool mutated: %+v", old)
	}
}

func TestStoreReplaceEmpty(t *testing.T) {
	s := NewStore([]Entry{{Source: "回", Target: "return", Level: 1}})
	s.Replace(nil)

	if s.Len() != 0 || len(s.Levels()) != 0 {
		t.Fatalf("store not emptied: len=%d levels=%v", s.Len(), s.Levels())
	}
}
