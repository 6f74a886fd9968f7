package cache

import (
	"sync"
	"testing"
	"time"
)

func TestEntry_IsStale(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		entry *Entry[int]
		now   time.Time
		want  bool
	}{
		{"nil entry", nil, base, true},
		{"zero time", &Entry[int]{Value: 1}, base, true},
		{"just stored", &Entry[int]{CachedAt: base}, base, false},
		{"within ttl", &Entry[int]{CachedAt: base}, base.Add(4999 * time.Millisecond), false},
		{"at ttl", &Entry[int]{CachedAt: base}, base.Add(DefaultTTL), true},
		{"past ttl", &Entry[int]{CachedAt: base}, base.Add(time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.entry.IsStale(tt.now, DefaultTTL); got != tt.want {
				t.Errorf("IsStale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlot_StoreLoadClear(t *testing.T) {
	t.Parallel()

	var s Slot[[]string]
	if s.Load() != nil {
		t.Fatal("new slot should be empty")
	}

	now := time.Now()
	s.Store([]string{"a"}, now)
	e := s.Load()
	if e == nil || len(e.Value) != 1 || !e.CachedAt.Equal(now) {
		t.Fatalf("Load() = %+v, want stored entry", e)
	}

	s.Clear()
	if s.Load() != nil {
		t.Error("Load() after Clear() should be nil")
	}
}

func TestSlot_Fresh(t *testing.T) {
	t.Parallel()

	var s Slot[int]
	now := time.Now()

	if e, ok := s.Fresh(now, DefaultTTL); ok || e != nil {
		t.Errorf("Fresh() on empty slot = %v, %v", e, ok)
	}

	s.Store(7, now)
	if e, ok := s.Fresh(now.Add(time.Second), DefaultTTL); !ok || e.Value != 7 {
		t.Errorf("Fresh() within ttl = %v, %v", e, ok)
	}

	e, ok := s.Fresh(now.Add(6*time.Second), DefaultTTL)
	if ok {
		t.Error("Fresh() past ttl reported fresh")
	}
	if e == nil || e.Value != 7 {
		t.Error("Fresh() past ttl should still return the stale entry")
	}
}

func TestSlot_ConcurrentReadersSeeWholeEntries(t *testing.T) {
	t.Parallel()

	type pair struct{ a, b int }
	var s Slot[pair]
	s.Store(pair{0, 0}, time.Now())

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Store(pair{i, i}, time.Now())
		}(i)
		go func() {
			defer wg.Done()
			if e := s.Load(); e != nil && e.Value.a != e.Value.b {
				t.Errorf("torn entry %+v", e.Value)
			}
		}()
	}
	wg.Wait()
}
