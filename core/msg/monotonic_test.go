package msg

import (
	"sync"
	"testing"
)

func TestMonotonicIDStartsAtInitializedValue(t *testing.T) {
	m := &MonotonicID{ID: 5}
	if got := *m.Next(); got != 5 {
		t.Errorf("first Next() = %d, want 5", got)
	}
	if got := *m.Next(); got != 6 {
		t.Errorf("second Next() = %d, want 6", got)
	}
}

func TestMonotonicIDConcurrentNextNeverRepeats(t *testing.T) {
	m := &MonotonicID{}
	const n = 1000
	ids := make([]uint64, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = *m.Next()
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool, n)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("id %d returned more than once across %d concurrent calls", id, n)
		}
		seen[id] = true
	}
}
