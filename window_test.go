package sapling

import "testing"

func TestWindowEvictsOldestFirst(t *testing.T) {
	w := newWindow(3)
	examples := make([]*Example, 5)
	for i := range examples {
		examples[i] = NewExample([]Value{DiscreteValue(0)}, 0)
		examples[i].seq = uint64(i)
	}
	for i := 0; i < 3; i++ {
		if evicted := w.push(examples[i]); evicted != nil {
			t.Fatalf("expected no eviction while below capacity, got example %d", evicted.seq)
		}
	}
	if w.len() != 3 {
		t.Fatalf("expected window length 3, got %d", w.len())
	}
	for i := 3; i < 5; i++ {
		evicted := w.push(examples[i])
		if evicted == nil {
			t.Fatalf("expected an eviction pushing example %d onto a full window", i)
		}
		if evicted != examples[i-3] {
			t.Errorf("expected example %d to be evicted, got %d", i-3, evicted.seq)
		}
		if w.len() != 3 {
			t.Errorf("expected window length to stay 3, got %d", w.len())
		}
	}
}
