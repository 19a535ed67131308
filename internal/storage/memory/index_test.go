package memory

import (
	"container/heap"
	"testing"
	"time"
)

func TestExpiryHeap_Order(t *testing.T) {
	base := time.Unix(0, 0)
	h := &expiryHeap{}

	for _, offset := range []int{50, 10, 40, 20, 30} {
		heap.Push(h, &expiry{key: "k", at: base.Add(time.Duration(offset) * time.Millisecond)})
	}

	var got []time.Duration
	for h.Len() > 0 {
		item := heap.Pop(h).(*expiry)
		if item.index != -1 {
			t.Errorf("popped item index = %d, want -1", item.index)
		}
		got = append(got, item.at.Sub(base))
	}

	want := []time.Duration{10, 20, 30, 40, 50}
	for i := range want {
		if got[i] != want[i]*time.Millisecond {
			t.Errorf("pop[%d] = %v, want %v", i, got[i], want[i]*time.Millisecond)
		}
	}
}

func TestExpiryHeap_IndexTracking(t *testing.T) {
	base := time.Unix(0, 0)
	h := &expiryHeap{}

	items := make([]*expiry, 0, 4)
	for i := 0; i < 4; i++ {
		it := &expiry{key: string(rune('a' + i)), at: base.Add(time.Duration(4-i) * time.Second)}
		items = append(items, it)
		heap.Push(h, it)
	}

	for i, it := range *h {
		if it.index != i {
			t.Errorf("item %q index = %d, want %d", it.key, it.index, i)
		}
	}

	// Move the latest deadline to the front.
	items[0].at = base
	heap.Fix(h, items[0].index)
	if h.peek() != items[0] {
		t.Errorf("peek = %q, want %q", h.peek().key, items[0].key)
	}

	heap.Remove(h, items[0].index)
	if items[0].index != -1 {
		t.Errorf("removed item index = %d, want -1", items[0].index)
	}
	if h.peek() != items[3] {
		t.Errorf("peek = %q, want %q", h.peek().key, items[3].key)
	}
}

func TestExpiryHeap_PeekEmpty(t *testing.T) {
	var h expiryHeap
	if h.peek() != nil {
		t.Error("peek on empty heap should be nil")
	}
}
