package memory

import "time"

// expiry is a pending deadline for one key, owned by the entry it belongs to.
type expiry struct {
	key   string
	at    time.Time
	index int // position in the heap, -1 once removed
}

// expiryHeap orders pending deadlines, earliest first.
// It implements container/heap.Interface and is only touched under Store.mu.
type expiryHeap []*expiry

func (h expiryHeap) Len() int { return len(h) }

func (h expiryHeap) Less(i, j int) bool {
	return h[i].at.Before(h[j].at)
}

func (h expiryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *expiryHeap) Push(x any) {
	item := x.(*expiry)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// peek returns the earliest deadline without removing it.
func (h expiryHeap) peek() *expiry {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}
