package memory

import (
	"container/heap"
	"time"
)

// runReaper removes expired entries that nobody reads.
// It sleeps until the earliest deadline, never longer than maxSleep.
func (s *Store) runReaper() {
	defer close(s.done)

	timer := time.NewTimer(s.maxSleep)
	defer timer.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-s.wake:
		case <-timer.C:
		}

		wait := s.maxSleep
		if next, ok := s.reap(s.clock.Now()); ok && next < wait {
			wait = next
		}
		timer.Reset(wait)
	}
}

// reap removes every entry whose deadline is at or before now.
// It returns the delay until the next pending deadline, if any.
func (s *Store) reap(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for {
		item := s.expiries.peek()
		if item == nil {
			break
		}
		if now.Before(item.at) {
			break
		}
		heap.Pop(&s.expiries)

		// The key may have been overwritten or deleted since the item was
		// scheduled; only remove it if the entry still owns this deadline.
		if e, ok := s.entries[item.key]; ok && e.exp == item {
			delete(s.entries, item.key)
			removed++
		}
	}

	if removed > 0 {
		s.expiredActive += uint64(removed)
		s.logger.Debug("reaped expired keys", "count", removed, "pending", len(s.expiries))
	}

	item := s.expiries.peek()
	if item == nil {
		return 0, false
	}
	return item.at.Sub(now), true
}
