// Package memory provides the in-memory key-value store.
package memory

import (
	"container/heap"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultReaperMaxSleep bounds how long the reaper sleeps between passes.
// It is the upper bound on how late an unread key is actively removed
// when no earlier deadline wakes the reaper.
const DefaultReaperMaxSleep = 100 * time.Millisecond

// Configuration parameter names understood by CONFIG GET.
const (
	ConfigDir        = "dir"
	ConfigDBFilename = "dbfilename"
)

// TTLState describes the expiry state of a key.
type TTLState int

const (
	// TTLMissing means the key does not exist (or has expired).
	TTLMissing TTLState = iota
	// TTLPersistent means the key exists and never expires.
	TTLPersistent
	// TTLExpiring means the key exists and has a deadline.
	TTLExpiring
)

// Clock supplies the current time. Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Stats is a point-in-time view of store counters.
type Stats struct {
	Keys          int
	Expiring      int
	ExpiredLazy   uint64
	ExpiredActive uint64
}

// entry is one stored value. exp is nil for keys without a deadline.
type entry struct {
	value []byte
	exp   *expiry
}

// Store is a concurrency-safe key-value map with optional per-key expiry.
//
// Values handed to Set/SetWithTTL are retained without copying; callers
// must not modify them afterwards. Values returned by Get must be treated
// as read-only.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*entry
	expiries expiryHeap
	config   map[string]string

	expiredLazy   uint64
	expiredActive uint64

	clock         Clock
	maxSleep      time.Duration
	reaperEnabled bool
	logger        *slog.Logger

	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures the Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithReaperMaxSleep sets the maximum sleep between reaper passes.
func WithReaperMaxSleep(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.maxSleep = d
		}
	}
}

// WithConfig registers a read-only configuration parameter.
// Names are case-insensitive.
func WithConfig(name, value string) Option {
	return func(s *Store) {
		s.config[strings.ToLower(name)] = value
	}
}

// WithLogger sets the logger used by the reaper.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store and starts its expiry reaper.
// Call Close to stop the reaper.
func New(opts ...Option) *Store {
	s := &Store{
		entries:       make(map[string]*entry),
		config:        make(map[string]string),
		clock:         systemClock{},
		maxSleep:      DefaultReaperMaxSleep,
		reaperEnabled: true,
		logger:        slog.Default(),
		wake:          make(chan struct{}, 1),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.reaperEnabled {
		go s.runReaper()
	} else {
		close(s.done)
	}

	return s
}

// Close stops the reaper and waits for it to exit. Stored data stays readable.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
	return nil
}

// Get returns the value for key. An expired entry is removed and reported as a miss.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.liveLocked(key, s.clock.Now())
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Exists reports whether key holds a live entry.
func (s *Store) Exists(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.liveLocked(key, s.clock.Now())
	return ok
}

// Set stores value under key and clears any previous expiry.
func (s *Store) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putLocked(key, value, time.Time{}, false)
}

// SetWithTTL stores value under key, expiring ttl from now.
// A non-positive ttl stores an entry that is already expired.
func (s *Store) SetWithTTL(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putLocked(key, value, s.clock.Now().Add(ttl), true)
}

// Delete removes key. It reports whether a live entry was removed.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.liveLocked(key, s.clock.Now()); !ok {
		return false
	}
	s.removeLocked(key, s.entries[key])
	return true
}

// Flush removes every entry and drops all pending expirations.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.expiries {
		item.index = -1
	}
	s.entries = make(map[string]*entry)
	s.expiries = nil
}

// TTL returns the remaining lifetime of key and its expiry state.
// The duration is only meaningful for TTLExpiring.
func (s *Store) TTL(key string) (time.Duration, TTLState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	e, ok := s.liveLocked(key, now)
	if !ok {
		return 0, TTLMissing
	}
	if e.exp == nil {
		return 0, TTLPersistent
	}
	return e.exp.at.Sub(now), TTLExpiring
}

// Len returns the number of physically stored entries, including expired
// entries that have not been reaped yet.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// ConfigGet returns a configuration parameter registered with WithConfig.
func (s *Store) ConfigGet(name string) (string, bool) {
	// config is immutable after New.
	v, ok := s.config[strings.ToLower(name)]
	return v, ok
}

// Stats returns the current store counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Keys:          len(s.entries),
		Expiring:      len(s.expiries),
		ExpiredLazy:   s.expiredLazy,
		ExpiredActive: s.expiredActive,
	}
}

// liveLocked returns the entry for key if it exists and has not expired.
// Expired entries are removed on the way out.
func (s *Store) liveLocked(key string, now time.Time) (*entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if e.exp != nil && !now.Before(e.exp.at) {
		s.removeLocked(key, e)
		s.expiredLazy++
		return nil, false
	}
	return e, true
}

// putLocked replaces the entry for key, moving or dropping its heap item.
func (s *Store) putLocked(key string, value []byte, at time.Time, expiring bool) {
	next := &entry{value: value}

	var item *expiry
	if prev, ok := s.entries[key]; ok && prev.exp != nil {
		item = prev.exp
	}

	switch {
	case expiring && item != nil:
		item.at = at
		heap.Fix(&s.expiries, item.index)
		next.exp = item
	case expiring:
		next.exp = &expiry{key: key, at: at}
		heap.Push(&s.expiries, next.exp)
	case item != nil:
		heap.Remove(&s.expiries, item.index)
	}

	s.entries[key] = next

	if next.exp != nil && next.exp.index == 0 {
		s.signalReaper()
	}
}

func (s *Store) removeLocked(key string, e *entry) {
	delete(s.entries, key)
	if e != nil && e.exp != nil && e.exp.index >= 0 {
		heap.Remove(&s.expiries, e.exp.index)
	}
}

// signalReaper wakes the reaper after the earliest deadline changed.
func (s *Store) signalReaper() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
