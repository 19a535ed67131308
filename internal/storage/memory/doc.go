// Package memory provides the in-memory key-value store.
//
// The Store maps binary-safe keys to values with an optional absolute
// expiry, and carries the read-only configuration parameters exposed
// through CONFIG GET.
//
// Expiry:
//
//   - Lazy: a read that finds an expired entry removes it and reports a miss.
//   - Active: a single reaper goroutine sleeps until the earliest pending
//     deadline in a min-heap and removes entries that are still due.
//
// Thread Safety:
//
// One mutex guards the entry map and the expiry heap together, so a
// reader never observes an entry between its expiry and its removal.
package memory
