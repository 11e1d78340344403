package ledger

import (
	"sync"
	"time"

	"github.com/ChadFarrow/5050-sub001/internal/protocol"
)

// DefaultPendingTTL bounds how long an optimistically published record
// is carried while it fails to show up on any relay.
const DefaultPendingTTL = 24 * time.Hour

type pendingEntry struct {
	event   protocol.Event
	addedAt time.Time
}

// PendingSet holds locally published records that no relay has echoed
// back yet. Merging them into each aggregation pass keeps the local
// view read-your-writes consistent; entries drop out as soon as they
// are confirmed, or expire after the TTL.
type PendingSet struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]pendingEntry
}

func NewPendingSet(ttl time.Duration) *PendingSet {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	return &PendingSet{
		ttl:     ttl,
		entries: make(map[string]pendingEntry),
	}
}

// Add registers a just-published record, keyed by id.
func (s *PendingSet) Add(ev protocol.Event) {
	if ev.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[ev.ID] = pendingEntry{event: ev, addedAt: time.Now()}
}

// Merge folds pending records of the given kind into a confirmed
// batch, drops entries the batch already confirms, and expires stale
// ones. The aggregator dedups by id, so double-merging is harmless.
func (s *PendingSet) Merge(confirmed []protocol.Event, kind int) []protocol.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(confirmed))
	for _, ev := range confirmed {
		seen[ev.ID] = true
	}

	cutoff := time.Now().Add(-s.ttl)
	merged := confirmed
	for id, entry := range s.entries {
		if seen[id] {
			delete(s.entries, id)
			continue
		}
		if entry.addedAt.Before(cutoff) {
			delete(s.entries, id)
			continue
		}
		if entry.event.Kind == kind {
			merged = append(merged, entry.event)
		}
	}
	return merged
}

// Len reports the current number of unconfirmed records.
func (s *PendingSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
