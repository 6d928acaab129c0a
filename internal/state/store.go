package state

import (
	"slices"
	"sync"
	"time"

	"github.com/five82/eftwatch/internal/engine"
	"github.com/five82/eftwatch/internal/trigger"
)

// DefaultHistory is the number of recent events a zero Store keeps.
const DefaultHistory = 50

// Snapshot represents the latest data available to the dashboard and the
// STATUS command.
type Snapshot struct {
	Status      engine.Status
	HasStatus   bool
	Events      []trigger.Event // oldest first
	Statistics  int
	Screenshots int
	LastEvent   time.Time
	LastUpdated time.Time
}

// Recent returns up to n of the newest events, newest first.
func (s Snapshot) Recent(n int) []trigger.Event {
	if n <= 0 || len(s.Events) == 0 {
		return nil
	}
	n = min(n, len(s.Events))
	out := make([]trigger.Event, 0, n)
	for i := len(s.Events) - 1; i >= len(s.Events)-n; i-- {
		out = append(out, s.Events[i])
	}
	return out
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	// History caps the event list. Zero means DefaultHistory.
	History int

	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored engine status.
func (s *Store) Update(status engine.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Status = cloneStatus(status)
	s.snapshot.HasStatus = true
	s.snapshot.LastUpdated = time.Now()
}

// Record appends an event to the bounded history and bumps its counter.
func (s *Store) Record(ev trigger.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case trigger.StatisticsFound:
		s.snapshot.Statistics++
	case trigger.ScreenshotTrigger:
		s.snapshot.Screenshots++
	}
	if ev.At.After(s.snapshot.LastEvent) {
		s.snapshot.LastEvent = ev.At
	}

	limit := s.History
	if limit <= 0 {
		limit = DefaultHistory
	}
	s.snapshot.Events = append(s.snapshot.Events, ev)
	if over := len(s.snapshot.Events) - limit; over > 0 {
		s.snapshot.Events = slices.Delete(s.snapshot.Events, 0, over)
	}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Status = cloneStatus(s.snapshot.Status)
	snap.Events = slices.Clone(s.snapshot.Events)
	return snap
}

func cloneStatus(status engine.Status) engine.Status {
	status.Monitors = slices.Clone(status.Monitors)
	return status
}
