package monitor

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/eftwatch/internal/rotation"
)

// Entry describes a running tailer.
type Entry struct {
	ID       uint64
	Category rotation.Category
	Path     string
	Started  time.Time
}

// Registry tracks running tailers across monitors for status and cleanup.
type Registry struct {
	ids atomic.Uint64

	mu      sync.Mutex
	tailers map[uint64]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tailers: make(map[uint64]Entry)}
}

func (r *Registry) nextID() uint64 {
	return r.ids.Add(1)
}

func (r *Registry) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tailers[e.ID] = e
}

func (r *Registry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tailers, id)
}

// Count returns the number of running tailers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tailers)
}

// CountFor returns the number of running tailers for one category.
func (r *Registry) CountFor(c rotation.Category) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.tailers {
		if e.Category == c {
			n++
		}
	}
	return n
}

// Entries returns a copy of the running tailers ordered by start.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	out := make([]Entry, 0, len(r.tailers))
	for _, e := range r.tailers {
		out = append(out, e)
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b Entry) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return out
}
