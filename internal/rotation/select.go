package rotation

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// ErrNoCandidate reports that a category has no matching file yet.
var ErrNoCandidate = errors.New("no candidate log file")

// Candidate is a log file observed during a scan.
type Candidate struct {
	Path      string
	CreatedAt time.Time
}

// IsZero reports whether c is the empty candidate.
func (c Candidate) IsZero() bool {
	return c.Path == "" && c.CreatedAt.IsZero()
}

// Newer reports whether c should sort before other: later creation first,
// then the lexically greater path.
func (c Candidate) Newer(other Candidate) bool {
	if !c.CreatedAt.Equal(other.CreatedAt) {
		return c.CreatedAt.After(other.CreatedAt)
	}
	return c.Path > other.Path
}

// Sort orders candidates newest first in place.
func Sort(candidates []Candidate) {
	slices.SortFunc(candidates, func(a, b Candidate) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Path, a.Path)
	})
}

// SelectLatest returns the most recently created candidate.
func SelectLatest(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Newer(best) {
			best = c
		}
	}
	return best, true
}

// ShouldReplace decides whether candidate should take over from current.
// current is nil when nothing is being tailed and currentExists reports
// whether the current file is still on disk.
func ShouldReplace(current *Candidate, currentExists bool, candidate Candidate) bool {
	if current == nil {
		return true
	}
	if !currentExists {
		return true
	}
	return candidate.CreatedAt.After(current.CreatedAt)
}
