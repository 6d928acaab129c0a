package rotation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Scanner finds candidate files below a root directory.
type Scanner struct {
	Root     string
	Patterns Patterns

	// BirthTime reports the creation timestamp for a file. Tests replace it
	// to control ordering.
	BirthTime func(path string, info fs.FileInfo) time.Time
}

// NewScanner returns a Scanner using the platform birth time.
func NewScanner(root string, patterns Patterns) *Scanner {
	return &Scanner{Root: root, Patterns: patterns, BirthTime: BirthTime}
}

// Scan returns every file below the root that belongs to category c.
// Entries that disappear mid-walk are skipped.
func (s *Scanner) Scan(c Category) ([]Candidate, error) {
	all, err := s.ScanAll()
	if err != nil {
		return nil, err
	}
	return all[c], nil
}

// ScanAll walks the root once and groups candidates by category.
func (s *Scanner) ScanAll() (map[Category][]Candidate, error) {
	info, err := os.Stat(s.Root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", s.Root)
	}

	out := make(map[Category][]Candidate, len(Categories))
	err = filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.Root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		c, ok := s.Patterns.Match(path)
		if !ok {
			return nil
		}
		cand, err := s.candidate(path, d)
		if err != nil {
			return nil
		}
		out[c] = append(out[c], cand)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.Root, err)
	}
	return out, nil
}

// Latest scans category c and returns its newest file.
func (s *Scanner) Latest(c Category) (Candidate, error) {
	cands, err := s.Scan(c)
	if err != nil {
		return Candidate{}, err
	}
	best, ok := SelectLatest(cands)
	if !ok {
		return Candidate{}, fmt.Errorf("%s: %w", c, ErrNoCandidate)
	}
	return best, nil
}

// Stat builds a Candidate for a single path.
func (s *Scanner) Stat(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{Path: path, CreatedAt: s.birthTime(path, info)}, nil
}

func (s *Scanner) candidate(path string, d fs.DirEntry) (Candidate, error) {
	info, err := d.Info()
	if err != nil {
		return Candidate{}, err
	}
	if !info.Mode().IsRegular() {
		return Candidate{}, errors.New("not a regular file")
	}
	return Candidate{Path: path, CreatedAt: s.birthTime(path, info)}, nil
}

func (s *Scanner) birthTime(path string, info fs.FileInfo) time.Time {
	if s.BirthTime != nil {
		return s.BirthTime(path, info)
	}
	return BirthTime(path, info)
}
