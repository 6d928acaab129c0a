package rotation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Category identifies which detection role a log file plays.
type Category int

const (
	Network Category = iota
	Backend
)

// Categories lists every category in a stable order.
var Categories = []Category{Network, Backend}

func (c Category) String() string {
	switch c {
	case Network:
		return "network"
	case Backend:
		return "backend"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory converts a category name back into a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "network", "net":
		return Network, nil
	case "backend":
		return Backend, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

// Patterns holds the file name rules for both categories.
type Patterns struct {
	Network   string
	Backend   string
	Extension string
}

// DefaultPatterns returns the names the producing application uses.
func DefaultPatterns() Patterns {
	return Patterns{
		Network:   "network-connection",
		Backend:   "backend",
		Extension: ".log",
	}
}

// Match reports which category a file belongs to. Only the base name is
// inspected and comparison ignores case. A name matching both substrings is
// treated as Network.
func (p Patterns) Match(path string) (Category, bool) {
	name := strings.ToLower(filepath.Base(path))
	if !strings.HasSuffix(name, strings.ToLower(p.Extension)) {
		return 0, false
	}
	if p.Network != "" && strings.Contains(name, strings.ToLower(p.Network)) {
		return Network, true
	}
	if p.Backend != "" && strings.Contains(name, strings.ToLower(p.Backend)) {
		return Backend, true
	}
	return 0, false
}

// Matches reports whether path belongs to category c.
func (p Patterns) Matches(path string, c Category) bool {
	got, ok := p.Match(path)
	return ok && got == c
}
