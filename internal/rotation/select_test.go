package rotation

import (
	"testing"
	"time"
)

func TestSelectLatest(t *testing.T) {
	base := time.Date(2025, 3, 11, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    []Candidate
		wantPath string
		wantOK   bool
	}{
		{name: "empty", input: nil, wantOK: false},
		{
			name:     "single",
			input:    []Candidate{{Path: "a.log", CreatedAt: base}},
			wantPath: "a.log",
			wantOK:   true,
		},
		{
			name: "newest wins regardless of order",
			input: []Candidate{
				{Path: "old.log", CreatedAt: base},
				{Path: "new.log", CreatedAt: base.Add(time.Minute)},
				{Path: "mid.log", CreatedAt: base.Add(time.Second)},
			},
			wantPath: "new.log",
			wantOK:   true,
		},
		{
			name: "tie broken by path",
			input: []Candidate{
				{Path: "b.log", CreatedAt: base},
				{Path: "c.log", CreatedAt: base},
				{Path: "a.log", CreatedAt: base},
			},
			wantPath: "c.log",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectLatest(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("SelectLatest() ok = %v, want %v", ok, tt.wantOK)
			}
			if got.Path != tt.wantPath {
				t.Fatalf("SelectLatest() = %q, want %q", got.Path, tt.wantPath)
			}
		})
	}
}

func TestSort_NewestFirst(t *testing.T) {
	base := time.Date(2025, 3, 11, 20, 0, 0, 0, time.UTC)
	cands := []Candidate{
		{Path: "1.log", CreatedAt: base},
		{Path: "3.log", CreatedAt: base.Add(2 * time.Hour)},
		{Path: "2.log", CreatedAt: base.Add(time.Hour)},
	}
	Sort(cands)
	want := []string{"3.log", "2.log", "1.log"}
	for i, c := range cands {
		if c.Path != want[i] {
			t.Fatalf("Sort()[%d] = %q, want %q", i, c.Path, want[i])
		}
	}
}

func TestShouldReplace(t *testing.T) {
	t1 := time.Date(2025, 3, 11, 20, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	current := &Candidate{Path: "t1.log", CreatedAt: t1}

	tests := []struct {
		name      string
		current   *Candidate
		exists    bool
		candidate Candidate
		want      bool
	}{
		{"no current", nil, false, Candidate{Path: "t1.log", CreatedAt: t1}, true},
		{"strictly newer", current, true, Candidate{Path: "t2.log", CreatedAt: t2}, true},
		{"same file rediscovered", current, true, Candidate{Path: "t1.log", CreatedAt: t1}, false},
		{"equal time other path", current, true, Candidate{Path: "other.log", CreatedAt: t1}, false},
		{"older", current, true, Candidate{Path: "t0.log", CreatedAt: t1.Add(-time.Minute)}, false},
		{"current vanished", current, false, Candidate{Path: "t0.log", CreatedAt: t1.Add(-time.Minute)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldReplace(tt.current, tt.exists, tt.candidate); got != tt.want {
				t.Fatalf("ShouldReplace() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPatternsMatch(t *testing.T) {
	p := DefaultPatterns()

	tests := []struct {
		path   string
		want   Category
		wantOK bool
	}{
		{"/logs/2025.03.11_20-00-00_0.0.1 network-connection_000.log", Network, true},
		{"/logs/2025.03.11_20-00-00_0.0.1 backend_000.log", Backend, true},
		{"/logs/BACKEND_queue.LOG", Backend, true},
		{"/logs/backend_000.txt", 0, false},
		{"/logs/application_000.log", 0, false},
		{"/logs/network-connection/notes.txt", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := p.Match(tt.path)
			if ok != tt.wantOK || (ok && got != tt.want) {
				t.Fatalf("Match(%q) = %v, %v; want %v, %v", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(c.String())
		if err != nil {
			t.Fatalf("ParseCategory(%q) error = %v", c.String(), err)
		}
		if got != c {
			t.Fatalf("ParseCategory(%q) = %v, want %v", c.String(), got, c)
		}
	}
	if _, err := ParseCategory("traces"); err == nil {
		t.Fatal("ParseCategory(traces) returned nil error")
	}
}
