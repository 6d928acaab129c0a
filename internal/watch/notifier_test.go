package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/eftwatch/internal/rotation"
)

type changes struct {
	mu   sync.Mutex
	seen map[rotation.Category]int
}

func (c *changes) record(cat rotation.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[cat]++
}

func (c *changes) count(cat rotation.Category) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[cat]
}

func startNotifier(t *testing.T, root string) *changes {
	t.Helper()
	n, err := New(Options{Root: root, Patterns: rotation.DefaultPatterns(), Debounce: 10 * time.Millisecond, Logger: zerolog.Nop()})
	require.NoError(t, err)

	got := &changes{seen: make(map[rotation.Category]int)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		n.Run(ctx, got.record)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return got
}

func TestNotifier_ReportsMatchingFiles(t *testing.T) {
	root := t.TempDir()
	got := startNotifier(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "backend_000.log"), nil, 0o644))
	require.Eventually(t, func() bool { return got.count(rotation.Backend) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, got.count(rotation.Network))
}

func TestNotifier_IgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	got := startNotifier(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "application_000.log"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "backend.txt"), nil, 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, got.count(rotation.Backend))
	assert.Zero(t, got.count(rotation.Network))
}

func TestNotifier_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	got := startNotifier(t, root)

	for _, name := range []string{"network-connection_000.log", "network-connection_001.log", "network-connection_002.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o644))
	}
	require.Eventually(t, func() bool { return got.count(rotation.Network) >= 1 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, got.count(rotation.Network), 3)
}

func TestNotifier_FollowsNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	got := startNotifier(t, root)

	session := filepath.Join(root, "log_2025.03.11_20-00-00")
	require.NoError(t, os.Mkdir(session, 0o755))
	// The new directory itself signals both categories.
	require.Eventually(t, func() bool { return got.count(rotation.Network) >= 1 }, 2*time.Second, 5*time.Millisecond)
	before := got.count(rotation.Network)

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(session, "network-connection_000.log"), nil, 0o644))
	require.Eventually(t, func() bool { return got.count(rotation.Network) > before }, 2*time.Second, 5*time.Millisecond)
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(Options{Root: filepath.Join(t.TempDir(), "missing"), Patterns: rotation.DefaultPatterns(), Logger: zerolog.Nop()})
	assert.Error(t, err)
}
