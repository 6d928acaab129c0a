// Package watch reports new log files appearing below the watched root.
//
// Notifications are hints. The receiver always rescans before acting, so
// missed, duplicated or reordered events are harmless.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/five82/eftwatch/internal/rotation"
)

const defaultDebounce = 50 * time.Millisecond

// Notifier watches a directory tree with fsnotify.
type Notifier struct {
	root     string
	patterns rotation.Patterns
	debounce time.Duration
	log      zerolog.Logger
	watcher  *fsnotify.Watcher
}

// Options configure a Notifier.
type Options struct {
	Root     string
	Patterns rotation.Patterns
	Debounce time.Duration
	Logger   zerolog.Logger
}

// New starts watching opts.Root and every directory below it.
func New(opts Options) (*Notifier, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	n := &Notifier{
		root:     opts.Root,
		patterns: opts.Patterns,
		debounce: debounce,
		log:      opts.Logger.With().Str("component", "watch").Logger(),
		watcher:  watcher,
	}
	if err := n.watcher.Add(n.root); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", n.root, err)
	}
	n.watchTree(n.root)
	return n, nil
}

// watchTree adds every subdirectory of dir. Failures are logged and skipped.
func (n *Notifier) watchTree(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == n.root {
			return nil
		}
		if err := n.watcher.Add(path); err != nil {
			n.log.Debug().Err(err).Str("dir", path).Msg("cannot watch directory")
		}
		return nil
	})
}

// Run delivers debounced "category changed" signals to onChange until ctx is
// cancelled. It closes the underlying watcher on return.
func (n *Notifier) Run(ctx context.Context, onChange func(rotation.Category)) {
	defer n.watcher.Close()

	debounceTimer := time.NewTimer(n.debounce)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	pending := make(map[rotation.Category]bool, len(rotation.Categories))

	for {
		select {
		case <-ctx.Done():
			debounceTimer.Stop()
			return

		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if !n.collect(event, pending) {
				continue
			}
			debounceTimer.Reset(n.debounce)

		case <-debounceTimer.C:
			for _, c := range rotation.Categories {
				if pending[c] {
					delete(pending, c)
					onChange(c)
				}
			}

		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// Events were lost; let both categories rescan.
				for _, c := range rotation.Categories {
					pending[c] = true
				}
				debounceTimer.Reset(n.debounce)
			}
			n.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// collect records which categories an event touches.
func (n *Notifier) collect(event fsnotify.Event, pending map[rotation.Category]bool) bool {
	if !event.Has(fsnotify.Create) {
		return false
	}
	info, err := os.Stat(event.Name)
	if err == nil && info.IsDir() {
		// Files may land in the new directory before it is watched.
		if err := n.watcher.Add(event.Name); err != nil {
			n.log.Debug().Err(err).Str("dir", event.Name).Msg("cannot watch directory")
		}
		n.watchTree(event.Name)
		for _, c := range rotation.Categories {
			pending[c] = true
		}
		return true
	}
	c, ok := n.patterns.Match(event.Name)
	if !ok {
		return false
	}
	n.log.Debug().Str("path", event.Name).Stringer("category", c).Msg("log file created")
	pending[c] = true
	return true
}
