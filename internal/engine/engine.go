package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/eftwatch/internal/logtail"
	"github.com/five82/eftwatch/internal/monitor"
	"github.com/five82/eftwatch/internal/rotation"
	"github.com/five82/eftwatch/internal/trigger"
	"github.com/five82/eftwatch/internal/watch"
)

const (
	defaultRescanInterval = time.Minute
	defaultNetworkPoll    = 100 * time.Millisecond
	defaultBackendPoll    = 50 * time.Millisecond
)

var (
	// ErrRootUnavailable means the watched directory cannot be used.
	ErrRootUnavailable = errors.New("log directory unavailable")
	// ErrShutdownTimeout means goroutines were still running after the grace period.
	ErrShutdownTimeout = errors.New("shutdown grace period exceeded")
)

// Options configure an Engine.
type Options struct {
	Root           string
	Patterns       rotation.Patterns
	Markers        trigger.Markers
	Policy         trigger.Policy
	RescanInterval time.Duration
	NetworkPoll    time.Duration
	BackendPoll    time.Duration
	Logger         zerolog.Logger

	// Finder overrides the directory scanner. Tests use it to control
	// creation times.
	Finder monitor.Finder
	// DisableNotifier runs on periodic rescans only.
	DisableNotifier bool
}

// Status is a snapshot of the engine for status queries.
type Status struct {
	Root          string
	Flag          bool
	Monitors      []monitor.Status
	ActiveTailers int
	StartedAt     time.Time
}

// Current returns the path tailed for category c, or "" when idle.
func (s Status) Current(c rotation.Category) string {
	for _, m := range s.Monitors {
		if m.Category == c {
			return m.Path
		}
	}
	return ""
}

// Engine ties the monitors to the trigger state machine.
type Engine struct {
	opts     Options
	log      zerolog.Logger
	machine  *trigger.Machine
	registry *monitor.Registry
	monitors []*monitor.Monitor
	rescan   chan struct{}

	wg        sync.WaitGroup
	mu        sync.Mutex
	cancel    context.CancelFunc
	stopping  chan struct{}
	startedAt time.Time
}

// New validates the root directory and builds an idle engine.
func New(opts Options) (*Engine, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootUnavailable, opts.Root)
	}

	if opts.Patterns == (rotation.Patterns{}) {
		opts.Patterns = rotation.DefaultPatterns()
	}
	if opts.RescanInterval <= 0 {
		opts.RescanInterval = defaultRescanInterval
	}
	if opts.NetworkPoll <= 0 {
		opts.NetworkPoll = defaultNetworkPoll
	}
	if opts.BackendPoll <= 0 {
		opts.BackendPoll = defaultBackendPoll
	}
	finder := opts.Finder
	if finder == nil {
		finder = rotation.NewScanner(opts.Root, opts.Patterns)
	}

	e := &Engine{
		opts:     opts,
		log:      opts.Logger.With().Str("component", "engine").Logger(),
		registry: monitor.NewRegistry(),
		rescan:   make(chan struct{}, 1),
		stopping: make(chan struct{}),
	}
	e.machine = trigger.New(trigger.Options{
		Markers: opts.Markers,
		Policy:  opts.Policy,
		Logger:  opts.Logger,
	})

	e.monitors = []*monitor.Monitor{
		monitor.New(monitor.Options{
			Category:     rotation.Network,
			Finder:       finder,
			PollInterval: opts.NetworkPoll,
			Registry:     e.registry,
			Logger:       opts.Logger,
			Handler: func(ctx context.Context, t *logtail.Tailer, line string) {
				e.machine.HandleNetwork(ctx, t, line)
			},
		}),
		monitor.New(monitor.Options{
			Category:     rotation.Backend,
			Finder:       finder,
			PollInterval: opts.BackendPoll,
			Registry:     e.registry,
			Logger:       opts.Logger,
			Handler: func(ctx context.Context, t *logtail.Tailer, line string) {
				e.machine.HandleBackend(ctx, t, line)
			},
		}),
	}
	return e, nil
}

// Root returns the watched directory.
func (e *Engine) Root() string {
	return e.opts.Root
}

// Events returns the trigger event stream.
func (e *Engine) Events() <-chan trigger.Event {
	return e.machine.Events()
}

// Start performs the initial selection and launches the background work.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.cancel != nil {
		e.mu.Unlock()
		return errors.New("engine already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.startedAt = time.Now()
	e.mu.Unlock()

	e.log.Info().Str("root", e.opts.Root).Msg("starting monitoring")

	for _, m := range e.monitors {
		m.Start(ctx)
	}
	e.rescanAll()

	e.wg.Go(func() { e.rescanLoop(ctx) })

	if !e.opts.DisableNotifier {
		n, err := watch.New(watch.Options{Root: e.opts.Root, Patterns: e.opts.Patterns, Logger: e.opts.Logger})
		if err != nil {
			e.log.Warn().Err(err).Msg("directory notifications unavailable, relying on periodic rescans")
		} else {
			e.wg.Go(func() { n.Run(ctx, e.onChange) })
		}
	}

	go func() {
		<-ctx.Done()
		close(e.stopping)
	}()
	return nil
}

// Stopping is closed once shutdown has begun.
func (e *Engine) Stopping() <-chan struct{} {
	return e.stopping
}

// ResetFlag lowers the statistics flag. It reports whether it was raised.
func (e *Engine) ResetFlag() bool {
	was := e.machine.ResetFlag()
	e.log.Info().Bool("was_set", was).Msg("statistics flag reset")
	return was
}

// RequestRescan asks the rescan loop to scan now. Requests made while one is
// pending are merged.
func (e *Engine) RequestRescan() {
	select {
	case e.rescan <- struct{}{}:
	default:
	}
}

// Status returns the current state.
func (e *Engine) Status() Status {
	st := Status{
		Root:          e.opts.Root,
		Flag:          e.machine.Flag(),
		ActiveTailers: e.registry.Count(),
	}
	for _, m := range e.monitors {
		st.Monitors = append(st.Monitors, m.Status())
	}
	e.mu.Lock()
	st.StartedAt = e.startedAt
	e.mu.Unlock()
	return st
}

// Shutdown begins a cooperative stop. It does not wait.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until every goroutine has stopped or grace has elapsed.
func (e *Engine) Wait(grace time.Duration) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		for _, m := range e.monitors {
			<-m.Done()
		}
		close(done)
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
		e.log.Info().Msg("monitoring stopped")
		return nil
	case <-timer.C:
		return ErrShutdownTimeout
	}
}

func (e *Engine) rescanLoop(ctx context.Context) {
	ticker := time.NewTicker(e.opts.RescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-e.rescan:
			e.log.Info().Msg("manual rescan")
		}
		e.rescanAll()
	}
}

func (e *Engine) rescanAll() {
	for _, m := range e.monitors {
		e.rescanOne(m)
	}
}

func (e *Engine) onChange(c rotation.Category) {
	for _, m := range e.monitors {
		if m.Category() == c {
			e.rescanOne(m)
		}
	}
}

func (e *Engine) rescanOne(m *monitor.Monitor) {
	switched, err := m.Rescan()
	switch {
	case errors.Is(err, monitor.ErrNotStarted):
	case err != nil:
		e.log.Warn().Err(err).Stringer("category", m.Category()).Msg("rescan failed")
	case switched:
		cur, _ := m.Current()
		e.log.Info().Stringer("category", m.Category()).Str("path", cur.Path).Msg("now monitoring")
	}
}
