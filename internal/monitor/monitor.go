package monitor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/eftwatch/internal/logtail"
	"github.com/five82/eftwatch/internal/rotation"
)

const defaultPollInterval = 100 * time.Millisecond

// ErrNotStarted is returned by Offer before Start or after shutdown.
var ErrNotStarted = errors.New("monitor not running")

// State is the monitor's lifecycle state.
type State int

const (
	Idle State = iota
	Tailing
)

func (s State) String() string {
	if s == Tailing {
		return "tailing"
	}
	return "idle"
}

// Handler receives every line appended to the current file, in file order.
// ctx is cancelled when the tailer is replaced or stopped.
type Handler func(ctx context.Context, t *logtail.Tailer, line string)

// Finder locates the newest candidate for a category.
type Finder interface {
	Latest(c rotation.Category) (rotation.Candidate, error)
}

// Options configure a Monitor.
type Options struct {
	Category     rotation.Category
	Finder       Finder
	Handler      Handler
	PollInterval time.Duration
	Registry     *Registry
	Logger       zerolog.Logger

	// Open and Exists default to logtail.Open and os.Stat.
	Open   func(path string) (*logtail.Tailer, error)
	Exists func(path string) bool
}

// Status is a point-in-time view of a monitor.
type Status struct {
	Category  rotation.Category
	State     State
	Path      string
	CreatedAt time.Time
	Since     time.Time
}

type session struct {
	id     uint64
	cand   rotation.Candidate
	info   fs.FileInfo
	since  time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

// Monitor owns the tailer for one category.
type Monitor struct {
	category rotation.Category
	finder   Finder
	handler  Handler
	poll     time.Duration
	registry *Registry
	log      zerolog.Logger
	open     func(string) (*logtail.Tailer, error)
	exists   func(string) bool

	vanished chan *session
	loopDone chan struct{}

	// mu serializes replacements and guards ctx and current.
	mu      sync.Mutex
	ctx     context.Context
	current *session
}

// New returns an idle Monitor.
func New(opts Options) *Monitor {
	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	open := opts.Open
	if open == nil {
		open = logtail.Open
	}
	exists := opts.Exists
	if exists == nil {
		exists = fileExists
	}
	handler := opts.Handler
	if handler == nil {
		handler = func(context.Context, *logtail.Tailer, string) {}
	}
	return &Monitor{
		category: opts.Category,
		finder:   opts.Finder,
		handler:  handler,
		poll:     poll,
		registry: registry,
		log:      opts.Logger.With().Str("component", "monitor").Stringer("category", opts.Category).Logger(),
		open:     open,
		exists:   exists,
		vanished: make(chan *session, 4),
		loopDone: make(chan struct{}),
	}
}

// Category returns the category this monitor follows.
func (m *Monitor) Category() rotation.Category {
	return m.category
}

// Start launches the monitor loop. Tailers live until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	m.ctx = ctx
	m.mu.Unlock()
	go m.loop(ctx)
}

// Done is closed once the loop and its last tailer have stopped.
func (m *Monitor) Done() <-chan struct{} {
	return m.loopDone
}

// Offer proposes a candidate file. It reports whether the monitor switched
// to it. An error means the candidate could not be opened; the current
// tailer, if any, keeps running.
func (m *Monitor) Offer(cand rotation.Candidate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx == nil || m.ctx.Err() != nil {
		return false, ErrNotStarted
	}

	if m.isCurrent(cand) {
		m.current.cand.CreatedAt = cand.CreatedAt
		return false, nil
	}

	var cur *rotation.Candidate
	exists := false
	if m.current != nil {
		c := m.current.cand
		cur = &c
		exists = m.exists(c.Path)
	}
	if !rotation.ShouldReplace(cur, exists, cand) {
		return false, nil
	}

	t, err := m.open(cand.Path)
	if err != nil {
		return false, fmt.Errorf("open %s log: %w", m.category, err)
	}

	if old := m.current; old != nil {
		old.cancel()
		<-old.done
		m.log.Info().Str("old", old.cand.Path).Str("new", cand.Path).Msg("switching log file")
	}

	ctx, cancel := context.WithCancel(m.ctx)
	s := &session{
		id:     m.registry.nextID(),
		cand:   cand,
		info:   t.Info(),
		since:  time.Now(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.current = s
	go m.tail(ctx, s, t)
	return true, nil
}

// isCurrent reports whether cand names the file already being tailed. A
// timestamp that moved, as a modification time does, is not a new file.
// Must be called with mu held.
func (m *Monitor) isCurrent(cand rotation.Candidate) bool {
	if m.current == nil || m.current.cand.Path != cand.Path || m.current.info == nil {
		return false
	}
	info, err := os.Stat(cand.Path)
	if err != nil {
		return false
	}
	return os.SameFile(info, m.current.info)
}

// Rescan selects the newest file for the category and offers it. A category
// without files leaves the monitor as it is.
func (m *Monitor) Rescan() (bool, error) {
	cand, err := m.finder.Latest(m.category)
	if err != nil {
		if errors.Is(err, rotation.ErrNoCandidate) {
			m.log.Info().Msg("no log file yet")
			return false, nil
		}
		return false, fmt.Errorf("scan %s logs: %w", m.category, err)
	}
	return m.Offer(cand)
}

// Current returns the file being tailed.
func (m *Monitor) Current() (rotation.Candidate, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return rotation.Candidate{}, false
	}
	return m.current.cand, true
}

// Status reports the monitor state.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Status{Category: m.category, State: Idle}
	if m.current != nil {
		st.State = Tailing
		st.Path = m.current.cand.Path
		st.CreatedAt = m.current.cand.CreatedAt
		st.Since = m.current.since
	}
	return st
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.loopDone)
	for {
		select {
		case <-ctx.Done():
			m.stop()
			return
		case s := <-m.vanished:
			if !m.release(s) {
				continue
			}
			m.log.Info().Str("path", s.cand.Path).Msg("current log ended, looking for a replacement")
			if _, err := m.Rescan(); err != nil {
				m.log.Warn().Err(err).Msg("rescan after log ended failed")
			}
		}
	}
}

// release moves the monitor to Idle if s is still current.
func (m *Monitor) release(s *session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != s {
		return false
	}
	s.cancel()
	m.current = nil
	return true
}

func (m *Monitor) stop() {
	m.mu.Lock()
	s := m.current
	m.current = nil
	m.mu.Unlock()
	if s != nil {
		s.cancel()
		<-s.done
	}
}

func (m *Monitor) tail(ctx context.Context, s *session, t *logtail.Tailer) {
	defer close(s.done)
	defer t.Close()

	m.registry.add(Entry{ID: s.id, Category: m.category, Path: s.cand.Path, Started: s.since})
	defer m.registry.remove(s.id)

	log := m.log.With().Str("path", s.cand.Path).Logger()
	log.Info().Int64("offset", t.Offset()).Msg("tailing log")

	err := m.follow(ctx, t)
	switch {
	case ctx.Err() != nil:
		log.Debug().Msg("tailer stopped")
		return
	case errors.Is(err, logtail.ErrFileVanished):
		log.Info().Msg("log file no longer exists")
	default:
		log.Warn().Err(err).Msg("log read failed")
	}

	select {
	case m.vanished <- s:
	case <-ctx.Done():
	}
}

// follow reads lines until the file ends, a fault occurs or ctx is done.
func (m *Monitor) follow(ctx context.Context, t *logtail.Tailer) error {
	timer := time.NewTimer(m.poll)
	defer timer.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := t.Next()
		switch {
		case err == nil:
			m.handler(ctx, t, line)
		case errors.Is(err, logtail.ErrNoLine):
			timer.Reset(m.poll)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		default:
			return err
		}
	}
}

// fileExists treats stat failures other than a missing path as present so a
// transient error never forces a switch.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
