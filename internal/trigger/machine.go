package trigger

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultEventBuffer = 16

// Markers are the substrings that drive detection.
type Markers struct {
	Statistics string
	Response   string
}

// DefaultMarkers returns the markers written by the producing application.
func DefaultMarkers() Markers {
	return Markers{
		Statistics: "Statistics",
		Response:   "<--- Response HTTPS",
	}
}

// Policy bounds the confirmation window: Attempts checks, Delay apart.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultPolicy waits five 50ms steps for more backend output.
func DefaultPolicy() Policy {
	return Policy{Attempts: 5, Delay: 50 * time.Millisecond}
}

// Window returns the total quiet period required to commit.
func (p Policy) Window() time.Duration {
	return time.Duration(p.Attempts) * p.Delay
}

// Source is the tailer a line came from.
type Source interface {
	Path() string
	// Ready reports whether more output arrived after the current line.
	Ready() (bool, error)
}

// Options configure a Machine.
type Options struct {
	Markers Markers
	Policy  Policy
	Logger  zerolog.Logger
	Now     func() time.Time
}

// Machine holds the detection flag and emits events in order.
type Machine struct {
	markers Markers
	policy  Policy
	log     zerolog.Logger
	now     func() time.Time
	events  chan Event

	// sendMu orders emissions. mu guards the flag and is never held across
	// a channel send.
	sendMu         sync.Mutex
	mu             sync.Mutex
	statisticsSeen bool
	resets         uint64
}

// New returns a Machine with the flag lowered.
func New(opts Options) *Machine {
	markers := opts.Markers
	if markers.Statistics == "" {
		markers.Statistics = DefaultMarkers().Statistics
	}
	if markers.Response == "" {
		markers.Response = DefaultMarkers().Response
	}
	policy := opts.Policy
	if policy.Attempts <= 0 || policy.Delay <= 0 {
		policy = DefaultPolicy()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Machine{
		markers: markers,
		policy:  policy,
		log:     opts.Logger.With().Str("component", "trigger").Logger(),
		now:     now,
		events:  make(chan Event, defaultEventBuffer),
	}
}

// Events returns the ordered event stream. The channel is never closed.
func (m *Machine) Events() <-chan Event {
	return m.events
}

// Flag reports whether statistics have been seen since the last trigger.
func (m *Machine) Flag() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statisticsSeen
}

// ResetFlag lowers the flag and reports whether it was raised.
func (m *Machine) ResetFlag() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	was := m.statisticsSeen
	m.statisticsSeen = false
	m.resets++
	return was
}

// HandleNetwork processes a line from the network category. It reports
// whether StatisticsFound was emitted.
func (m *Machine) HandleNetwork(ctx context.Context, src Source, line string) bool {
	if !strings.Contains(line, m.markers.Statistics) {
		return false
	}

	m.sendMu.Lock()
	defer m.sendMu.Unlock()
	gen, ok := m.commit(false, true)
	if !ok {
		return false
	}
	if !m.emit(ctx, Event{Kind: StatisticsFound, At: m.now(), Path: src.Path(), Line: line}) {
		m.rollback(gen, false)
		return false
	}
	m.log.Info().Str("path", src.Path()).Msg("statistics found")
	return true
}

// HandleBackend processes a line from the backend category. A response
// marker seen while the flag is raised starts the confirmation window; the
// call returns once the window commits or is abandoned, reporting whether
// ScreenshotTrigger was emitted.
func (m *Machine) HandleBackend(ctx context.Context, src Source, line string) bool {
	if !strings.Contains(line, m.markers.Response) {
		return false
	}
	if !m.Flag() {
		return false
	}

	log := m.log.With().Str("path", src.Path()).Logger()
	log.Debug().Str("line", line).Msg("response marker, confirming")

	if !m.confirm(ctx, src, log) {
		return false
	}

	m.sendMu.Lock()
	defer m.sendMu.Unlock()
	gen, ok := m.commit(true, false)
	if !ok {
		log.Debug().Msg("flag reset during confirmation")
		return false
	}
	if !m.emit(ctx, Event{Kind: ScreenshotTrigger, At: m.now(), Path: src.Path(), Line: line}) {
		m.rollback(gen, true)
		return false
	}
	log.Info().Msg("screenshot trigger")
	return true
}

// commit moves the flag from one value to another. It reports false when
// the flag did not hold from, plus the reset count seen at the change.
func (m *Machine) commit(from, to bool) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statisticsSeen != from {
		return 0, false
	}
	m.statisticsSeen = to
	return m.resets, true
}

// rollback restores the flag after a failed send unless ResetFlag ran since
// the commit.
func (m *Machine) rollback(gen uint64, value bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resets == gen {
		m.statisticsSeen = value
	}
}

// confirm reports whether the source stayed quiet for the whole window.
func (m *Machine) confirm(ctx context.Context, src Source, log zerolog.Logger) bool {
	timer := time.NewTimer(m.policy.Delay)
	defer timer.Stop()

	for attempt := 0; attempt < m.policy.Attempts; attempt++ {
		if attempt > 0 {
			timer.Reset(m.policy.Delay)
		}
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
		}

		ready, err := src.Ready()
		if err != nil {
			log.Warn().Err(err).Msg("confirmation aborted")
			return false
		}
		if ready {
			log.Debug().Int("attempt", attempt+1).Msg("more output during confirmation, ignoring marker")
			return false
		}
	}
	return ctx.Err() == nil
}

// emit sends ev and reports whether it was delivered. Callers hold sendMu.
func (m *Machine) emit(ctx context.Context, ev Event) bool {
	select {
	case m.events <- ev:
		return true
	case <-ctx.Done():
		m.log.Warn().Stringer("event", ev.Kind).Msg("event not delivered, flag unchanged")
		return false
	}
}
