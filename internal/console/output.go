package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/five82/eftwatch/internal/trigger"
)

// Protocol lines written to stdout besides the trigger tokens.
const (
	TokenMonitoringStarted = "MONITORING_STARTED"
	TokenInvalidPath       = "ERROR_INVALID_PATH"
	TokenFlagReset         = "STATISTICS_FLAG_RESET"
)

// Output serializes writes to the protocol stream so that lines from the
// event dispatcher and the command loop never interleave.
type Output struct {
	mu sync.Mutex
	w  io.Writer
}

// NewOutput wraps w. A nil writer discards everything.
func NewOutput(w io.Writer) *Output {
	if w == nil {
		w = io.Discard
	}
	return &Output{w: w}
}

// Line writes a single protocol line.
func (o *Output) Line(s string) error {
	return o.Lines(s)
}

// Lines writes a block of lines without letting other writers in between.
func (o *Output) Lines(lines ...string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := io.WriteString(o.w, b.String()); err != nil {
		return fmt.Errorf("write protocol line: %w", err)
	}
	return nil
}

// Event writes the token for ev.
func (o *Output) Event(ev trigger.Event) error {
	return o.Line(ev.Kind.String())
}

// Started announces the watched directory.
func (o *Output) Started(dir string) error {
	return o.Line(TokenMonitoringStarted + ":" + dir)
}
