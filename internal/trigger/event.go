package trigger

import (
	"fmt"
	"time"
)

// Kind identifies a trigger event.
type Kind int

const (
	StatisticsFound Kind = iota + 1
	ScreenshotTrigger
)

// String returns the token written to the trigger stream.
func (k Kind) String() string {
	switch k {
	case StatisticsFound:
		return "TRIGGER_NETLOG_STATISTICS"
	case ScreenshotTrigger:
		return "TRIGGER_SCREENSHOT"
	default:
		return fmt.Sprintf("TRIGGER_UNKNOWN_%d", int(k))
	}
}

// Label is the human readable name used in the dashboard.
func (k Kind) Label() string {
	switch k {
	case StatisticsFound:
		return "Statistics found"
	case ScreenshotTrigger:
		return "Screenshot"
	default:
		return "Unknown"
	}
}

// Event is a single detection. Path and Line record the file and the marker
// line that produced it.
type Event struct {
	Kind Kind
	At   time.Time
	Path string
	Line string
}
