package app

import (
	"context"
	"time"

	"github.com/five82/eftwatch/internal/engine"
	"github.com/five82/eftwatch/internal/state"
)

const defaultPollInterval = 500 * time.Millisecond

type statusSource interface {
	Status() engine.Status
}

// pollStatus copies the engine status into the store at a fixed cadence
// until ctx is done.
func pollStatus(ctx context.Context, store *state.Store, src statusSource, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		store.Update(src.Status())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
