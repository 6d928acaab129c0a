// Package state holds the snapshot shared between the engine side of
// eftwatch and its readers.
//
// # Overview
//
// Two producers feed the Store: the status refresher, which copies
// engine.Status at a fixed cadence, and the event dispatcher, which records
// every trigger event as it is written to stdout. The dashboard and the
// STATUS console command read it through Snapshot.
//
//	Refresher ──Update()──┐
//	                      ├──→ Store ──Snapshot()──→ dashboard, STATUS
//	Dispatcher ─Record()──┘
//
// # Concurrency Model
//
// A sync.RWMutex guards the snapshot. Update and Record take the write lock;
// Snapshot takes the read lock and returns copies of the monitor list and
// the event history, so callers may keep or modify what they get.
//
// # Event History
//
// Only the newest History events are kept (DefaultHistory when zero). This
// is a display aid, not a durable log: it starts empty on every run and is
// never replayed. Counters cover the whole run.
//
// The zero Store is ready to use.
package state
