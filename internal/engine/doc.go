// Package engine runs the log watching core: one monitor per category, the
// trigger state machine, the directory notifier and the periodic rescan.
//
// # Control Surface
//
// Engine exposes the operations a front end needs:
//
//   - ResetFlag: lower the statistics flag
//   - RequestRescan: rescan both categories now
//   - Status: current file per category, flag state, running tailers
//   - Shutdown and Wait: cooperative stop with a bounded grace period
//
// Trigger events are read from Events.
//
// # Goroutines
//
// Start launches the monitor loops, a rescan loop ticking at RescanInterval
// (also woken by RequestRescan), and the fsnotify notifier when it can be
// created. Without the notifier the rescan loop alone still catches every
// rotation, just later.
package engine
