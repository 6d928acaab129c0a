// Package app is the composition root of eftwatch.
//
// Run loads the configuration, builds the logger, resolves the log
// directory, starts the engine and then runs, side by side:
//
//   - the event dispatcher, which writes each trigger token to stdout and
//     records it in the state store
//   - the status poller, which copies engine.Status into the store
//   - the control surface: the stdin console, or the dashboard with --tui
//
// It returns after the context is cancelled or a quit command arrives,
// giving the engine its configured grace period to stop.
//
// An unusable log directory prints ERROR_INVALID_PATH and fails; nothing
// else after startup terminates the process.
//
// Scan backs the scan subcommand: it lists candidate files per category
// without starting any monitoring.
package app
