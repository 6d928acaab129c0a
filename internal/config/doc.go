// Package config loads eftwatch settings and finds the directory to watch.
//
// # Configuration File
//
// Settings live in ~/.config/eftwatch/config.toml unless another path is
// given. Every key is optional and a missing file means defaults:
//
//	log_dir               = "~/Games/EFT/Logs"
//	network_pattern       = "network-connection"
//	backend_pattern       = "backend"
//	extension             = ".log"
//	statistics_marker     = "Statistics"
//	response_marker       = "<--- Response HTTPS"
//	rescan_interval       = "1m"
//	network_poll_interval = "100ms"
//	backend_poll_interval = "50ms"
//	confirm_attempts      = 5
//	confirm_delay         = "50ms"
//	shutdown_grace        = "2s"
//	log_level             = "info"     # trace, debug, info, warn, error
//	log_format            = "console"  # console or json
//	log_file              = ""         # rotated with lumberjack when set
//	theme                 = ""         # dashboard theme, overrides the saved one
//
// Durations use Go duration syntax. Loaded values are checked with
// go-playground/validator; the first failing field is reported.
//
// # Log Directory Discovery
//
// ResolveLogDir walks this order and stops at the first hit:
//
//  1. The command-line argument
//  2. log_dir from the config file
//  3. eft_logs_path.txt beside the executable, then in its parent directory
//  4. Common install locations (C:, D: and E: Battlestate Games folders)
//
// An explicit choice (1 or 2) that is not a directory fails with
// ErrInvalidLogDir instead of falling through. Tilde expansion applies to
// every path.
package config
