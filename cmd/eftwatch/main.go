package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/eftwatch/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "eftwatch: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		opts   app.Options
		rescan time.Duration
	)

	root := &cobra.Command{
		Use:   "eftwatch [log-dir]",
		Short: "Watch rotating game logs and emit trigger events",
		Long: `eftwatch follows the newest network-connection and backend log files in a
directory tree and prints TRIGGER_NETLOG_STATISTICS and TRIGGER_SCREENSHOT on
stdout when a match ends. Commands are read from stdin: RESET_FLAG, REFRESH,
STATUS, EXIT.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.LogDir = args[0]
			}
			opts.Rescan = rescan
			opts.Stdin = cmd.InOrStdin()
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/eftwatch/config.toml)")

	root.Flags().BoolVar(&opts.Dashboard, "tui", false, "show the dashboard on stderr")
	root.Flags().StringVar(&opts.PrefsPath, "prefs", "", "dashboard preferences file (default ~/.config/eftwatch/prefs.toml)")
	root.Flags().StringVar(&opts.LogLevel, "log-level", "", "override log level (trace, debug, info, warn, error)")
	root.Flags().StringVar(&opts.LogFile, "log-file", "", "also write logs to this rotated file")
	root.Flags().DurationVar(&rescan, "rescan", 0, "periodic rescan interval (default 1m)")

	root.AddCommand(newScanCmd(&opts.ConfigPath))
	return root
}

func newScanCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [log-dir]",
		Short: "List candidate log files and the ones that would be monitored",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.ScanOptions{ConfigPath: *configPath, Out: cmd.OutOrStdout()}
			if len(args) == 1 {
				opts.LogDir = args[0]
			}
			return app.Scan(opts)
		},
	}
}
