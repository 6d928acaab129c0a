// Package console implements the line protocol spoken with the parent
// process: trigger tokens on stdout and commands on stdin.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/five82/eftwatch/internal/engine"
	"github.com/five82/eftwatch/internal/rotation"
	"github.com/five82/eftwatch/internal/state"
)

// Commands accepted on stdin.
const (
	CmdResetFlag = "RESET_FLAG"
	CmdRefresh   = "REFRESH"
	CmdStatus    = "STATUS"
	CmdExit      = "EXIT"
	CmdQuit      = "QUIT"
)

// Controller is the part of the engine the console drives.
type Controller interface {
	ResetFlag() bool
	RequestRescan()
	Status() engine.Status
	Shutdown()
}

// Options configure Run.
type Options struct {
	In         io.Reader
	Out        *Output
	Controller Controller
	// Store adds event counters to STATUS when set.
	Store  *state.Store
	Logger zerolog.Logger
}

// Run reads commands until EXIT or QUIT, end of input, or ctx is done. End of
// input leaves monitoring running; only an explicit command or a signal stops
// the process.
func Run(ctx context.Context, opts Options) error {
	if opts.Controller == nil {
		return fmt.Errorf("console: controller is required")
	}
	if opts.Out == nil {
		opts.Out = NewOutput(nil)
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(opts.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				opts.Logger.Warn().Err(err).Msg("stdin read failed; commands disabled")
				return nil
			}
			opts.Logger.Debug().Msg("stdin closed; commands disabled")
			return nil
		case line := <-lines:
			if exit := handle(opts, line); exit {
				return nil
			}
		}
	}
}

func handle(opts Options, line string) bool {
	cmd := strings.ToUpper(strings.TrimSpace(line))
	switch cmd {
	case "":
		return false
	case CmdResetFlag:
		opts.Controller.ResetFlag()
		write(opts, opts.Out.Line(TokenFlagReset))
	case CmdRefresh:
		opts.Logger.Info().Msg("manual refresh requested")
		opts.Controller.RequestRescan()
	case CmdStatus:
		write(opts, opts.Out.Lines(StatusLines(opts.Controller.Status(), opts.Store)...))
	case CmdExit, CmdQuit:
		opts.Logger.Info().Str("command", cmd).Msg("shutting down")
		opts.Controller.Shutdown()
		return true
	default:
		opts.Logger.Warn().Str("command", strings.TrimSpace(line)).Msg("unknown command ignored")
	}
	return false
}

func write(opts Options, err error) {
	if err != nil {
		opts.Logger.Error().Err(err).Msg("protocol write failed")
	}
}

// StatusLines renders the STATUS block.
func StatusLines(st engine.Status, store *state.Store) []string {
	lines := []string{
		"==== eftwatch status ====",
		"Log Folder: " + st.Root,
		fmt.Sprintf("Statistics Flag: %t", st.Flag),
	}
	for _, c := range rotation.Categories {
		path := st.Current(c)
		if path == "" {
			path = "None"
		}
		lines = append(lines, fmt.Sprintf("Current %s log: %s", c, path))
	}
	lines = append(lines, fmt.Sprintf("Active Tailers: %d", st.ActiveTailers))
	if store != nil {
		snap := store.Snapshot()
		lines = append(lines, fmt.Sprintf("Events: %d statistics, %d screenshots", snap.Statistics, snap.Screenshots))
	}
	return append(lines, "=========================")
}
