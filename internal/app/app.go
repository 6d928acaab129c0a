package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/five82/eftwatch/internal/config"
	"github.com/five82/eftwatch/internal/console"
	"github.com/five82/eftwatch/internal/engine"
	"github.com/five82/eftwatch/internal/logging"
	"github.com/five82/eftwatch/internal/prefs"
	"github.com/five82/eftwatch/internal/rotation"
	"github.com/five82/eftwatch/internal/state"
	"github.com/five82/eftwatch/internal/trigger"
	"github.com/five82/eftwatch/internal/ui"
)

// Options configure the eftwatch application. Zero values defer to the
// config file.
type Options struct {
	ConfigPath string
	PrefsPath  string
	// LogDir is the directory given on the command line.
	LogDir    string
	Dashboard bool
	LogLevel  string
	LogFile   string
	Rescan    time.Duration

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (o *Options) defaults() {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// Run watches the log directory until the context is cancelled or a quit
// command arrives.
func Run(ctx context.Context, opts Options) error {
	opts.defaults()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Writer: opts.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closer.Close()
	log := logging.Component(logger, "app")

	out := console.NewOutput(protocolWriter(opts))

	root, err := config.ResolveLogDir(opts.LogDir, cfg)
	if err != nil {
		_ = out.Line(console.TokenInvalidPath)
		return err
	}

	eng, err := engine.New(engine.Options{
		Root: root,
		Patterns: rotation.Patterns{
			Network:   cfg.NetworkPattern,
			Backend:   cfg.BackendPattern,
			Extension: cfg.Extension,
		},
		Markers: trigger.Markers{
			Statistics: cfg.StatisticsMarker,
			Response:   cfg.ResponseMarker,
		},
		Policy:         trigger.Policy{Attempts: cfg.ConfirmAttempts, Delay: cfg.ConfirmDelay},
		RescanInterval: cfg.RescanInterval,
		NetworkPoll:    cfg.NetworkPollInterval,
		BackendPoll:    cfg.BackendPollInterval,
		Logger:         logger,
	})
	if err != nil {
		_ = out.Line(console.TokenInvalidPath)
		return fmt.Errorf("%w: %w", config.ErrInvalidLogDir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("start monitoring: %w", err)
	}
	if err := out.Started(root); err != nil {
		log.Warn().Err(err).Msg("announce start")
	}

	store := &state.Store{}
	var wg sync.WaitGroup
	wg.Go(func() { dispatch(ctx, eng.Events(), out, store, log) })
	wg.Go(func() { pollStatus(ctx, store, eng, defaultPollInterval) })

	if opts.Dashboard {
		userPrefs, err := prefs.Load(opts.PrefsPath)
		if err != nil {
			log.Warn().Err(err).Msg("dashboard prefs unreadable, using defaults")
		}
		wg.Go(func() {
			err := ui.Run(ctx, ui.Options{
				Controller: eng,
				Store:      store,
				Prefs:      userPrefs,
				PrefsPath:  opts.PrefsPath,
				ThemeName:  cfg.Theme,
				Output:     opts.Stderr,
				Logger:     logging.Component(logger, "ui"),
			})
			if err != nil {
				log.Error().Err(err).Msg("dashboard stopped")
			}
			eng.Shutdown()
		})
	} else {
		wg.Go(func() {
			err := console.Run(ctx, console.Options{
				In:         opts.Stdin,
				Out:        out,
				Controller: eng,
				Store:      store,
				Logger:     logging.Component(logger, "console"),
			})
			if err != nil {
				log.Error().Err(err).Msg("console stopped")
			}
		})
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("interrupted")
	case <-eng.Stopping():
	}

	eng.Shutdown()
	if err := eng.Wait(cfg.ShutdownGrace); err != nil {
		log.Warn().Err(err).Dur("grace", cfg.ShutdownGrace).Msg("shutdown incomplete")
	}
	cancel()
	wg.Wait()
	return nil
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(opts.LogLevel)
	}
	if opts.LogFile != "" {
		cfg.LogFile = opts.LogFile
	}
	if opts.Rescan > 0 {
		cfg.RescanInterval = opts.Rescan
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// protocolWriter returns where trigger tokens go. The dashboard owns the
// terminal, so tokens are dropped when stdout is the same terminal.
func protocolWriter(opts Options) io.Writer {
	if opts.Dashboard && isTerminal(opts.Stdout) {
		return nil
	}
	return opts.Stdout
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// dispatch forwards trigger events to the protocol stream and the store in
// emission order. Events already queued at shutdown are still written.
func dispatch(ctx context.Context, events <-chan trigger.Event, out *console.Output, store *state.Store, log zerolog.Logger) {
	for {
		select {
		case ev := <-events:
			deliver(ev, out, store, log)
		case <-ctx.Done():
			for {
				select {
				case ev := <-events:
					deliver(ev, out, store, log)
				default:
					return
				}
			}
		}
	}
}

func deliver(ev trigger.Event, out *console.Output, store *state.Store, log zerolog.Logger) {
	store.Record(ev)
	if err := out.Event(ev); err != nil && !errors.Is(err, os.ErrClosed) {
		log.Error().Err(err).Stringer("event", ev.Kind).Msg("write trigger")
		return
	}
	log.Info().Stringer("event", ev.Kind).Str("path", ev.Path).Msg("trigger emitted")
}
