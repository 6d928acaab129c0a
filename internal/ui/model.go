package ui

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/eftwatch/internal/logtail"
	"github.com/five82/eftwatch/internal/prefs"
	"github.com/five82/eftwatch/internal/rotation"
	"github.com/five82/eftwatch/internal/state"
)

const (
	defaultTick = time.Second
	eventRows   = 8
	// header, blank, four summary lines, blank, footer
	chromeLines = 8
)

// Controller is the part of the engine the dashboard drives.
type Controller interface {
	ResetFlag() bool
	RequestRescan()
	Shutdown()
}

// Options configures the dashboard.
type Options struct {
	Controller Controller
	Store      *state.Store
	Prefs      prefs.Prefs
	PrefsPath  string
	// ThemeName overrides Prefs.Theme when set.
	ThemeName string
	Tick      time.Duration
	// Output defaults to os.Stderr; stdout carries the trigger stream.
	Output io.Writer
	Logger zerolog.Logger
}

// Model is the root dashboard state for Bubble Tea.
type Model struct {
	ctrl      Controller
	store     *state.Store
	prefs     prefs.Prefs
	prefsPath string
	tick      time.Duration
	log       zerolog.Logger

	keys     keyMap
	help     help.Model
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	quitting bool

	snapshot state.Snapshot
	preview  map[rotation.Category][]string
	notice   string
	viewport viewport.Model
}

// New creates the dashboard model.
func New(opts Options) Model {
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}
	p := opts.Prefs
	if opts.ThemeName != "" {
		p.Theme = opts.ThemeName
	}
	if p.PreviewLines <= 0 {
		p.PreviewLines = prefs.Default().PreviewLines
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	theme := GetTheme(p.Theme)
	p.Theme = theme.Name

	return Model{
		ctrl:      opts.Controller,
		store:     opts.Store,
		prefs:     p,
		prefsPath: prefsPath,
		tick:      tick,
		log:       opts.Logger,
		keys:      defaultKeyMap(),
		help:      help.New(),
		theme:     theme,
		preview:   make(map[rotation.Category][]string),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		height := max(msg.Height-chromeLines, 3)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.refreshViewport()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.tick)}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		if m.prefs.ShowPreview {
			cmds = append(cmds, previewCmd(m.snapshot, m.prefs.PreviewLines))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.refreshViewport()
		return m, nil

	case previewMsg:
		m.preview = msg
		m.refreshViewport()
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("save dashboard preferences")
			m.notice = "could not save preferences"
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.ctrl != nil {
			m.ctrl.Shutdown()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.ResetFlag):
		if m.ctrl != nil {
			m.ctrl.ResetFlag()
		}
		m.notice = "statistics flag reset"
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil

	case key.Matches(msg, m.keys.Rescan):
		if m.ctrl != nil {
			m.ctrl.RequestRescan()
		}
		m.notice = "rescan requested"
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.notice = "theme: " + m.theme.Name
		m.refreshViewport()
		return m, savePrefsCmd(m.prefsPath, m.prefs)

	case key.Matches(msg, m.keys.TogglePreview):
		m.prefs.ShowPreview = !m.prefs.ShowPreview
		if !m.prefs.ShowPreview {
			m.preview = make(map[rotation.Category][]string)
		}
		m.refreshViewport()
		cmds := []tea.Cmd{savePrefsCmd(m.prefsPath, m.prefs)}
		if m.prefs.ShowPreview {
			cmds = append(cmds, previewCmd(m.snapshot, m.prefs.PreviewLines))
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderBody())
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type previewMsg map[rotation.Category][]string

type prefsSavedMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func previewCmd(snap state.Snapshot, lines int) tea.Cmd {
	paths := make(map[rotation.Category]string)
	for _, c := range rotation.Categories {
		if p := snap.Status.Current(c); p != "" {
			paths[c] = p
		}
	}
	return func() tea.Msg {
		out := make(previewMsg, len(paths))
		for c, p := range paths {
			tail, err := logtail.Read(p, lines)
			if err != nil {
				// Rotation may remove the file between snapshot and read.
				continue
			}
			out[c] = tail
		}
		return out
	}
}

func savePrefsCmd(path string, p prefs.Prefs) tea.Cmd {
	return func() tea.Msg {
		return prefsSavedMsg{err: prefs.Save(path, p)}
	}
}

// Run starts the dashboard and blocks until it quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	p := tea.NewProgram(New(opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(out),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
