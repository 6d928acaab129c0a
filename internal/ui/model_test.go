package ui

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/eftwatch/internal/engine"
	"github.com/five82/eftwatch/internal/monitor"
	"github.com/five82/eftwatch/internal/prefs"
	"github.com/five82/eftwatch/internal/rotation"
	"github.com/five82/eftwatch/internal/state"
	"github.com/five82/eftwatch/internal/trigger"
)

type fakeController struct {
	mu                       sync.Mutex
	resets, rescans, stopped int
}

func (f *fakeController) ResetFlag() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return true
}

func (f *fakeController) RequestRescan() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rescans++
}

func (f *fakeController) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

func newTestModel(t *testing.T, ctrl Controller, store *state.Store) Model {
	t.Helper()
	m := New(Options{
		Controller: ctrl,
		Store:      store,
		Prefs:      prefs.Default(),
		PrefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func press(t *testing.T, m Model, keys string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return next.(Model), cmd
}

func TestModel_KeysDriveController(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(t, ctrl, &state.Store{})

	m, _ = press(t, m, "x")
	assert.Equal(t, "statistics flag reset", m.notice)
	m, _ = press(t, m, "r")
	assert.Equal(t, "rescan requested", m.notice)

	m, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())

	assert.Equal(t, 1, ctrl.resets)
	assert.Equal(t, 1, ctrl.rescans)
	assert.Equal(t, 1, ctrl.stopped)
}

func TestModel_CycleThemeSavesPrefs(t *testing.T) {
	m := newTestModel(t, &fakeController{}, nil)
	require.Equal(t, "Nightfox", m.theme.Name)

	m, cmd := press(t, m, "t")
	assert.Equal(t, "Kanagawa", m.theme.Name)
	require.NotNil(t, cmd)
	msg := cmd()
	saved, ok := msg.(prefsSavedMsg)
	require.True(t, ok, "got %T", msg)
	require.NoError(t, saved.err)

	loaded, err := prefs.Load(m.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "Kanagawa", loaded.Theme)
}

func TestModel_RendersSnapshotAndPreview(t *testing.T) {
	dir := t.TempDir()
	backend := filepath.Join(dir, "backend_1.log")
	require.NoError(t, os.WriteFile(backend, []byte("first\nsecond\n<--- Response HTTPS: /client/match/end\n"), 0o644))

	var store state.Store
	store.Update(engine.Status{
		Root: dir,
		Flag: true,
		Monitors: []monitor.Status{
			{Category: rotation.Network, State: monitor.Idle},
			{Category: rotation.Backend, State: monitor.Tailing, Path: backend, Since: time.Now()},
		},
		ActiveTailers: 1,
	})
	store.Record(trigger.Event{Kind: trigger.StatisticsFound, At: time.Now()})
	store.Record(trigger.Event{Kind: trigger.ScreenshotTrigger, At: time.Now()})

	m := newTestModel(t, &fakeController{}, &store)
	next, _ := m.Update(fetchSnapshotCmd(&store)())
	m = next.(Model)
	next, _ = m.Update(previewCmd(m.snapshot, 2)())
	m = next.(Model)

	view := m.View()
	assert.Contains(t, view, dir)
	assert.Contains(t, view, "backend_1.log")
	assert.Contains(t, view, "armed")
	assert.Contains(t, view, "statistics 1  screenshots 1")

	body := m.renderBody()
	assert.Contains(t, body, "Screenshot")
	assert.Contains(t, body, "<--- Response HTTPS: /client/match/end")
	assert.NotContains(t, body, "first")
	assert.Less(t, strings.Index(body, "Screenshot"), strings.Index(body, "Statistics found"), "newest event first")
}

func TestModel_TogglePreview(t *testing.T) {
	m := newTestModel(t, &fakeController{}, nil)
	require.True(t, m.prefs.ShowPreview)

	m, _ = press(t, m, "p")
	assert.False(t, m.prefs.ShowPreview)
	assert.NotContains(t, m.renderBody(), "Tail of")

	m, _ = press(t, m, "p")
	assert.True(t, m.prefs.ShowPreview)
	assert.Contains(t, m.renderBody(), "Tail of backend")
}

func TestModel_HelpOverlay(t *testing.T) {
	m := newTestModel(t, &fakeController{}, nil)

	m, _ = press(t, m, "?")
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	// Any key closes help without acting.
	ctrl := m.ctrl.(*fakeController)
	m, _ = press(t, m, "x")
	assert.False(t, m.showHelp)
	assert.Zero(t, ctrl.resets)
}

func TestThemes(t *testing.T) {
	for _, name := range ThemeNames() {
		assert.Equal(t, name, GetTheme(name).Name)
	}
	assert.Equal(t, "Nightfox", GetTheme("missing").Name)
	assert.Equal(t, "Nightfox", NextTheme("Slate"))
	assert.Equal(t, "Nightfox", NextTheme("unknown"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
	assert.Equal(t, "abcdef", truncate("abcdef", 0))
}
