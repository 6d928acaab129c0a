package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/eftwatch/internal/monitor"
	"github.com/five82/eftwatch/internal/rotation"
	"github.com/five82/eftwatch/internal/trigger"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderSummary())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	root := m.snapshot.Status.Root
	if root == "" {
		root = "waiting for engine status"
	}
	left := styles.Logo.Render("eftwatch") + styles.Header.Render(root)
	if m.notice != "" {
		left += styles.Header.Render("· " + m.notice)
	}
	return left
}

func (m Model) renderSummary() string {
	styles := m.theme.Styles()
	st := m.snapshot.Status

	lines := make([]string, 0, 4)
	for _, c := range rotation.Categories {
		lines = append(lines, m.monitorLine(st.Monitors, c))
	}

	flag := styles.Badge("waiting")
	if st.Flag {
		flag = styles.Badge("armed")
	}
	lines = append(lines, fmt.Sprintf("%s %s  %s",
		styles.MutedText.Render("flag"),
		flag,
		styles.MutedText.Render(fmt.Sprintf("tailers %d", st.ActiveTailers)),
	))

	counts := fmt.Sprintf("statistics %d  screenshots %d", m.snapshot.Statistics, m.snapshot.Screenshots)
	if !m.snapshot.LastEvent.IsZero() {
		counts += "  last " + m.snapshot.LastEvent.Format(time.TimeOnly)
	}
	lines = append(lines, styles.MutedText.Render(counts))
	return strings.Join(lines, "\n")
}

func (m Model) monitorLine(statuses []monitor.Status, c rotation.Category) string {
	styles := m.theme.Styles()
	label := styles.Text.Width(9).Render(c.String())
	for _, s := range statuses {
		if s.Category != c {
			continue
		}
		if s.State != monitor.Tailing {
			break
		}
		since := ""
		if !s.Since.IsZero() {
			since = styles.FaintText.Render(" since " + s.Since.Format(time.TimeOnly))
		}
		return label + styles.Badge("tailing") + " " + styles.Text.Render(filepath.Base(s.Path)) + since
	}
	return label + styles.Badge("idle") + " " + styles.FaintText.Render("no file")
}

func (m Model) renderBody() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Section.Render("Recent events"))
	b.WriteString("\n")
	recent := m.snapshot.Recent(eventRows)
	if len(recent) == 0 {
		b.WriteString(styles.FaintText.Render("none yet"))
		b.WriteString("\n")
	}
	for _, ev := range recent {
		b.WriteString(m.eventLine(ev))
		b.WriteString("\n")
	}

	if !m.prefs.ShowPreview {
		return b.String()
	}
	for _, c := range rotation.Categories {
		b.WriteString("\n")
		b.WriteString(styles.Section.Render("Tail of " + c.String()))
		b.WriteString("\n")
		lines := m.preview[c]
		if len(lines) == 0 {
			b.WriteString(styles.FaintText.Render("nothing to show"))
			b.WriteString("\n")
			continue
		}
		for _, l := range lines {
			b.WriteString(styles.MutedText.Render(truncate(l, m.width)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) eventLine(ev trigger.Event) string {
	styles := m.theme.Styles()
	badge := "statistics"
	if ev.Kind == trigger.ScreenshotTrigger {
		badge = "screenshot"
	}
	return fmt.Sprintf("%s %s %s",
		styles.FaintText.Render(ev.At.Format(time.TimeOnly)),
		styles.Badge(badge),
		styles.Text.Render(ev.Kind.Label()),
	)
}

func (m Model) renderFooter() string {
	return m.theme.Styles().Footer.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func truncate(s string, width int) string {
	if width <= 1 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
