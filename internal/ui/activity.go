package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/steward/internal/logtail"
)

const activityLines = 500

func loadActivityCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.Entries(path, activityLines)
		return activityMsg{entries: entries, err: err}
	}
}

func (m Model) renderActivityLines() string {
	if len(m.entries) == 0 {
		return m.theme.Styles().MutedText.Render("No activity yet")
	}
	styles := m.theme.Styles()
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		var b strings.Builder
		if !e.Time.IsZero() {
			b.WriteString(styles.FaintText.Render(e.Time.Local().Format("15:04:05")))
			b.WriteString(" ")
		}
		b.WriteString(m.levelStyle(e.Level).Render(fit(strings.ToUpper(e.Level), 5)))
		b.WriteString(" ")
		if e.Component != "" {
			b.WriteString(styles.AccentText.Render(e.Component))
			b.WriteString(" ")
		}
		b.WriteString(styles.Text.Render(e.Message))
		if fields := e.FieldString(); fields != "" {
			b.WriteString(" ")
			b.WriteString(styles.MutedText.Render(fields))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func (m Model) levelStyle(level string) lipgloss.Style {
	styles := m.theme.Styles()
	switch strings.ToLower(level) {
	case "error", "fatal", "panic":
		return styles.DangerText
	case "warn":
		return styles.WarningText
	case "debug", "trace":
		return styles.FaintText
	default:
		return styles.MutedText
	}
}

func (m Model) renderActivity() string {
	return m.renderTitledBox("Activity", m.activity.View(), m.width, m.bodyHeight(), true)
}
