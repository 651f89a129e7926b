package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/steward/internal/table"
)

// chromeHeight is the header, status line and command bar.
const chromeHeight = 3

func (m Model) bodyHeight() int {
	return max(m.height-chromeHeight, 3)
}

// renderHeader shows the screen tabs and the backend's health.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := newBgStyle(m.theme.Surface)

	parts := []string{bg.render("steward", styles.AccentText)}
	for i, s := range m.screens {
		style := styles.MutedText
		if i == m.active {
			style = styles.Text.Bold(true).Underline(true)
		}
		parts = append(parts, bg.render(s.title(), style))
	}
	if m.store != nil && m.store.Offline() {
		parts = append(parts, bg.render("● OFFLINE", styles.DangerText))
	}
	return bg.fill(bg.join(parts, "  "), m.width)
}

func (m Model) renderScreen() string {
	v := m.current().view()
	title := v.Title
	if v.Meta.TotalItems > 0 {
		title = fmt.Sprintf("%s (%d)", v.Title, v.Meta.TotalItems)
	}
	if v.Filter != "All" {
		title += " · " + v.Filter
	}
	height := m.bodyHeight()
	content := m.renderTable(v, m.width-2, height-2)
	return m.renderTitledBox(title, content, m.width, height, true)
}

// renderTable draws the header row and as many rows as fit, scrolled so the
// selection stays visible.
func (m Model) renderTable(v screenView, width, height int) string {
	styles := m.theme.Styles()
	bg := newBgStyle(m.theme.SurfaceAlt)
	headStyle := styles.MutedText.Background(lipgloss.Color(m.theme.SurfaceAlt)).Bold(true)

	headers := make([]string, 0, len(v.Headers))
	for i, h := range v.Headers {
		label := fmt.Sprintf("%d %s", i+1, h.Title)
		if h.Sorted {
			label += ternary(h.Desc, " ▼", " ▲")
			if len(v.State.Sorting) > 1 {
				label += fmt.Sprint(h.SortPos + 1)
			}
		}
		headers = append(headers, bg.render(fit(label, h.Width), headStyle))
	}
	lines := []string{bg.fill(bg.join(headers, " "), width)}

	if len(v.Rows) == 0 {
		msg := "No records"
		switch {
		case v.Loading:
			msg = "Loading…"
		case v.Err != nil:
			msg = "Could not load records"
		case v.State.GlobalFilter != "" || len(v.State.ColumnFilters) > 0:
			msg = "No records match"
		}
		lines = append(lines, bg.fill(bg.render(msg, styles.MutedText), width))
		return strings.Join(lines, "\n")
	}

	visible := max(height-1, 1)
	offset := 0
	if v.Selected >= visible {
		offset = v.Selected - visible + 1
	}
	end := min(offset+visible, len(v.Rows))
	for i := offset; i < end; i++ {
		lines = append(lines, m.renderRow(v.Headers, v.Rows[i], width, i == v.Selected))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(headers []header, cells []cell, width int, selected bool) string {
	rowBg := m.theme.SurfaceAlt
	if selected {
		rowBg = m.theme.SelectionBg
	}
	bg := newBgStyle(rowBg)
	text := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Text))
	if selected {
		text = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
	}

	parts := make([]string, 0, len(cells))
	for i, c := range cells {
		w := 0
		if i < len(headers) {
			w = headers[i].Width
		}
		style := text
		if c.Status != "" && !selected {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor(c.Status)))
		}
		parts = append(parts, bg.render(fit(c.Text, w), style))
	}
	return bg.fill(bg.join(parts, " "), width)
}

// renderStatusLine shows paging, search, loading and the last error.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	bg := newBgStyle(m.theme.Surface)
	s := m.current()
	v := s.view()

	var parts []string
	if v.Loading {
		parts = append(parts, bg.render(m.spinner.View(), styles.AccentText))
	}
	if m.searching {
		parts = append(parts, m.search.View())
	} else if v.State.GlobalFilter != "" {
		parts = append(parts, bg.render("search: "+v.State.GlobalFilter, styles.WarningText))
	}

	pages := max(v.Meta.TotalPages, 1)
	page := min(max(v.Meta.CurrentPage, 1), pages)
	parts = append(parts, bg.render(fmt.Sprintf("page %d/%d", page, pages), styles.Text))
	if pages > 1 {
		parts = append(parts, m.renderPager(page, pages))
	}
	parts = append(parts, bg.render(fmt.Sprintf("%d/page", v.State.Pagination.PageSize), styles.MutedText))
	if v.Mode == table.ModeServer {
		parts = append(parts, bg.render("server", styles.FaintText))
	}
	if v.Err != nil {
		parts = append(parts, bg.render(truncate(v.Err.Error(), 60), styles.DangerText))
	}
	if m.status != "" {
		parts = append(parts, bg.render(m.status, styles.MutedText))
	}
	return bg.fill(bg.join(parts, "  "), m.width)
}

func (m Model) renderPager(page, pages int) string {
	p := m.pager
	p.TotalPages = pages
	p.Page = page - 1
	if pages > 12 {
		p.Type = paginator.Arabic
	}
	p.ActiveDot = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent)).Render("•")
	p.InactiveDot = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Faint)).Render("•")
	return p.View()
}

func (m Model) renderCommandBar() string {
	bar := m.help.ShortHelpView(m.keys.ShortHelp())
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Background)).
		Width(m.width).
		Render(bar)
}

// renderTitledBox frames content with the title set into the top border:
// ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColor := m.theme.Border
	if focused {
		borderColor = m.theme.BorderFocus
	}
	bg := newBgStyle(m.theme.SurfaceAlt)
	border := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	inner := max(width-2, 0)
	title = truncate(title, max(inner-4, 1))
	titleLen := lipgloss.Width(title)
	left := max((inner-titleLen-2)/2, 0)
	right := max(inner-titleLen-2-left, 0)

	lines := make([]string, 0, height)
	lines = append(lines, bg.render("┌"+strings.Repeat("─", left), border)+
		bg.render(" "+title+" ", titleStyle)+
		bg.render(strings.Repeat("─", right)+"┐", border))

	body := strings.Split(content, "\n")
	cellStyle := lipgloss.NewStyle().Width(inner).MaxWidth(inner).Background(lipgloss.Color(m.theme.SurfaceAlt))
	for i := range max(height-2, 0) {
		line := ""
		if i < len(body) {
			line = body[i]
		}
		lines = append(lines, bg.render("│", border)+cellStyle.Render(line)+bg.render("│", border))
	}
	lines = append(lines, bg.render("└"+strings.Repeat("─", inner)+"┘", border))
	return strings.Join(lines, "\n")
}
