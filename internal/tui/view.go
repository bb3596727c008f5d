package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"balance_chart/internal/domain/entity"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")).Padding(0, 1)
	networkStyle  = lipgloss.NewStyle().Padding(0, 1)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
)

const (
	barRune     = "█"
	symbolWidth = 10
	minBarWidth = 10
)

func (m Model) View() string {
	if m.quit {
		return ""
	}

	v := m.currentView()

	header := titleStyle.Render(v.Title)
	if v.ChecksumAddress != "" && v.ChecksumAddress != v.Address {
		header = lipgloss.JoinVertical(lipgloss.Left, header, subtleStyle.Render(v.ChecksumAddress))
	}

	sections := []string{
		header,
		"",
		m.viewNetworks(),
		m.input.View(),
		"",
		m.viewBody(v),
	}
	if m.status != "" {
		sections = append(sections, "", errorStyle.Render(m.status))
	}
	sections = append(sections, "", subtleStyle.Render(m.helpLine()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewNetworks() string {
	items := make([]string, 0, len(m.networks))
	for i, n := range m.networks {
		if i == m.networkIdx {
			items = append(items, selectedStyle.Render(n))
			continue
		}
		items = append(items, networkStyle.Render(n))
	}

	prefix := "  "
	if m.focus == focusNetwork {
		prefix = "> "
	}
	return prefix + lipgloss.NewStyle().Width(max(m.width-2, minBarWidth)).Render(strings.Join(items, ""))
}

func (m Model) viewBody(v entity.View) string {
	switch v.Kind {
	case entity.ViewLoader:
		return fmt.Sprintf("%s Loading balances...", m.spinner.View())
	case entity.ViewError:
		return errorStyle.Render(v.Message)
	}

	if len(v.Segments) == 0 {
		return subtleStyle.Render("No chartable balances.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewBars(v.Segments), "", m.viewTooltip(v.Segments))
}

func (m Model) viewBars(segments []entity.ChartSegment) string {
	width := m.barWidth()

	peak := 0.0
	for _, s := range segments {
		peak = math.Max(peak, s.Value)
	}

	rows := make([]string, 0, len(segments))
	for i, s := range segments {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		n := 1
		if peak > 0 {
			n = max(int(math.Round(s.Value/peak*float64(width))), 1)
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat(barRune, n))
		rows = append(rows, fmt.Sprintf("%s%-*s %s", cursor, symbolWidth, truncate(s.Symbol, symbolWidth), bar))
	}
	return strings.Join(rows, "\n")
}

func (m Model) viewTooltip(segments []entity.ChartSegment) string {
	if m.cursor < 0 || m.cursor >= len(segments) {
		return ""
	}
	s := segments[m.cursor]
	lines := []string{lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(s.Label)}
	if s.Caption != "" {
		lines = append(lines, subtleStyle.Render(s.Caption))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) barWidth() int {
	return max(m.width-symbolWidth-8, minBarWidth)
}

func (m Model) helpLine() string {
	if m.focus == focusAddress {
		return "enter: apply • esc: cancel • tab: networks • ↑/↓: inspect • ctrl+c: quit"
	}
	return "←/→: network • tab: address • ↑/↓: inspect • q: quit"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
