package tui

import (
	"github.com/charmbracelet/lipgloss"
	"ktx-reserve-cli/seating"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	flashStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	labelStyle  = lipgloss.NewStyle().Faint(true).Width(12)
	lowSeats    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	priceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	actionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("63")).
			Padding(0, 1)
	disabledActionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)
	panelStyle = lipgloss.NewStyle().
			Padding(1, 3).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("63"))

	seatAvailable = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	seatSelected  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("63")).Bold(true)
	seatReserved  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// cellStyle maps a seat's display state to its style. Focus is drawn as an underline on top.
func cellStyle(state seating.CellState) lipgloss.Style {
	var style lipgloss.Style
	switch state.Status {
	case seating.StatusSelected:
		style = seatSelected
	case seating.StatusReserved:
		style = seatReserved
	default:
		style = seatAvailable
	}
	if state.Focused {
		style = style.Underline(true).Bold(true)
	}
	return style
}

func action(label string, enabled bool) string {
	if !enabled {
		return disabledActionStyle.Render(label)
	}
	return actionStyle.Render(label)
}
