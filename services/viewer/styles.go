package viewer

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"stocklens/services/chart"
)

var (
	accent = lipgloss.Color("#7D56F4")
	muted  = lipgloss.Color("#626262")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(accent).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	axisStyle = lipgloss.NewStyle().
			Foreground(muted)

	lineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FAFFF"))

	positiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	negativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	crosshairStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3A3A3A"))

	annotationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFFF87"))

	anchorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")).
			Bold(true)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FAFFF")).
			Underline(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(muted)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(accent).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(muted)

	statusOkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF0000"))
)

func cellStyle(kind chart.CellKind) (lipgloss.Style, bool) {
	switch kind {
	case chart.CellLine, chart.CellPoint:
		return lineStyle, true
	case chart.CellPositive:
		return positiveStyle, true
	case chart.CellNegative:
		return negativeStyle, true
	case chart.CellCrosshair:
		return crosshairStyle, true
	case chart.CellAnchor:
		return anchorStyle, true
	case chart.CellAnnotation:
		return annotationStyle, true
	default:
		return lipgloss.Style{}, false
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(accent).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(accent).
		Bold(false)
	return s
}
