// Package ui holds the lipgloss styles shared by the capture screen.
package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF0000")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
)

// CategoryColors tints each glyph family in the status line. Unknown
// categories fall back to ColorWhite.
var CategoryColors = map[string]lipgloss.Color{
	"air":   ColorCyan,
	"earth": ColorGreen,
	"fire":  ColorRed,
	"water": lipgloss.Color("#3399FF"),
}

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	SavedStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	WarningTextStyle = lipgloss.NewStyle().
				Foreground(ColorYellow)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	// CanvasBoxStyle frames the drawing area. The border is one cell on
	// every side; mouse mapping in the app package depends on that.
	CanvasBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorDimGray)

	ReferenceBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(ColorDimGray).
				Foreground(ColorGray)

	InkStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)
)

// CategoryStyle returns the bold style for a category label.
func CategoryStyle(category string) lipgloss.Style {
	c, ok := CategoryColors[category]
	if !ok {
		c = ColorWhite
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}
