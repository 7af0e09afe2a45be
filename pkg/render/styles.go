package render

import "github.com/charmbracelet/lipgloss"

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle = lipgloss.NewStyle().Faint(true)
)

// Error colors a fatal message for stderr. Degrades to plain text on
// terminals without color support.
func Error(s string) string {
	return errorStyle.Render(s)
}

// Muted dims secondary status text.
func Muted(s string) string {
	return mutedStyle.Render(s)
}
