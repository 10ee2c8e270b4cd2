package output

import "github.com/charmbracelet/lipgloss"

var (
	// topStyle for depth-0 outline titles
	topStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("160"))

	// dimStyle for page numbers and tree guides
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// errorStyle for error indicators
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Styler applies terminal styles when color is enabled and passes text
// through untouched otherwise.
type Styler struct {
	Color bool
}

func (s Styler) render(style lipgloss.Style, text string) string {
	if !s.Color {
		return text
	}
	return style.Render(text)
}

// Success renders text as a success message.
func (s Styler) Success(text string) string { return s.render(successStyle, text) }

// Error renders text as an error message.
func (s Styler) Error(text string) string { return s.render(errorStyle, text) }

// Dim renders muted text.
func (s Styler) Dim(text string) string { return s.render(dimStyle, text) }

