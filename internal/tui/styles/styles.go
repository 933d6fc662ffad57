package styles

import "github.com/charmbracelet/lipgloss"

// Centralized Lip Gloss styles for the browser and CLI output.
// All colors are specified using hex codes.

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61dafb")).
			MarginBottom(1).
			PaddingLeft(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginBottom(1).
			PaddingLeft(1)

	// SectionStyle heads a group in CLI listings.
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61dafb"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff005f")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffaf00"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff5f")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8a8a8a"))

	HelpStyle = lipgloss.NewStyle().
			Faint(true).
			Foreground(lipgloss.Color("#a8a8a8")).
			MarginTop(1).
			Padding(0, 1)

	HeaderContainerStyle = lipgloss.NewStyle().
				MarginLeft(1).
				MarginBottom(1)

	HelpContainerStyle = lipgloss.NewStyle().
				MarginLeft(1).
				MarginTop(1)

	MainContainerStyle = lipgloss.NewStyle().
				MarginLeft(1)

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5f5fff")).
			PaddingLeft(2).
			PaddingRight(1)

	// Focused pane variant that highlights the active pane.
	PaneFocusedStyle = PaneStyle.
				BorderForeground(lipgloss.Color("#61dafb"))
)

// Status renders a check result marker.
func Status(ok bool) string {
	if ok {
		return SuccessStyle.Render("ok")
	}
	return ErrorStyle.Render("missing")
}
