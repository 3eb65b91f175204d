package console

import "github.com/charmbracelet/lipgloss"

const (
	colorBanner  = "#FFFF87"
	colorPrompt  = "#5FAFFF"
	colorSuccess = "#5FFF87"
	colorError   = "#FF5F5F"
	colorInfo    = "#8A8A8A"
)

type styles struct {
	banner  lipgloss.Style
	prompt  lipgloss.Style
	plan    lipgloss.Style
	success lipgloss.Style
	error   lipgloss.Style
	info    lipgloss.Style
}

// newStyles binds the palette to r so color output follows the actual writer.
func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		banner: r.NewStyle().
			Foreground(lipgloss.Color(colorBanner)),

		prompt: r.NewStyle().
			Foreground(lipgloss.Color(colorPrompt)),

		plan: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrompt)),

		success: r.NewStyle().
			Foreground(lipgloss.Color(colorSuccess)),

		error: r.NewStyle().
			Foreground(lipgloss.Color(colorError)),

		info: r.NewStyle().
			Foreground(lipgloss.Color(colorInfo)),
	}
}
