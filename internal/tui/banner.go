package tui

import "github.com/charmbracelet/lipgloss"

const logo = `
 █████╗ ██╗   ██╗████████╗ ██████╗ ██████╗ ██████╗ ██╗ ██████╗ ██╗  ██╗████████╗
██╔══██╗██║   ██║╚══██╔══╝██╔═══██╗██╔══██╗██╔══██╗██║██╔════╝ ██║  ██║╚══██╔══╝
███████║██║   ██║   ██║   ██║   ██║██████╔╝██████╔╝██║██║  ███╗███████║   ██║
██╔══██║██║   ██║   ██║   ██║   ██║██╔══██╗██╔══██╗██║██║   ██║██╔══██║   ██║
██║  ██║╚██████╔╝   ██║   ╚██████╔╝██████╔╝██║  ██║██║╚██████╔╝██║  ██║   ██║
╚═╝  ╚═╝ ╚═════╝    ╚═╝    ╚═════╝ ╚═════╝ ╚═╝  ╚═╝╚═╝ ╚═════╝ ╚═╝  ╚═╝   ╚═╝`

// Banner renders the logo in the amber theme.
func Banner() string {
	theme := AmberTheme()
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.Primary)).
		Bold(true).
		MarginBottom(1)

	return style.Render(logo)
}
