package tui

import "github.com/charmbracelet/lipgloss"

const logo = `
 ██████╗  ██████╗  ██████╗ ██╗  ██╗██████╗  █████╗ ██╗
 ██╔══██╗██╔═══██╗██╔═══██╗██║ ██╔╝██╔══██╗██╔══██╗██║
 ██████╔╝██║   ██║██║   ██║█████╔╝ ██████╔╝███████║██║
 ██╔══██╗██║   ██║██║   ██║██╔═██╗ ██╔═══╝ ██╔══██║██║
 ██████╔╝╚██████╔╝╚██████╔╝██║  ██╗██║     ██║  ██║███████╗
 ╚═════╝  ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝     ╚═╝  ╚═╝╚══════╝
`

func (a *App) renderWelcome() string {
	// Logo
	logoRendered := styleLogo.Render(logo)

	// Subtitle
	subtitle := styleSubtitle.Render("Your book collection, in plain English")

	// Status line depends on engine state
	var statusText string
	switch {
	case a.state.engineError != nil:
		statusText = lipgloss.NewStyle().
			Foreground(colorError).
			Render("Connection failed: " + a.state.engineError.Error())
	case a.state.engineReady:
		statusText = styleSubtitle.Render("\nPress Enter to start chatting")
	default:
		statusText = styleSubtitle.Render("\nConnecting to " + a.state.config.Provider + "...")
	}

	// Status bar
	statusBar := styleStatusBar.Render("[Enter] Chat  [Esc] Quit")

	// Combine main content
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		logoRendered,
		subtitle,
		statusText,
	)

	// Center content on screen (leave room for status bar)
	mainArea := lipgloss.Place(
		a.width,
		a.height-2,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)

	// Status bar centered at bottom
	statusLine := lipgloss.PlaceHorizontal(a.width, lipgloss.Center, statusBar)

	return lipgloss.JoinVertical(lipgloss.Left, mainArea, statusLine)
}
