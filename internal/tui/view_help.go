package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (a *App) renderHelp() string {
	var b strings.Builder

	// Title
	title := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Render("Help")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	// Things you can say
	examples := []string{
		`  Add book titled "Dune" by Frank Herbert published in 1965`,
		`  Find books by Ursula K. Le Guin`,
		`  Search for sci-fi books published after 1990`,
		`  Update the year of "Dune" to 1965`,
		`  Delete "The Hobbit"`,
		`  List all books`,
	}

	examplesTitle := styleSubtitle.Render("Things you can say")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, examplesTitle))
	b.WriteString("\n\n")

	examplesBox := styleBox.Copy().
		Width(64).
		Render(strings.Join(examples, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, examplesBox))
	b.WriteString("\n\n")

	// Commands
	commands := []string{
		"  /help, /h      Show this help",
		"  /settings, /s  Open settings",
		"  /quit, /q      Quit bookpal",
	}

	commandsBox := styleBox.Copy().
		Width(64).
		Render(strings.Join(commands, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, commandsBox))
	b.WriteString("\n\n")

	// Instructions
	instructions := styleStatusBar.Render("[Esc] Back")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}
