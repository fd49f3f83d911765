package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sant0-9/bookpal/internal/chat"
)

// Loading messages shown while the engine works through a turn
var thinkingMessages = []string{
	"Thinking...",
	"Checking the shelves...",
	"Flipping pages...",
	"Consulting the catalog...",
}

// Spinner frames for animation
var spinnerFrames = []string{"|", "/", "-", "\\"}

func (a *App) renderChat() string {
	boxWidth := min(70, a.width-4)
	leftPad := (a.width - boxWidth) / 2
	if leftPad < 2 {
		leftPad = 2
	}
	indent := strings.Repeat(" ", leftPad)

	// Calculate fixed heights
	headerHeight := 3 // Title + model line + blank line
	inputHeight := 4  // Input box + status bar

	// Available height for messages
	availableHeight := a.height - headerHeight - inputHeight
	if availableHeight < 5 {
		availableHeight = 5
	}

	// === BUILD HEADER ===
	var header strings.Builder
	title := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Render("BookPal")
	header.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	header.WriteString("\n")

	modelLine := lipgloss.NewStyle().
		Foreground(colorMuted).
		Render(a.state.config.Provider + " / " + a.state.config.Model)
	header.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, modelLine))
	header.WriteString("\n\n")

	// === BUILD ALL MESSAGE LINES ===
	var messageLines []string

	for _, msg := range a.state.history {
		if msg.Speaker == chat.SpeakerUser {
			content := wrapText(msg.Text, boxWidth-4)
			for j, line := range strings.Split(content, "\n") {
				prefix := "> "
				if j > 0 {
					prefix = "  "
				}
				styled := lipgloss.NewStyle().
					Foreground(colorSecondary).
					Render(prefix + line)
				messageLines = append(messageLines, indent+styled)
			}
		} else {
			content := wrapText(msg.Text, boxWidth-4)
			for _, line := range strings.Split(content, "\n") {
				styled := lipgloss.NewStyle().
					Foreground(colorWhite).
					Render("  " + line)
				messageLines = append(messageLines, indent+styled)
			}
		}
		messageLines = append(messageLines, "") // Blank line between messages
	}

	if a.state.thinking {
		spinner := spinnerFrames[a.state.spinnerFrame%len(spinnerFrames)]
		msgIdx := (a.state.spinnerFrame / 8) % len(thinkingMessages)
		loadingText := lipgloss.NewStyle().
			Foreground(colorPrimary).
			Render(fmt.Sprintf("%s %s", spinner, thinkingMessages[msgIdx]))
		messageLines = append(messageLines, indent+loadingText)
	}

	// === APPLY SCROLL ===
	totalLines := len(messageLines)

	maxScroll := totalLines - availableHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	if a.state.scrollOffset > maxScroll {
		a.state.scrollOffset = maxScroll
	}
	if a.state.scrollOffset < 0 {
		a.state.scrollOffset = 0
	}

	// Visible range, scrolled from the bottom
	endIdx := totalLines - a.state.scrollOffset
	startIdx := endIdx - availableHeight
	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx > totalLines {
		endIdx = totalLines
	}

	var visibleLines []string
	if startIdx < endIdx && len(messageLines) > 0 {
		visibleLines = messageLines[startIdx:endIdx]
	}

	// === BUILD INPUT/STATUS ===
	var footer strings.Builder

	if !a.state.thinking {
		inputBox := styleBox.Copy().
			Width(boxWidth).
			BorderForeground(colorMuted).
			Render(a.state.input.View())
		footer.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, inputBox))
		footer.WriteString("\n")
	}

	var statusParts []string
	if a.state.scrollOffset > 0 {
		statusParts = append(statusParts, fmt.Sprintf("[scroll: %d]", a.state.scrollOffset))
	}
	statusParts = append(statusParts, "[Up/Down] Scroll  [/help] Commands  [Esc] Quit")
	status := styleStatusBar.Render(strings.Join(statusParts, "  "))
	footer.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))

	// === COMBINE WITH FIXED LAYOUT ===
	var messageArea strings.Builder
	for i, line := range visibleLines {
		messageArea.WriteString(line)
		if i < len(visibleLines)-1 {
			messageArea.WriteString("\n")
		}
	}

	// Pad message area to fill available height
	displayedLines := len(visibleLines)
	messagePadding := availableHeight - displayedLines
	if messagePadding > 0 {
		if displayedLines > 0 {
			messageArea.WriteString("\n")
		}
		messageArea.WriteString(strings.Repeat("\n", messagePadding-1))
	}

	return header.String() + messageArea.String() + "\n" + footer.String()
}

// wrapText wraps text to fit within maxWidth, preserving words and
// existing line breaks.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 60
	}
	if strings.Contains(text, "\n") {
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			lines[i] = wrapText(line, maxWidth)
		}
		return strings.Join(lines, "\n")
	}
	if len(text) <= maxWidth {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > maxWidth {
				result.WriteString("\n")
				lineLen = 0
			} else {
				result.WriteString(" ")
				lineLen++
			}
		}
		result.WriteString(word)
		lineLen += len(word)
	}

	return result.String()
}
