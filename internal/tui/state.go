package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sant0-9/bookpal/internal/chat"
	"github.com/sant0-9/bookpal/internal/config"
)

type state struct {
	// Config
	config     *config.Config
	needsSetup bool

	// Setup wizard state
	setupStep        int
	selectedProvider int
	apiKeyInput      textinput.Model

	// Engine
	engine      *chat.Engine
	engineReady bool
	engineError error

	// Conversation
	history      []chat.Message
	thinking     bool
	spinnerFrame int
	scrollOffset int

	// Input
	input textinput.Model
}

func newState() *state {
	input := textinput.New()
	input.Placeholder = `Try: Add book titled "Dune" by Frank Herbert published in 1965`
	input.CharLimit = 500
	input.Width = 60

	apiKey := textinput.New()
	apiKey.Placeholder = "Paste your API key here..."
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.CharLimit = 200
	apiKey.Width = 50

	return &state{
		input:       input,
		apiKeyInput: apiKey,
	}
}
