package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sant0-9/bookpal/internal/bookstore"
	"github.com/sant0-9/bookpal/internal/chat"
	"github.com/sant0-9/bookpal/internal/config"
	"github.com/sant0-9/bookpal/internal/intent"
	"github.com/sant0-9/bookpal/internal/llm"
)

type view int

const (
	viewWelcome view = iota
	viewSetup
	viewChat
	viewHelp
	viewSettings
)

type App struct {
	width    int
	height   int
	view     view
	state    *state
	logger   *zap.Logger
	quitting bool
}

func NewApp(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := newState()

	// Check if setup needed
	cfg, _ := config.Load()
	if cfg == nil {
		s.needsSetup = true
		s.config = config.DefaultConfig()
	} else {
		s.config = cfg
	}

	return &App{
		view:   viewWelcome,
		state:  s,
		logger: logger,
	}
}

func (a *App) Init() tea.Cmd {
	if a.state.needsSetup {
		a.view = viewSetup
		return tea.Batch(tea.WindowSize(), textinput.Blink)
	}

	return tea.Batch(
		tea.WindowSize(),
		textinput.Blink,
		a.startEngine(),
	)
}

// startEngine pings the configured provider, opens the book store backend
// and wires the conversation engine.
func (a *App) startEngine() tea.Cmd {
	cfg := a.state.config
	logger := a.logger
	return func() tea.Msg {
		provider, err := llm.NewProvider(cfg)
		if err != nil {
			return engineErrorMsg{err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := provider.Ping(ctx); err != nil {
			return engineErrorMsg{err}
		}

		store, err := bookstore.NewFromConfig(cfg)
		if err != nil {
			return engineErrorMsg{err}
		}

		resolver := intent.NewModelResolver(provider, cfg.Model, logger)
		return engineReadyMsg{chat.NewEngine(store, resolver, logger)}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := a.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case setupCompleteMsg:
		a.state.needsSetup = false
		a.view = viewWelcome
		return a, a.startEngine()

	case setupErrorMsg:
		a.state.engineError = msg.error
		return a, nil

	case engineReadyMsg:
		a.state.engine = msg.engine
		a.state.engineReady = true
		a.state.engineError = nil
		a.state.input.Focus()
		return a, textinput.Blink

	case engineErrorMsg:
		a.state.engineError = msg.error
		return a, nil

	case turnDoneMsg:
		a.state.thinking = false
		// The first entry echoes the user's message, already shown.
		if len(msg.messages) > 1 {
			a.state.history = append(a.state.history, msg.messages[1:]...)
		}
		a.state.scrollOffset = 0
		a.state.input.Focus()
		return a, textinput.Blink

	case tickMsg:
		if a.state.thinking {
			a.state.spinnerFrame++
			return a, tick()
		}
		return a, nil
	}

	// Update text inputs based on view
	if a.view == viewSetup && a.state.setupStep == 1 {
		var cmd tea.Cmd
		a.state.apiKeyInput, cmd = a.state.apiKeyInput.Update(msg)
		cmds = append(cmds, cmd)
	} else if a.view == viewChat && !a.state.thinking {
		var cmd tea.Cmd
		a.state.input, cmd = a.state.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	// The setup wizard owns navigation keys; only Quit bypasses it.
	if a.view == viewSetup && !key.Matches(msg, keys.Quit) {
		return a.handleSetupKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		switch a.view {
		case viewHelp, viewSettings:
			a.view = viewChat
			return nil
		case viewSetup:
			if a.state.setupStep == 1 {
				a.state.setupStep = 0
				a.state.apiKeyInput.Reset()
				return nil
			}
		}
		a.quitting = true
		return tea.Quit

	case key.Matches(msg, keys.Enter):
		switch a.view {
		case viewWelcome:
			if a.state.engineReady {
				a.view = viewChat
			}
			return nil
		case viewChat:
			return a.handleInput()
		}

	case key.Matches(msg, keys.Up):
		if a.view == viewChat {
			a.state.scrollOffset++
		}
		return nil

	case key.Matches(msg, keys.Down):
		if a.view == viewChat && a.state.scrollOffset > 0 {
			a.state.scrollOffset--
		}
		return nil
	}

	return nil
}

func (a *App) handleInput() tea.Cmd {
	input := strings.TrimSpace(a.state.input.Value())
	if input == "" || a.state.thinking || !a.state.engineReady {
		return nil
	}

	// Handle slash commands
	if strings.HasPrefix(input, "/") {
		cmd := strings.ToLower(input)
		switch {
		case cmd == "/help" || cmd == "/h":
			a.view = viewHelp
			a.state.input.Reset()
			return nil
		case cmd == "/settings" || cmd == "/s":
			a.view = viewSettings
			a.state.input.Reset()
			return nil
		case cmd == "/quit" || cmd == "/q":
			a.quitting = true
			return tea.Quit
		}
	}

	a.state.input.Reset()
	a.state.history = append(a.state.history, chat.Message{Speaker: chat.SpeakerUser, Text: input})
	a.state.thinking = true
	return tea.Batch(a.runTurn(input), tick())
}

func (a *App) runTurn(utterance string) tea.Cmd {
	engine := a.state.engine
	return func() tea.Msg {
		return turnDoneMsg{engine.HandleUtterance(context.Background(), utterance)}
	}
}

func (a *App) handleSetupKey(msg tea.KeyMsg) tea.Cmd {
	switch a.state.setupStep {
	case 0: // Provider selection
		switch msg.String() {
		case "up", "k":
			if a.state.selectedProvider > 0 {
				a.state.selectedProvider--
			}
		case "down", "j":
			if a.state.selectedProvider < len(config.Providers)-1 {
				a.state.selectedProvider++
			}
		case "enter":
			provider := config.Providers[a.state.selectedProvider]
			a.state.config.Provider = provider.ID
			a.state.config.Model = provider.DefaultModel

			if provider.NeedsAPIKey {
				a.state.setupStep = 1
				a.state.apiKeyInput.Focus()
				return textinput.Blink
			}
			return a.finishSetup()
		}

	case 1: // API key entry
		if msg.String() == "enter" {
			a.state.config.APIKey = a.state.apiKeyInput.Value()
			return a.finishSetup()
		}
	}

	return nil
}

func (a *App) finishSetup() tea.Cmd {
	return func() tea.Msg {
		if err := a.state.config.Save(); err != nil {
			return setupErrorMsg{err}
		}
		return setupCompleteMsg{}
	}
}

type setupCompleteMsg struct{}
type setupErrorMsg struct{ error }
type engineReadyMsg struct{ engine *chat.Engine }
type engineErrorMsg struct{ error }
type turnDoneMsg struct{ messages []chat.Message }
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	switch a.view {
	case viewSetup:
		return a.renderSetup()
	case viewChat:
		return a.renderChat()
	case viewHelp:
		return a.renderHelp()
	case viewSettings:
		return a.renderSettings()
	default:
		return a.renderWelcome()
	}
}
