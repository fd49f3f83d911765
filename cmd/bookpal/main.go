package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sant0-9/bookpal/internal/bookstore"
	"github.com/sant0-9/bookpal/internal/chat"
	"github.com/sant0-9/bookpal/internal/config"
	"github.com/sant0-9/bookpal/internal/intent"
	"github.com/sant0-9/bookpal/internal/llm"
	"github.com/sant0-9/bookpal/internal/tui"
)

var version = "dev"

var debug bool

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bookpal",
		Short: "Manage your book collection in plain English",
		Long: `bookpal keeps a book collection you talk to. Add, find, update and
delete books by describing what you want; an LLM works out the rest.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := buildLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			p := tea.NewProgram(
				tui.NewApp(logger),
				tea.WithAltScreen(),
			)
			_, err = p.Run()
			return err
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "write debug logs to the config directory")
	root.AddCommand(askCmd(), versionCmd())
	return root
}

// askCmd runs a single utterance through the engine and prints the replies,
// for scripting and quick checks without the TUI.
func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [utterance]",
		Short: "Ask a single question without opening the TUI",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			utterance := strings.Join(args, " ")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg == nil {
				return fmt.Errorf("no config found, run bookpal once to set up")
			}

			logger, err := buildLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			provider, err := llm.NewProvider(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			err = provider.Ping(ctx)
			cancel()
			if err != nil {
				return fmt.Errorf("provider %s unreachable: %w", provider.Name(), err)
			}

			store, err := bookstore.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			resolver := intent.NewModelResolver(provider, cfg.Model, logger)
			engine := chat.NewEngine(store, resolver, logger)

			for _, msg := range engine.HandleUtterance(cmd.Context(), utterance) {
				if msg.Speaker == chat.SpeakerUser {
					continue
				}
				fmt.Println(msg.Text)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("bookpal", version)
		},
	}
}

// buildLogger returns a no-op logger unless --debug is set, in which case
// logs go to a file so they never corrupt the TUI.
func buildLogger() (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{filepath.Join(dir, "debug.log")}
	zcfg.ErrorOutputPaths = zcfg.OutputPaths
	return zcfg.Build()
}
