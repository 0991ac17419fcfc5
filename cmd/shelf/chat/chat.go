// Package chatcmder provides the chat command: an interactive terminal
// session with the shelf assistant through a running shelf API.
package chatcmder

import (
	"context"
	"fmt"
	"log/slog"

	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/shelf/pkg/client"
	"github.com/papercomputeco/shelf/pkg/config"
	"github.com/papercomputeco/shelf/pkg/dotdir"
	"github.com/papercomputeco/shelf/pkg/logger"
)

type chatCommander struct {
	apiTarget string
	configDir string
	fresh     bool
	debug     bool

	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive chat session with the shelf assistant.

Questions are answered by a running shelf API server (see "shelf serve").
The transcript is kept in .shelf/chat_history.json and restored the next time
chat starts; use --new or type /clear to start over.

Commands inside the session:
  /clear   forget the transcript
  /exit    quit (or Ctrl+C)

Examples:
  shelf chat
  shelf chat --api-target http://localhost:8080 --new`

const chatShortDesc string = "Interactive chat with the shelf assistant"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed(config.FlagAPITarget) {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.apiTarget, config.FlagAPITarget, "a", defaults.Client.APITarget, "shelf API server URL")
	cmd.Flags().BoolVar(&cmder.fresh, "new", false, "Start with an empty transcript")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	// The TUI owns the terminal; logs would corrupt it.
	c.logger = logger.Nop()
	if c.debug {
		c.logger = logger.New(logger.WithDebug(true), logger.WithJSON(true))
	}

	api, err := client.New(c.apiTarget)
	if err != nil {
		return err
	}

	manager := dotdir.NewManager()
	history := &dotdir.ChatHistory{}
	if c.fresh {
		if err := manager.ClearChatHistory(c.configDir); err != nil {
			return err
		}
	} else {
		loaded, err := manager.LoadChatHistory(c.configDir)
		if err != nil {
			return err
		}
		if loaded != nil {
			history = loaded
		}
	}

	store := historyStore{
		save: func(h *dotdir.ChatHistory) error {
			return manager.SaveChatHistory(h, c.configDir)
		},
		clear: func() error {
			return manager.ClearChatHistory(c.configDir)
		},
	}

	model := newChatModel(ctx, api, store, history, c.apiTarget, c.logger)
	program := bubbletea.NewProgram(model,
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)
	_, err = program.Run()
	return err
}
