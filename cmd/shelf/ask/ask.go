// Package askcmder provides the ask command for one-shot questions to a
// running shelf API.
package askcmder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/shelf/pkg/chatbot"
	"github.com/papercomputeco/shelf/pkg/client"
	"github.com/papercomputeco/shelf/pkg/cliui"
	"github.com/papercomputeco/shelf/pkg/config"
	"github.com/papercomputeco/shelf/pkg/logger"
)

type askCommander struct {
	question  string
	apiTarget string
	raw       bool
	explain   bool

	debug  bool
	logger *slog.Logger
}

const askLongDesc string = `Ask the shelf assistant a question about products and orders.

The question is answered by a running shelf API server (see "shelf serve")
using the catalog and order history as context. Answers are rendered as
markdown; use --raw for plain text.

Use --explain to see how many documents match the question at a sweep of
similarity thresholds instead of asking the LLM.

Examples:
  shelf ask "Which laptops are in stock?"
  shelf ask "What did Jane order last week?" --api-target http://localhost:8080
  shelf ask "desk lamps" --explain`

const askShortDesc string = "Ask the shelf assistant a question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
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
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.question = strings.Join(args, " ")

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
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the answer without markdown rendering")
	cmd.Flags().BoolVar(&cmder.explain, "explain", false, "Show similarity matches per threshold instead of asking")

	return cmd
}

func (c *askCommander) run(ctx context.Context) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	api, err := client.New(c.apiTarget)
	if err != nil {
		return err
	}

	c.logger.Debug("asking shelf", "api_target", c.apiTarget, "explain", c.explain)

	if c.explain {
		report, err := api.Debug(ctx, c.question)
		if err != nil {
			return err
		}
		fmt.Print(FormatReport(report))
		return nil
	}

	answer, err := api.Ask(ctx, c.question)
	if err != nil {
		return err
	}

	if c.raw {
		fmt.Println(answer)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(answer)
	if err != nil {
		c.logger.Debug("markdown rendering failed", "error", err)
		fmt.Println(answer)
		return nil
	}
	fmt.Print(rendered)
	return nil
}

// FormatReport renders a threshold sweep as an aligned table.
func FormatReport(report *chatbot.DebugReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s %s\n\n",
		cliui.HeaderStyle.Render("Matches for:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%q", report.Query)),
	)

	for _, level := range report.Levels {
		fmt.Fprintf(&b, "  %s  %s\n",
			cliui.KeyStyle.Render(fmt.Sprintf("≥ %.1f", level.Threshold)),
			cliui.ValueStyle.Render(fmt.Sprintf("%d documents", level.Count)),
		)
		for _, hit := range level.Hits {
			id := hit.ProductID
			if hit.OrderID != "" {
				id = hit.OrderID
			}
			fmt.Fprintf(&b, "      %s\n",
				cliui.DimStyle.Render(fmt.Sprintf("%-8s %-38s %.4f", hit.Type, id, hit.Score)),
			)
		}
	}
	b.WriteString("\n")
	return b.String()
}
