// Package reindexcmder provides the reindex command that rebuilds the vector
// store from the relational store.
package reindexcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/shelf/cmd/shelf/app"
	seedcmder "github.com/papercomputeco/shelf/cmd/shelf/seed"
	servecmder "github.com/papercomputeco/shelf/cmd/shelf/serve"
	"github.com/papercomputeco/shelf/pkg/cliui"
	"github.com/papercomputeco/shelf/pkg/config"
	"github.com/papercomputeco/shelf/pkg/indexer"
	"github.com/papercomputeco/shelf/pkg/logger"
)

const reindexLongDesc string = `Rebuild every product and order document in the vector store.

Use after switching vector store or embedding model, or when writes were
dropped while the vector store was unreachable. Documents that fail to index
are reported and skipped.

Examples:
  shelf reindex --sqlite ./shelf.db
  shelf reindex --postgres postgres://localhost/shelf --vector-store-provider qdrant \
    --vector-store-target localhost:6334`

const reindexShortDesc string = "Rebuild the vector store"

type reindexCommander struct {
	configDir string
	debug     bool

	cfg    *config.Config
	logger *slog.Logger
}

func NewReindexCmd() *cobra.Command {
	cmder := &reindexCommander{}

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: reindexShortDesc,
		Long:  reindexLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			var err error
			cmder.cfg, err = servecmder.LoadConfig(cmd, seedcmder.SeedFlags, seedcmder.SeedFlagKeys)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	servecmder.RegisterFlags(cmd, seedcmder.SeedFlags, &config.Config{})

	return cmd
}

func (c *reindexCommander) run(ctx context.Context, w io.Writer) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	a, err := app.Open(ctx, c.cfg, c.logger, app.Options{
		ConfigDir: c.configDir,
		SkipAI:    true,
		ForceSync: true,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	_, err = reindex(ctx, a, w)
	return err
}

// reindex rebuilds a's vector store and reports the counts to w.
func reindex(ctx context.Context, a *app.App, w io.Writer) (*indexer.ReindexStats, error) {
	var stats *indexer.ReindexStats
	if err := cliui.Step(w, "Reindexing vector store", func() error {
		var reindexErr error
		stats, reindexErr = a.Syncer.Reindex(ctx, a.Storage)
		return reindexErr
	}); err != nil {
		return nil, err
	}

	mark := cliui.SuccessMark
	if stats.Failed > 0 {
		mark = cliui.FailMark
	}
	fmt.Fprintf(w, "\n  %s Indexed %s products and %s orders %s\n\n",
		mark,
		cliui.KeyStyle.Render(strconv.Itoa(stats.Products)),
		cliui.KeyStyle.Render(strconv.Itoa(stats.Orders)),
		cliui.DimStyle.Render(fmt.Sprintf("(%d failed)", stats.Failed)),
	)
	return stats, nil
}
