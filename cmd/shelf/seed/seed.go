// Package seedcmder provides the seed command that fills the catalog with
// generated products and orders.
package seedcmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/shelf/cmd/shelf/app"
	servecmder "github.com/papercomputeco/shelf/cmd/shelf/serve"
	"github.com/papercomputeco/shelf/pkg/catalog"
	"github.com/papercomputeco/shelf/pkg/cliui"
	"github.com/papercomputeco/shelf/pkg/config"
	"github.com/papercomputeco/shelf/pkg/logger"
	"github.com/papercomputeco/shelf/pkg/orders"
	"github.com/papercomputeco/shelf/pkg/seed"
)

const seedLongDesc string = `Seed generated products and orders.

Products are written to the configured relational store and indexed into the
configured vector store, exactly as if they had been created through the API.
Seeding the in-memory store is pointless since it is gone when the command
exits, so configure --sqlite or --postgres first.

Examples:
  shelf seed --sqlite ./shelf.db
  shelf seed --sqlite ./shelf.db --products 50 --orders 10
  shelf seed --postgres postgres://localhost/shelf --seed 42`

const seedShortDesc string = "Seed demo products and orders"

// SeedFlags are the serve flags that pick the stores to seed into.
var SeedFlags = config.FlagSet{
	config.FlagSQLite:          {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite database"},
	config.FlagPostgres:        {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string (takes precedence over --sqlite)"},
	config.FlagVectorStoreProv: {Name: "vector-store-provider", ViperKey: "vector_store.provider", Description: "Vector store provider (inmemory, sqlitevec, chroma, qdrant, pgvector)"},
	config.FlagVectorStoreTgt:  {Name: "vector-store-target", ViperKey: "vector_store.target", Description: "Vector store URL, DSN or file path"},
	config.FlagEmbeddingProv:   {Name: "embedding-provider", ViperKey: "embedding.provider", Description: "Embedding provider (ollama, openai, gemini)"},
	config.FlagEmbeddingTgt:    {Name: "embedding-target", ViperKey: "embedding.target", Description: "Embedding provider URL"},
	config.FlagEmbeddingModel:  {Name: "embedding-model", ViperKey: "embedding.model", Description: "Embedding model name"},
	config.FlagEmbeddingDims:   {Name: "embedding-dimensions", ViperKey: "embedding.dimensions", Description: "Embedding dimensionality"},
}

// SeedFlagKeys lists SeedFlags in binding order.
var SeedFlagKeys = []string{
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

type seedCommander struct {
	products  int
	orders    int
	seed      int64
	configDir string
	debug     bool

	cfg    *config.Config
	logger *slog.Logger
}

// seedResult counts what was written.
type seedResult struct {
	products int
	orders   int
	skipped  int
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			var err error
			cmder.cfg, err = servecmder.LoadConfig(cmd, SeedFlags, SeedFlagKeys)
			return err
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

	servecmder.RegisterFlags(cmd, SeedFlags, &config.Config{})
	cmd.Flags().IntVarP(&cmder.products, "products", "n", 20, "Number of products to generate")
	cmd.Flags().IntVar(&cmder.orders, "orders", 5, "Number of orders to place against the generated products")
	cmd.Flags().Int64Var(&cmder.seed, "seed", 0, "Random seed for reproducible data (0 picks one)")

	return cmd
}

func (c *seedCommander) run(ctx context.Context) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	if c.cfg.Storage.PostgresDSN == "" && c.cfg.Storage.SQLitePath == "" {
		fmt.Printf("\n  %s\n",
			cliui.WarnStyle.Render("No --sqlite or --postgres configured; seeded data will not outlive this command."),
		)
	}

	a, err := app.Open(ctx, c.cfg, c.logger, app.Options{
		ConfigDir: c.configDir,
		SkipAI:    true,
		ForceSync: true,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	var result *seedResult
	if err := cliui.Step(os.Stdout, "Seeding catalog", func() error {
		var seedErr error
		result, seedErr = seedCatalog(ctx, a, seed.New(c.seed), c.products, c.orders)
		return seedErr
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s Seeded %s products and %s orders %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(strconv.Itoa(result.products)),
		cliui.KeyStyle.Render(strconv.Itoa(result.orders)),
		cliui.DimStyle.Render(fmt.Sprintf("(%d orders skipped)", result.skipped)),
	)
	return nil
}

// seedCatalog saves n generated products through the product service, then places
// up to m orders against them. Orders that run into sold out stock are
// skipped.
func seedCatalog(ctx context.Context, a *app.App, g *seed.Generator, n, m int) (*seedResult, error) {
	result := &seedResult{}

	saved := make([]*catalog.Product, 0, n)
	for _, p := range g.Products(n) {
		sp, err := a.Products.Save(ctx, p, nil)
		if err != nil {
			return result, fmt.Errorf("saving product %q: %w", p.Name, err)
		}
		saved = append(saved, sp)
		result.products++
	}

	for range m {
		req := g.OrderRequest(saved)
		if req == nil {
			result.skipped++
			continue
		}

		if _, err := a.Orders.Place(ctx, req); err != nil {
			if errors.Is(err, orders.ErrInsufficientStock) {
				result.skipped++
				continue
			}
			return result, fmt.Errorf("placing order: %w", err)
		}
		result.orders++

		// Keep the local stock in step so later requests stay plausible.
		for _, item := range req.Items {
			for _, p := range saved {
				if p.ID == item.ProductID {
					p.StockQuantity -= item.Quantity
				}
			}
		}
	}

	return result, nil
}
