// Package servecmder provides the serve command that runs the shelf API
// server.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/shelf/api"
	"github.com/papercomputeco/shelf/api/mcp"
	"github.com/papercomputeco/shelf/cmd/shelf/app"
	"github.com/papercomputeco/shelf/pkg/config"
	"github.com/papercomputeco/shelf/pkg/logger"
)

type ServeCommander struct {
	flags config.FlagSet

	cfg       *config.Config
	configDir string
	debug     bool
	json      bool

	logger *slog.Logger
}

const serveLongDesc string = `Run the shelf API server.

Serves the product catalog, order placement and the shopping assistant over
HTTP, and MCP tools at /mcp. Every product and order write is mirrored into
the configured vector store.

Flags override config.toml, which overrides defaults. Environment variables
use the SHELF_ prefix (SHELF_API_LISTEN, SHELF_STORAGE_POSTGRES_DSN, ...).

Examples:
  shelf serve
  shelf serve --sqlite ./shelf.db --vector-store-provider sqlitevec --vector-store-target ./vectors.db
  shelf serve --postgres postgres://localhost/shelf --vector-store-provider pgvector \
    --vector-store-target postgres://localhost/shelf`

const serveShortDesc string = "Run the shelf API server"

var serveFlags = config.FlagSet{
	config.FlagAPIListen:       {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for API server to listen on"},
	config.FlagSQLite:          {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite database (default: in-memory)"},
	config.FlagPostgres:        {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string (takes precedence over --sqlite)"},
	config.FlagVectorStoreProv: {Name: "vector-store-provider", ViperKey: "vector_store.provider", Description: "Vector store provider (inmemory, sqlitevec, chroma, qdrant, pgvector)"},
	config.FlagVectorStoreTgt:  {Name: "vector-store-target", ViperKey: "vector_store.target", Description: "Vector store URL, DSN or file path"},
	config.FlagEmbeddingProv:   {Name: "embedding-provider", ViperKey: "embedding.provider", Description: "Embedding provider (ollama, openai, gemini)"},
	config.FlagEmbeddingTgt:    {Name: "embedding-target", ViperKey: "embedding.target", Description: "Embedding provider URL"},
	config.FlagEmbeddingModel:  {Name: "embedding-model", ViperKey: "embedding.model", Description: "Embedding model name"},
	config.FlagEmbeddingDims:   {Name: "embedding-dimensions", ViperKey: "embedding.dimensions", Description: "Embedding dimensionality"},
	config.FlagLLMProvider:     {Name: "llm-provider", ViperKey: "llm.provider", Description: "Language model provider (openai, anthropic, ollama, gemini)"},
	config.FlagLLMModel:        {Name: "llm-model", ViperKey: "llm.model", Description: "Language model name"},
	config.FlagImageProvider:   {Name: "image-provider", ViperKey: "image.provider", Description: "Image model provider (openai, gemini, none)"},
	config.FlagChatTopK:        {Name: "chat-top-k", ViperKey: "chat.top_k", Description: "Documents retrieved per chat question"},
	config.FlagChatThreshold:   {Name: "chat-similarity-threshold", ViperKey: "chat.similarity_threshold", Description: "Minimum similarity of retrieved documents"},
	config.FlagCacheProvider:   {Name: "cache-provider", ViperKey: "cache.provider", Description: "Chat answer cache (none, inmemory, redis)"},
	config.FlagEventsProvider:  {Name: "events-provider", ViperKey: "events.provider", Description: "Order event stream (nop, kafka)"},
	config.FlagIndexerAsync:    {Name: "indexer-async", ViperKey: "indexer.async", Description: "Write vector documents from a background worker pool"},
}

var serveFlagKeys = []string{
	config.FlagAPIListen,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagLLMProvider,
	config.FlagLLMModel,
	config.FlagImageProvider,
	config.FlagChatTopK,
	config.FlagChatThreshold,
	config.FlagCacheProvider,
	config.FlagEventsProvider,
	config.FlagIndexerAsync,
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{flags: serveFlags}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			var err error
			cmder.cfg, err = LoadConfig(cmd, cmder.flags, serveFlagKeys)
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

	RegisterFlags(cmd, serveFlags, &config.Config{})
	cmd.Flags().BoolVar(&cmder.json, "json", false, "Emit logs as JSON")

	return cmd
}

// RegisterFlags adds every flag of fs that serve knows about to cmd. The
// sink only receives the parsed values; the effective configuration is
// always read back through viper so flags, env and config.toml merge in one
// place.
func RegisterFlags(cmd *cobra.Command, fs config.FlagSet, sink *config.Config) {
	config.AddStringFlag(cmd, fs, config.FlagAPIListen, &sink.API.Listen)
	config.AddStringFlag(cmd, fs, config.FlagSQLite, &sink.Storage.SQLitePath)
	config.AddStringFlag(cmd, fs, config.FlagPostgres, &sink.Storage.PostgresDSN)
	config.AddStringFlag(cmd, fs, config.FlagVectorStoreProv, &sink.VectorStore.Provider)
	config.AddStringFlag(cmd, fs, config.FlagVectorStoreTgt, &sink.VectorStore.Target)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingProv, &sink.Embedding.Provider)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingTgt, &sink.Embedding.Target)
	config.AddStringFlag(cmd, fs, config.FlagEmbeddingModel, &sink.Embedding.Model)
	config.AddUintFlag(cmd, fs, config.FlagEmbeddingDims, &sink.Embedding.Dimensions)
	config.AddStringFlag(cmd, fs, config.FlagLLMProvider, &sink.LLM.Provider)
	config.AddStringFlag(cmd, fs, config.FlagLLMModel, &sink.LLM.Model)
	config.AddStringFlag(cmd, fs, config.FlagImageProvider, &sink.Image.Provider)
	config.AddUintFlag(cmd, fs, config.FlagChatTopK, &sink.Chat.TopK)
	config.AddFloat64Flag(cmd, fs, config.FlagChatThreshold, &sink.Chat.Threshold)
	config.AddStringFlag(cmd, fs, config.FlagCacheProvider, &sink.Cache.Provider)
	config.AddStringFlag(cmd, fs, config.FlagEventsProvider, &sink.Events.Provider)
	config.AddBoolFlag(cmd, fs, config.FlagIndexerAsync, &sink.Indexer.Async)
}

// LoadConfig resolves the configuration for a command registered with
// RegisterFlags.
func LoadConfig(cmd *cobra.Command, fs config.FlagSet, keys []string) (*config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, fs, keys)
	return config.FromViper(v), nil
}

func (c *ServeCommander) run(parent context.Context) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(c.json),
		logger.WithPretty(!c.json),
	)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, c.cfg, c.logger, app.Options{ConfigDir: c.configDir})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			c.logger.Error("failed to close resources", "error", err)
		}
	}()

	mcpServer, err := mcp.NewServer(mcp.Config{
		Products:    a.Products,
		Chatbot:     a.Chatbot,
		VectorStore: a.Store,
		Logger:      c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	apiServer, err := api.NewServer(api.Config{
		ListenAddr:  c.cfg.API.Listen,
		CORSOrigins: c.cfg.API.CORSOrigins,
		Products:    a.Products,
		Orders:      a.Orders,
		Chatbot:     a.Chatbot,
		MCPHandler:  mcpServer.Handler(),
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("starting shelf",
		"api_addr", c.cfg.API.Listen,
		"vector_store", c.cfg.VectorStore.Provider,
		"embedding", c.cfg.Embedding.Provider,
		"llm", c.cfg.LLM.Provider,
		"chat_enabled", a.Chatbot != nil,
		"indexer_async", c.cfg.Indexer.Async,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := apiServer.Run(); err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		c.logger.Info("shutting down")
		return apiServer.Shutdown()
	})

	if a.Prompts.Dir() != "" {
		g.Go(func() error {
			err := a.Prompts.Watch(gctx, func(string) {
				if a.Cache == nil {
					return
				}
				if err := a.Cache.Clear(gctx); err != nil {
					c.logger.Warn("failed to clear chat cache", "error", err)
				}
			})
			if err != nil {
				c.logger.Warn("prompt watcher stopped", "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
