// Package app assembles the shelf services from a resolved configuration.
// serve, seed and reindex all build on it so the three commands can never
// disagree about which stores they talk to.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/papercomputeco/shelf/pkg/cache"
	cacheutils "github.com/papercomputeco/shelf/pkg/cache/utils"
	"github.com/papercomputeco/shelf/pkg/chatbot"
	"github.com/papercomputeco/shelf/pkg/config"
	"github.com/papercomputeco/shelf/pkg/credentials"
	"github.com/papercomputeco/shelf/pkg/embeddings"
	embeddingutils "github.com/papercomputeco/shelf/pkg/embeddings/utils"
	"github.com/papercomputeco/shelf/pkg/eventstream"
	eventstreamutils "github.com/papercomputeco/shelf/pkg/eventstream/utils"
	"github.com/papercomputeco/shelf/pkg/imagegen"
	imagegenutils "github.com/papercomputeco/shelf/pkg/imagegen/utils"
	"github.com/papercomputeco/shelf/pkg/indexer"
	"github.com/papercomputeco/shelf/pkg/llm"
	"github.com/papercomputeco/shelf/pkg/llm/provider"
	"github.com/papercomputeco/shelf/pkg/orders"
	"github.com/papercomputeco/shelf/pkg/products"
	"github.com/papercomputeco/shelf/pkg/prompt"
	"github.com/papercomputeco/shelf/pkg/storage"
	"github.com/papercomputeco/shelf/pkg/storage/inmemory"
	"github.com/papercomputeco/shelf/pkg/storage/postgres"
	"github.com/papercomputeco/shelf/pkg/storage/sqlite"
	"github.com/papercomputeco/shelf/pkg/vector"
	vectorutils "github.com/papercomputeco/shelf/pkg/vector/utils"
	"github.com/papercomputeco/shelf/pkg/vectorstore"
)

// Options tune Open for the command at hand.
type Options struct {
	// ConfigDir overrides the .shelf/ directory used for credentials.
	ConfigDir string

	// SkipAI leaves the completer and image generator unset. Commands that
	// only move data (seed, reindex) never call them.
	SkipAI bool

	// ForceSync ignores indexer.async so every write is indexed before the
	// command returns.
	ForceSync bool
}

// App holds every long lived dependency of a shelf process.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Storage   storage.Driver
	Vectors   vector.Driver
	Embedder  embeddings.Embedder
	Store     *vectorstore.Store
	Cache     cache.Cache
	Publisher eventstream.Publisher
	Completer llm.Completer
	Images    imagegen.Generator
	Prompts   *prompt.Loader

	Syncer  *indexer.Syncer
	Indexer indexer.Indexer

	Products *products.Service
	Orders   *orders.Service

	// Chatbot is nil when no completer could be configured.
	Chatbot *chatbot.Bot

	pool    *indexer.Pool
	closers []func() error
}

// Open builds an App. On error everything opened so far is closed again.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := a.open(ctx, opts); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context, opts Options) error {
	cfg := a.Config

	creds, err := credentials.NewManager(opts.ConfigDir)
	if err != nil {
		a.Logger.Warn("credentials unavailable, using environment only", "error", err)
		creds = nil
	}

	a.Storage, err = newStorageDriver(ctx, cfg.Storage, a.Logger)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, a.Storage.Close)

	a.Embedder, err = embeddingutils.NewEmbedder(ctx, &embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
		Dimensions:   cfg.Embedding.Dimensions,
		APIKey:       creds.ResolveKey(cfg.Embedding.Provider),
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	a.closers = append(a.closers, a.Embedder.Close)

	a.Vectors, err = vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		TargetURL:    cfg.VectorStore.Target,
		Collection:   cfg.VectorStore.Collection,
		Dimensions:   cfg.Embedding.Dimensions,
		APIKey:       creds.ResolveKey(cfg.VectorStore.Provider),
		Logger:       a.Logger,
	})
	if err != nil {
		return fmt.Errorf("creating vector driver: %w", err)
	}
	a.closers = append(a.closers, a.Vectors.Close)
	a.Store = vectorstore.New(a.Vectors, a.Embedder, a.Logger)

	a.Cache, err = cacheutils.NewCache(ctx, &cacheutils.NewCacheOpts{
		ProviderType: cfg.Cache.Provider,
		URL:          cfg.Cache.Target,
		Logger:       a.Logger,
	})
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}
	if a.Cache != nil {
		a.closers = append(a.closers, a.Cache.Close)
	}

	a.Publisher, err = eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.Events.Provider,
		Brokers:      cfg.Events.Brokers,
		Topic:        cfg.Events.Topic,
		Logger:       a.Logger,
	})
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	a.closers = append(a.closers, a.Publisher.Close)

	a.Prompts = prompt.NewLoader(cfg.Prompts.Dir, a.Logger)

	if !opts.SkipAI {
		a.openAI(ctx, creds)
	}

	a.Syncer = indexer.NewSyncer(a.Store, a.Cache, a.Logger)
	a.Indexer = a.Syncer
	if cfg.Indexer.Async && !opts.ForceSync {
		a.pool, err = indexer.NewPool(&indexer.Config{
			Syncer:     a.Syncer,
			NumWorkers: cfg.Indexer.Workers,
			Logger:     a.Logger,
		})
		if err != nil {
			return fmt.Errorf("creating indexer pool: %w", err)
		}
		a.Indexer = a.pool
	}

	a.Products, err = products.New(products.Config{
		Driver:         a.Storage,
		Indexer:        a.Indexer,
		Prompts:        a.Prompts,
		Completer:      a.Completer,
		ImageGenerator: a.Images,
		Logger:         a.Logger,
	})
	if err != nil {
		return fmt.Errorf("creating product service: %w", err)
	}

	a.Orders, err = orders.New(orders.Config{
		Driver:    a.Storage,
		Indexer:   a.Indexer,
		Publisher: a.Publisher,
		Logger:    a.Logger,
	})
	if err != nil {
		return fmt.Errorf("creating order service: %w", err)
	}

	if a.Completer != nil {
		a.Chatbot, err = chatbot.New(chatbot.Config{
			Store:            a.Store,
			Completer:        a.Completer,
			Prompts:          a.Prompts,
			Cache:            a.Cache,
			CacheTTL:         parseTTL(cfg.Cache.TTL, a.Logger),
			TopK:             int(cfg.Chat.TopK),
			Threshold:        cfg.Chat.Threshold,
			RelaxedTopK:      int(cfg.Chat.FallbackTopK),
			RelaxedThreshold: cfg.Chat.FallbackThreshold,
			Logger:           a.Logger,
		})
		if err != nil {
			return fmt.Errorf("creating chatbot: %w", err)
		}
	}

	return nil
}

// openAI configures the language and image models. Either may be missing,
// typically for lack of an API key; the features that need them then
// report themselves as not configured.
func (a *App) openAI(ctx context.Context, creds *credentials.Manager) {
	cfg := a.Config

	completer, err := provider.New(ctx, provider.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.Target,
		CredMgr:  creds,
		Logger:   a.Logger,
	})
	if err != nil {
		a.Logger.Warn("language model unavailable, chat and descriptions disabled",
			"provider", cfg.LLM.Provider,
			"error", err,
		)
	} else {
		a.Completer = completer
	}

	images, err := imagegenutils.NewGenerator(ctx, &imagegenutils.NewGeneratorOpts{
		ProviderType: cfg.Image.Provider,
		Model:        cfg.Image.Model,
		BaseURL:      cfg.Image.Target,
		APIKey:       creds.ResolveKey(cfg.Image.Provider),
		Logger:       a.Logger,
	})
	if err != nil {
		a.Logger.Warn("image model unavailable, image generation disabled",
			"provider", cfg.Image.Provider,
			"error", err,
		)
		return
	}
	a.Images = images
}

// Close drains the indexer pool, then closes every store in reverse order
// of opening.
func (a *App) Close() error {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newStorageDriver(ctx context.Context, c config.StorageConfig, logger *slog.Logger) (storage.Driver, error) {
	switch {
	case c.PostgresDSN != "":
		driver, err := postgres.NewDriver(ctx, c.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL storer: %w", err)
		}
		logger.Info("using PostgreSQL storage")
		return driver, nil

	case c.SQLitePath != "":
		driver, err := sqlite.NewDriver(ctx, c.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
		}
		logger.Info("using SQLite storage", "path", c.SQLitePath)
		return driver, nil

	default:
		logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil
	}
}

func parseTTL(raw string, logger *slog.Logger) time.Duration {
	if raw == "" {
		return 0
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("invalid cache ttl, using default", "ttl", raw, "error", err)
		return 0
	}
	return ttl
}
