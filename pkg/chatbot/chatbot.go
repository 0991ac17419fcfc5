// Package chatbot answers shopper questions with retrieval augmented
// generation over the product and order documents in the vector store.
package chatbot

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/papercomputeco/shelf/pkg/cache"
	"github.com/papercomputeco/shelf/pkg/llm"
	"github.com/papercomputeco/shelf/pkg/prompt"
	"github.com/papercomputeco/shelf/pkg/vector"
	"github.com/papercomputeco/shelf/pkg/vectorstore"
)

// Default retrieval settings. The relaxed search only runs when the primary
// one finds nothing.
const (
	PrimaryTopK      = 5
	PrimaryThreshold = 0.7
	RelaxedTopK      = 10
	RelaxedThreshold = 0.3

	// DefaultCacheTTL is how long a cached answer is reused.
	DefaultCacheTTL = 10 * time.Minute

	previewLen = 200
)

// Searcher is the part of the vector store the bot reads from.
type Searcher interface {
	SimilaritySearch(ctx context.Context, req vectorstore.SearchRequest) ([]vector.QueryResult, error)
}

// Config wires the bot.
type Config struct {
	// Store supplies retrieval context. Required.
	Store Searcher

	// Completer answers the rendered prompt. Required.
	Completer llm.Completer

	// Prompts loads the RAG prompt template. Required.
	Prompts *prompt.Loader

	// Cache reuses answers to identical questions. Optional.
	Cache cache.Cache

	// CacheTTL defaults to DefaultCacheTTL.
	CacheTTL time.Duration

	// Retrieval overrides. Zero values take the package defaults.
	TopK             int
	Threshold        float64
	RelaxedTopK      int
	RelaxedThreshold float64

	Logger *slog.Logger
}

// Bot is the RAG chatbot.
type Bot struct {
	store     Searcher
	completer llm.Completer
	prompts   *prompt.Loader
	cache     cache.Cache
	cacheTTL  time.Duration
	primary   vectorstore.SearchRequest
	relaxed   vectorstore.SearchRequest
	logger    *slog.Logger
}

// New creates a Bot.
func New(c Config) (*Bot, error) {
	switch {
	case c.Store == nil:
		return nil, errors.New("vector store is required")
	case c.Completer == nil:
		return nil, errors.New("completer is required")
	case c.Prompts == nil:
		return nil, errors.New("prompt loader is required")
	}

	ttl := c.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Bot{
		store:     c.Store,
		completer: c.Completer,
		prompts:   c.Prompts,
		cache:     c.Cache,
		cacheTTL:  ttl,
		primary: vectorstore.SearchRequest{
			TopK:                cmp.Or(c.TopK, PrimaryTopK),
			SimilarityThreshold: cmp.Or(c.Threshold, PrimaryThreshold),
		},
		relaxed: vectorstore.SearchRequest{
			TopK:                cmp.Or(c.RelaxedTopK, RelaxedTopK),
			SimilarityThreshold: cmp.Or(c.RelaxedThreshold, RelaxedThreshold),
		},
		logger: c.Logger.With("component", "chatbot"),
	}, nil
}

// Ask answers query. It never fails: problems are reported in the answer
// text itself.
func (b *Bot) Ask(ctx context.Context, query string) string {
	b.logger.Info("received query", "query", query)

	if answer, ok := b.cached(ctx, query); ok {
		return answer
	}

	tmpl, err := b.prompts.Load(prompt.ChatbotRAG)
	if err != nil {
		b.logger.Error("failed to load prompt template", "error", err)
		return "Bot failed to load template: " + err.Error()
	}

	answer, err := b.answer(ctx, tmpl, query)
	if err != nil {
		b.logger.Error("unexpected error", "error", err)
		return "Bot encountered an error: " + err.Error()
	}

	b.logger.Info("generated response", "length", len(answer))
	b.remember(ctx, query, answer)
	return answer
}

func (b *Bot) answer(ctx context.Context, tmpl *prompt.Template, query string) (string, error) {
	retrieved, err := b.fetchContext(ctx, query)
	if err != nil {
		return "", err
	}

	if retrieved == "" {
		b.logger.Info("no relevant context found, lowering threshold", "query", query)
		retrieved, err = b.fetchRelaxedContext(ctx, query)
		if err != nil {
			return "", err
		}
	}

	rendered, err := tmpl.Render(map[string]string{
		"userQuery": query,
		"context":   retrieved,
	})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	return b.completer.Complete(ctx, rendered)
}

func (b *Bot) fetchContext(ctx context.Context, query string) (string, error) {
	req := b.primary
	req.Query = query

	results, err := b.store.SimilaritySearch(ctx, req)
	if err != nil {
		return "", fmt.Errorf("searching vector store: %w", err)
	}

	b.logger.Info("found relevant documents", "count", len(results))
	for _, r := range results {
		b.logger.Debug("retrieved document",
			"id", r.ID,
			"score", r.Score,
			"metadata", r.Metadata,
			"preview", preview(r.Content),
		)
	}

	retrieved := joinContents(results)
	b.logger.Info("assembled context", "length", len(retrieved))
	return retrieved, nil
}

func (b *Bot) fetchRelaxedContext(ctx context.Context, query string) (string, error) {
	req := b.relaxed
	req.Query = query

	results, err := b.store.SimilaritySearch(ctx, req)
	if err != nil {
		return "", fmt.Errorf("searching vector store: %w", err)
	}

	b.logger.Info("found documents with lower threshold", "count", len(results))
	return joinContents(results), nil
}

func (b *Bot) cached(ctx context.Context, query string) (string, bool) {
	if b.cache == nil {
		return "", false
	}

	answer, ok, err := b.cache.Get(ctx, query)
	if err != nil {
		b.logger.Warn("chat cache lookup failed", "error", err)
		return "", false
	}
	if ok {
		b.logger.Debug("chat cache hit", "query", query)
	}
	return answer, ok
}

func (b *Bot) remember(ctx context.Context, query, answer string) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Set(ctx, query, answer, b.cacheTTL); err != nil {
		b.logger.Warn("chat cache store failed", "error", err)
	}
}

func joinContents(results []vector.QueryResult) string {
	contents := make([]string, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content)
	}
	return strings.Join(contents, "\n\n")
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLen {
		return content
	}
	return string(runes[:previewLen])
}
