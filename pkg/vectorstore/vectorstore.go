// Package vectorstore pairs a vector.Driver with an embeddings.Embedder so
// callers work with text instead of raw embeddings.
package vectorstore

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/papercomputeco/shelf/pkg/embeddings"
	"github.com/papercomputeco/shelf/pkg/vector"
)

// DefaultTopK is used when a search request leaves TopK unset.
const DefaultTopK = 4

// SearchRequest describes a similarity search.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`

	// SimilarityThreshold drops results scoring below it. Zero accepts all.
	SimilarityThreshold float64 `json:"threshold,omitempty"`
}

// Store is the embedding-aware façade over a vector driver.
type Store struct {
	driver   vector.Driver
	embedder embeddings.Embedder
	logger   *slog.Logger
}

// New creates a Store.
func New(driver vector.Driver, embedder embeddings.Embedder, logger *slog.Logger) *Store {
	return &Store{
		driver:   driver,
		embedder: embedder,
		logger:   logger.With("component", "vectorstore"),
	}
}

// Add embeds every document that has no embedding yet and upserts them.
func (s *Store) Add(ctx context.Context, docs ...vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	for i := range docs {
		if len(docs[i].Embedding) > 0 {
			continue
		}

		emb, err := s.embedder.Embed(ctx, docs[i].Content)
		if err != nil {
			return fmt.Errorf("embedding document %s: %w", docs[i].ID, err)
		}
		docs[i].Embedding = emb
	}

	if err := s.driver.Add(ctx, docs); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}
	return nil
}

// SimilaritySearch embeds the query and returns the closest documents whose
// score reaches the threshold, best first.
func (s *Store) SimilaritySearch(ctx context.Context, req SearchRequest) ([]vector.QueryResult, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	s.logger.Debug("similarity search",
		"query", req.Query,
		"top_k", topK,
		"threshold", req.SimilarityThreshold,
	)

	emb, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := s.driver.Query(ctx, emb, topK)
	if err != nil {
		return nil, fmt.Errorf("querying vector store: %w", err)
	}

	kept := make([]vector.QueryResult, 0, len(results))
	for _, r := range results {
		if float64(r.Score) < req.SimilarityThreshold {
			continue
		}
		kept = append(kept, r)
	}

	slices.SortStableFunc(kept, func(a, b vector.QueryResult) int {
		return cmp.Compare(b.Score, a.Score)
	})

	return kept, nil
}

// Delete removes documents by ID.
func (s *Store) Delete(ctx context.Context, ids ...string) error {
	if err := s.driver.Delete(ctx, ids); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	return nil
}

// DeleteWhere removes every document matching the metadata filter.
func (s *Store) DeleteWhere(ctx context.Context, filter vector.Filter) error {
	if err := s.driver.DeleteWhere(ctx, filter); err != nil {
		return fmt.Errorf("deleting documents by filter: %w", err)
	}
	return nil
}

// Close closes the driver and the embedder.
func (s *Store) Close() error {
	return cmp.Or(s.driver.Close(), s.embedder.Close())
}
