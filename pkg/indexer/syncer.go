package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/shelf/pkg/cache"
	"github.com/papercomputeco/shelf/pkg/catalog"
	"github.com/papercomputeco/shelf/pkg/vector"
)

// Index is the part of the vector store the indexer writes to.
type Index interface {
	Add(ctx context.Context, docs ...vector.Document) error
	DeleteWhere(ctx context.Context, filter vector.Filter) error
}

// Indexer is notified after relational writes commit. Implementations never
// report failures back to the caller.
type Indexer interface {
	ProductSaved(ctx context.Context, p *catalog.Product)
	ProductDeleted(ctx context.Context, id int64)
	OrderPlaced(ctx context.Context, o *catalog.Order)
}

// Syncer mirrors catalog mutations into the vector store inline.
type Syncer struct {
	index  Index
	cache  cache.Cache
	logger *slog.Logger
}

// NewSyncer creates a Syncer. c may be nil; when set it is cleared after
// every mutation so cached chat answers never outlive the data they quote.
func NewSyncer(index Index, c cache.Cache, logger *slog.Logger) *Syncer {
	return &Syncer{
		index:  index,
		cache:  c,
		logger: logger.With("component", "indexer"),
	}
}

// SyncProduct replaces the product's document.
func (s *Syncer) SyncProduct(ctx context.Context, p *catalog.Product) error {
	if err := s.index.DeleteWhere(ctx, productFilter(p.ID)); err != nil {
		return fmt.Errorf("deleting stale product document: %w", err)
	}
	if err := s.index.Add(ctx, ProductDocument(p)); err != nil {
		return fmt.Errorf("adding product document: %w", err)
	}
	return nil
}

// SyncOrder replaces the order's document.
func (s *Syncer) SyncOrder(ctx context.Context, o *catalog.Order) error {
	if err := s.index.DeleteWhere(ctx, orderFilter(o.OrderID)); err != nil {
		return fmt.Errorf("deleting stale order document: %w", err)
	}
	if err := s.index.Add(ctx, OrderDocument(o)); err != nil {
		return fmt.Errorf("adding order document: %w", err)
	}
	return nil
}

// RemoveProduct deletes the product's document.
func (s *Syncer) RemoveProduct(ctx context.Context, id int64) error {
	if err := s.index.DeleteWhere(ctx, productFilter(id)); err != nil {
		return fmt.Errorf("deleting product document: %w", err)
	}
	return nil
}

func (s *Syncer) ProductSaved(ctx context.Context, p *catalog.Product) {
	if err := s.SyncProduct(ctx, p); err != nil {
		s.logger.Error("failed to update product in vector store",
			"product_id", p.ID,
			"name", p.Name,
			"error", err,
		)
	} else {
		s.logger.Info("product updated in vector store", "product_id", p.ID, "name", p.Name)
	}
	s.clearCache(ctx)
}

func (s *Syncer) ProductDeleted(ctx context.Context, id int64) {
	if err := s.RemoveProduct(ctx, id); err != nil {
		s.logger.Error("failed to remove product from vector store",
			"product_id", id,
			"error", err,
		)
	} else {
		s.logger.Info("product removed from vector store", "product_id", id)
	}
	s.clearCache(ctx)
}

func (s *Syncer) OrderPlaced(ctx context.Context, o *catalog.Order) {
	if err := s.SyncOrder(ctx, o); err != nil {
		s.logger.Error("failed to add order to vector store",
			"order_id", o.OrderID,
			"error", err,
		)
	} else {
		s.logger.Info("order added to vector store", "order_id", o.OrderID)
	}
	s.clearCache(ctx)
}

func (s *Syncer) clearCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear chat cache", "error", err)
	}
}

var _ Indexer = (*Syncer)(nil)
