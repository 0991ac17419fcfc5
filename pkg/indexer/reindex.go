package indexer

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/shelf/pkg/storage"
)

// reindexConcurrency bounds in-flight embedding calls during a rebuild.
const reindexConcurrency = 4

// ReindexStats summarizes a rebuild.
type ReindexStats struct {
	Products int
	Orders   int
	Failed   int
}

// Reindex rebuilds every product and order document from driver. Documents
// that fail to sync are counted and logged; only listing failures and
// cancellation abort the rebuild.
func (s *Syncer) Reindex(ctx context.Context, driver storage.Driver) (*ReindexStats, error) {
	products, err := driver.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	orders, err := driver.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	s.logger.Info("reindexing vector store",
		"products", len(products),
		"orders", len(orders),
	)

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reindexConcurrency)

	for _, p := range products {
		g.Go(func() error {
			if err := s.SyncProduct(gctx, p); err != nil {
				failed.Add(1)
				s.logger.Warn("failed to reindex product", "product_id", p.ID, "error", err)
			}
			return gctx.Err()
		})
	}

	for _, o := range orders {
		g.Go(func() error {
			if err := s.SyncOrder(gctx, o); err != nil {
				failed.Add(1)
				s.logger.Warn("failed to reindex order", "order_id", o.OrderID, "error", err)
			}
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reindexing: %w", err)
	}

	s.clearCache(ctx)

	stats := &ReindexStats{
		Products: len(products),
		Orders:   len(orders),
		Failed:   int(failed.Load()),
	}
	s.logger.Info("reindex complete",
		"products", stats.Products,
		"orders", stats.Orders,
		"failed", stats.Failed,
	)
	return stats, nil
}
