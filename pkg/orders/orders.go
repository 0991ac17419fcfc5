// Package orders places and lists customer orders.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/shelf/pkg/catalog"
	"github.com/papercomputeco/shelf/pkg/eventstream"
	"github.com/papercomputeco/shelf/pkg/indexer"
	"github.com/papercomputeco/shelf/pkg/storage"
)

// Config wires the order service.
type Config struct {
	// Driver is the relational store. Required.
	Driver storage.Driver

	// Indexer mirrors the order and the touched products. Optional.
	Indexer indexer.Indexer

	// Publisher receives an event per placed order. Optional.
	Publisher eventstream.Publisher

	Logger *slog.Logger
}

// Service is the order service.
type Service struct {
	driver    storage.Driver
	indexer   indexer.Indexer
	publisher eventstream.Publisher
	logger    *slog.Logger
}

// New creates an order service.
func New(c Config) (*Service, error) {
	if c.Driver == nil {
		return nil, errors.New("storage driver is required")
	}

	return &Service{
		driver:    c.Driver,
		indexer:   c.Indexer,
		publisher: c.Publisher,
		logger:    c.Logger.With("component", "orders"),
	}, nil
}

// Place validates req, decrements stock and saves the order in a single
// transaction. Indexing and event publication happen after commit and never
// fail the order.
func (s *Service) Place(ctx context.Context, req *catalog.OrderRequest) (*catalog.OrderResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", catalog.ErrInvalidOrder)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	order := &catalog.Order{
		OrderID:      catalog.NewOrderID(),
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Status:       catalog.StatusPlaced,
		OrderDate:    catalog.Today(),
	}

	var touched []*catalog.Product
	err := s.driver.InTx(ctx, func(tx storage.Driver) error {
		order.Items = make([]catalog.OrderItem, 0, len(req.Items))
		touched = touched[:0]
		seen := make(map[int64]int, len(req.Items))

		for _, item := range req.Items {
			p, err := tx.GetProduct(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if p.StockQuantity < item.Quantity {
				return fmt.Errorf("%w: %s has %d left, %d requested",
					ErrInsufficientStock, p.Name, p.StockQuantity, item.Quantity)
			}

			p.StockQuantity -= item.Quantity
			if err := tx.SaveProduct(ctx, p); err != nil {
				return fmt.Errorf("updating stock of product %d: %w", p.ID, err)
			}

			if i, ok := seen[p.ID]; ok {
				touched[i] = p
			} else {
				seen[p.ID] = len(touched)
				touched = append(touched, p)
			}
			order.Items = append(order.Items, catalog.NewOrderItem(p, item.Quantity))
		}

		if err := tx.SaveOrder(ctx, order); err != nil {
			return fmt.Errorf("saving order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		"order_id", order.OrderID,
		"items", len(order.Items),
		"total", order.Total().StringFixed(2),
	)

	if s.indexer != nil {
		for _, p := range touched {
			s.indexer.ProductSaved(ctx, p)
		}
		s.indexer.OrderPlaced(ctx, order)
	}
	s.publish(ctx, order)

	resp := order.Response()
	return &resp, nil
}

// List returns every order as its client view.
func (s *Service) List(ctx context.Context) ([]catalog.OrderResponse, error) {
	orders, err := s.driver.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]catalog.OrderResponse, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, o.Response())
	}
	return responses, nil
}

// Get returns one order by its public ID.
func (s *Service) Get(ctx context.Context, orderID string) (*catalog.OrderResponse, error) {
	o, err := s.driver.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := o.Response()
	return &resp, nil
}

func (s *Service) publish(ctx context.Context, order *catalog.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderPlaced(ctx, eventstream.NewOrderPlacedEvent(order)); err != nil {
		s.logger.Error("failed to publish order event",
			"order_id", order.OrderID,
			"error", err,
		)
	}
}
