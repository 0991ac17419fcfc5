// Package storage
package storage

import (
	"context"

	"github.com/papercomputeco/shelf/pkg/catalog"
)

// Driver defines the interface for persisting and retrieving catalog entities
// in a relational backend. Implementations must be safe for concurrent use.
type Driver interface {
	// ListProducts returns every product ordered by ID.
	ListProducts(ctx context.Context) ([]*catalog.Product, error)

	// GetProduct retrieves a product by its ID.
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)

	// SaveProduct inserts the product when its ID is zero and updates it
	// otherwise. The assigned ID is written back to p.
	SaveProduct(ctx context.Context, p *catalog.Product) error

	// DeleteProduct removes a product by its ID.
	DeleteProduct(ctx context.Context, id int64) error

	// SearchProducts returns products whose name, description, brand or
	// category contains keyword, ignoring case.
	SearchProducts(ctx context.Context, keyword string) ([]*catalog.Product, error)

	// ListOrders returns every order with its items, ordered by ID.
	ListOrders(ctx context.Context) ([]*catalog.Order, error)

	// GetOrder retrieves an order by its public order ID.
	GetOrder(ctx context.Context, orderID string) (*catalog.Order, error)

	// SaveOrder persists a new order and its items. IDs are written back.
	SaveOrder(ctx context.Context, o *catalog.Order) error

	// InTx runs fn against a transactional view of the driver. The unit of
	// work is committed when fn returns nil and rolled back otherwise.
	InTx(ctx context.Context, fn func(tx Driver) error) error

	// Close closes the store and releases any resources.
	Close() error
}
