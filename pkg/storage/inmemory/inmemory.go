package inmemory

import (
	"cmp"
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/papercomputeco/shelf/pkg/catalog"
	"github.com/papercomputeco/shelf/pkg/storage"
)

// Driver implements storage.Driver using in-memory maps.
type Driver struct {
	// mu is a read write sync mutex for locking the maps and ID counters
	mu sync.RWMutex

	// txMu is held by InTx for the whole unit of work and by every write
	// outside it, so a rollback can only ever undo the transaction's own
	// writes.
	txMu sync.Mutex

	// products is keyed by product ID
	products map[int64]*catalog.Product

	// orders is keyed by the public order ID
	orders map[string]*catalog.Order

	nextProductID int64
	nextOrderID   int64
	nextItemID    int64
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		products: make(map[int64]*catalog.Product),
		orders:   make(map[string]*catalog.Order),
	}
}

// ListProducts returns every product ordered by ID.
func (s *Driver) ListProducts(_ context.Context) ([]*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedProducts(func(*catalog.Product) bool { return true }), nil
}

// GetProduct retrieves a product by its ID.
func (s *Driver) GetProduct(_ context.Context, id int64) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, storage.ProductNotFound(id)
	}

	return cloneProduct(p), nil
}

// SaveProduct inserts or updates a product.
func (s *Driver) SaveProduct(_ context.Context, p *catalog.Product) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	return s.saveProduct(p)
}

func (s *Driver) saveProduct(p *catalog.Product) error {
	if p == nil {
		return errors.New("cannot store nil product")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		s.nextProductID++
		p.ID = s.nextProductID
	} else if _, ok := s.products[p.ID]; !ok {
		return storage.ProductNotFound(p.ID)
	}

	s.products[p.ID] = cloneProduct(p)
	return nil
}

// DeleteProduct removes a product by its ID.
func (s *Driver) DeleteProduct(_ context.Context, id int64) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	return s.deleteProduct(id)
}

func (s *Driver) deleteProduct(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return storage.ProductNotFound(id)
	}

	delete(s.products, id)
	return nil
}

// SearchProducts returns products matching keyword in any text field.
func (s *Driver) SearchProducts(_ context.Context, keyword string) ([]*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(keyword)
	return s.sortedProducts(func(p *catalog.Product) bool {
		for _, field := range []string{p.Name, p.Description, p.Brand, p.Category} {
			if strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
		return false
	}), nil
}

// ListOrders returns every order ordered by ID.
func (s *Driver) ListOrders(_ context.Context) ([]*catalog.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]*catalog.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, cloneOrder(o))
	}
	slices.SortFunc(orders, func(a, b *catalog.Order) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return orders, nil
}

// GetOrder retrieves an order by its public order ID.
func (s *Driver) GetOrder(_ context.Context, orderID string) (*catalog.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, storage.OrderNotFound(orderID)
	}

	return cloneOrder(o), nil
}

// SaveOrder persists a new order and its items.
func (s *Driver) SaveOrder(_ context.Context, o *catalog.Order) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	return s.saveOrder(o)
}

func (s *Driver) saveOrder(o *catalog.Order) error {
	if o == nil {
		return errors.New("cannot store nil order")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.OrderID]; ok {
		return errors.New("order already exists: " + o.OrderID)
	}

	s.nextOrderID++
	o.ID = s.nextOrderID
	for i := range o.Items {
		s.nextItemID++
		o.Items[i].ID = s.nextItemID
	}

	s.orders[o.OrderID] = cloneOrder(o)
	return nil
}

// InTx snapshots the store, runs fn and restores the snapshot when fn fails.
// Writes from outside the transaction wait until it ends.
func (s *Driver) InTx(_ context.Context, fn func(tx storage.Driver) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(&txDriver{Driver: s}); err != nil {
		s.restore(snap)
		return err
	}

	return nil
}

// txDriver is the view handed to an InTx callback. Its writes run under the
// txMu already held by InTx.
type txDriver struct {
	*Driver
}

func (t *txDriver) SaveProduct(_ context.Context, p *catalog.Product) error {
	return t.saveProduct(p)
}

func (t *txDriver) DeleteProduct(_ context.Context, id int64) error {
	return t.deleteProduct(id)
}

func (t *txDriver) SaveOrder(_ context.Context, o *catalog.Order) error {
	return t.saveOrder(o)
}

// InTx joins the enclosing transaction.
func (t *txDriver) InTx(_ context.Context, fn func(tx storage.Driver) error) error {
	return fn(t)
}

// Count returns the number of products in the in-memory store.
func (s *Driver) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Close is a no-op for the in-memory driver.
func (s *Driver) Close() error {
	return nil
}

type snapshot struct {
	products      map[int64]*catalog.Product
	orders        map[string]*catalog.Order
	nextProductID int64
	nextOrderID   int64
	nextItemID    int64
}

// snapshot copies the maps. Stored values are never mutated in place, so
// a shallow copy of each map is enough.
func (s *Driver) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return snapshot{
		products:      maps.Clone(s.products),
		orders:        maps.Clone(s.orders),
		nextProductID: s.nextProductID,
		nextOrderID:   s.nextOrderID,
		nextItemID:    s.nextItemID,
	}
}

func (s *Driver) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = snap.products
	s.orders = snap.orders
	s.nextProductID = snap.nextProductID
	s.nextOrderID = snap.nextOrderID
	s.nextItemID = snap.nextItemID
}

// sortedProducts must be called with mu held.
func (s *Driver) sortedProducts(keep func(*catalog.Product) bool) []*catalog.Product {
	result := []*catalog.Product{}
	for _, p := range s.products {
		if keep(p) {
			result = append(result, cloneProduct(p))
		}
	}
	slices.SortFunc(result, func(a, b *catalog.Product) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return result
}

func cloneProduct(p *catalog.Product) *catalog.Product {
	c := *p
	c.ImageData = slices.Clone(p.ImageData)
	return &c
}

func cloneOrder(o *catalog.Order) *catalog.Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	return &c
}

var (
	_ storage.Driver = (*Driver)(nil)
	_ storage.Driver = (*txDriver)(nil)
)
