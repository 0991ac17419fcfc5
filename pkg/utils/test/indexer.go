package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/papercomputeco/shelf/pkg/catalog"
)

// MockIndexer is a test indexer.Indexer that records notifications, e.g.
// "product_saved:3" or "order_placed:ORD1234ABCD".
type MockIndexer struct {
	mu    sync.Mutex
	calls []string
}

func NewMockIndexer() *MockIndexer {
	return &MockIndexer{}
}

func (m *MockIndexer) ProductSaved(_ context.Context, p *catalog.Product) {
	m.record(fmt.Sprintf("product_saved:%d", p.ID))
}

func (m *MockIndexer) ProductDeleted(_ context.Context, id int64) {
	m.record(fmt.Sprintf("product_deleted:%d", id))
}

func (m *MockIndexer) OrderPlaced(_ context.Context, o *catalog.Order) {
	m.record("order_placed:" + o.OrderID)
}

// Calls returns a copy of the recorded notifications.
func (m *MockIndexer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.calls...)
}

func (m *MockIndexer) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, call)
}
