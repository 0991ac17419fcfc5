package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/shelf/pkg/vector"
)

// MockVectorDriver is a test vector driver. Query returns Results as-is
// (truncated to topK); Add, Delete and DeleteWhere record their calls.
type MockVectorDriver struct {
	mu sync.Mutex

	Documents []vector.Document
	Results   []vector.QueryResult

	// Calls records each mutating call in order, e.g. "add:product-1" or
	// "delete_where:productId=1".
	Calls []string

	// QueriedTopK records the topK of each Query call.
	QueriedTopK []int

	// QueryFn, when set, replaces the canned Results.
	QueryFn func(topK int) []vector.QueryResult

	FailAdd         bool
	FailQuery       bool
	FailDeleteWhere bool
}

var ErrMockVector = errors.New("mock vector failure")

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		Documents: make([]vector.Document, 0),
		Results:   make([]vector.QueryResult, 0),
	}
}

func (m *MockVectorDriver) Add(_ context.Context, docs []vector.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAdd {
		return ErrMockVector
	}
	for _, doc := range docs {
		m.Calls = append(m.Calls, "add:"+doc.ID)
	}
	m.Documents = append(m.Documents, docs...)
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, _ []float32, topK int) ([]vector.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueriedTopK = append(m.QueriedTopK, topK)
	if m.FailQuery {
		return nil, ErrMockVector
	}

	results := m.Results
	if m.QueryFn != nil {
		results = m.QueryFn(topK)
	}
	if len(results) < topK {
		return results, nil
	}
	return results[:topK], nil
}

func (m *MockVectorDriver) Get(_ context.Context, _ []string) ([]vector.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Documents, nil
}

func (m *MockVectorDriver) Delete(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		m.Calls = append(m.Calls, "delete:"+id)
	}
	return nil
}

func (m *MockVectorDriver) DeleteWhere(_ context.Context, filter vector.Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailDeleteWhere {
		return ErrMockVector
	}
	for k, v := range filter {
		m.Calls = append(m.Calls, "delete_where:"+k+"="+v)
	}
	return nil
}

// CallLog returns a copy of the recorded calls.
func (m *MockVectorDriver) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.Calls...)
}

func (m *MockVectorDriver) Close() error {
	return nil
}
