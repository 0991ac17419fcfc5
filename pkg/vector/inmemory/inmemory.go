// Package inmemory provides a process-local vector driver that ranks
// documents by cosine similarity.
package inmemory

import (
	"cmp"
	"context"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/papercomputeco/shelf/pkg/vector"
)

// Driver implements vector.Driver with a map guarded by a mutex.
type Driver struct {
	mu   sync.RWMutex
	docs map[string]vector.Document
}

// NewDriver creates an empty in-memory vector driver.
func NewDriver() *Driver {
	return &Driver{
		docs: make(map[string]vector.Document),
	}
}

// Add upserts documents by ID.
func (d *Driver) Add(_ context.Context, docs []vector.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		d.docs[doc.ID] = cloneDocument(doc)
	}
	return nil
}

// Query scans every document and returns the topK by cosine similarity.
func (d *Driver) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	d.mu.RLock()
	results := make([]vector.QueryResult, 0, len(d.docs))
	for _, doc := range d.docs {
		results = append(results, vector.QueryResult{
			Document: cloneDocument(doc),
			Score:    CosineSimilarity(embedding, doc.Embedding),
		})
	}
	d.mu.RUnlock()

	slices.SortFunc(results, func(a, b vector.QueryResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Get retrieves documents by their IDs, skipping unknown ones.
func (d *Driver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	docs := []vector.Document{}
	for _, id := range ids {
		if doc, ok := d.docs[id]; ok {
			docs = append(docs, cloneDocument(doc))
		}
	}
	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(_ context.Context, ids []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range ids {
		delete(d.docs, id)
	}
	return nil
}

// DeleteWhere removes every document whose metadata matches the filter.
func (d *Driver) DeleteWhere(_ context.Context, filter vector.Filter) error {
	if len(filter) == 0 {
		return vector.ErrEmptyFilter
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	maps.DeleteFunc(d.docs, func(_ string, doc vector.Document) bool {
		return filter.Matches(doc.Metadata)
	})
	return nil
}

// Len returns the number of stored documents.
func (d *Driver) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.docs)
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when the lengths differ or either vector is zero.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func cloneDocument(doc vector.Document) vector.Document {
	doc.Metadata = maps.Clone(doc.Metadata)
	doc.Embedding = slices.Clone(doc.Embedding)
	return doc
}

var _ vector.Driver = (*Driver)(nil)
