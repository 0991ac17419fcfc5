// Package vector provides interfaces and implementations for vector storage.
package vector

import "context"

// Metadata keys and values written by shelf documents.
const (
	MetaType         = "type"
	MetaProductID    = "productId"
	MetaProductName  = "productName"
	MetaCategory     = "category"
	MetaOrderID      = "orderId"
	MetaCustomerName = "customerName"
	MetaStatus       = "status"

	TypeProduct = "product"
	TypeOrder   = "order"
)

// Document represents a stored item with its embedding and metadata.
type Document struct {
	// ID is a unique identifier for the document.
	ID string

	// Content is the text that was embedded.
	Content string

	// Metadata holds flat string attributes used for filtering and display.
	Metadata map[string]string

	// Embedding is the vector representation of the document content.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score represents the similarity score (higher = more similar).
	Score float32
}

// Filter selects documents whose metadata holds every key/value pair.
// An empty filter matches every document.
type Filter map[string]string

// Matches reports whether metadata satisfies the filter.
func (f Filter) Matches(metadata map[string]string) bool {
	for k, v := range f {
		if got, ok := metadata[k]; !ok || got != v {
			return false
		}
	}
	return true
}

// Driver handles storage and retrieval of vector embeddings.
type Driver interface {
	// Add stores documents with their embeddings.
	// If a document with the same ID already exists, implementers should update
	// the document.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding,
	// ordered by descending score.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Get retrieves documents by their IDs. Missing IDs are skipped.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// DeleteWhere removes every document matching the filter. An empty
	// filter is rejected.
	DeleteWhere(ctx context.Context, filter Filter) error

	// Close releases any resources held by the driver.
	Close() error
}
