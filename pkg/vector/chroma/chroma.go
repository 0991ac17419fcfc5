// Package chroma provides a Chroma vector database driver implementation.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/papercomputeco/shelf/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection name for storing shelf embeddings.
	DefaultCollectionName = "shelf"

	// DefaultMaxRetries is how many times collection setup is attempted
	// while Chroma is starting up.
	DefaultMaxRetries = 5

	// DefaultRetryDelay is the first backoff delay. It doubles per attempt.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay caps the backoff delay.
	DefaultMaxRetryDelay = 5 * time.Second

	collectionsPath = "/api/v2/tenants/default_tenant/databases/default_database/collections"
)

// Driver implements vector.Driver using Chroma's REST API.
type Driver struct {
	baseURL        string
	collectionName string
	collectionID   string
	httpClient     *http.Client
	logger         *slog.Logger
}

// Config holds configuration for the Chroma driver.
type Config struct {
	// URL is the Chroma server URL (e.g., "http://localhost:8000").
	URL string

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// MaxRetries bounds connection attempts during startup.
	// Defaults to DefaultMaxRetries if zero.
	MaxRetries int

	// RetryDelay is the initial delay between attempts.
	// Defaults to DefaultRetryDelay if zero.
	RetryDelay time.Duration

	// MaxRetryDelay caps the exponential backoff.
	// Defaults to DefaultMaxRetryDelay if zero.
	MaxRetryDelay time.Duration
}

// NewDriver creates a new Chroma vector driver. Collection setup is retried
// with exponential backoff so shelf can start alongside a cold Chroma.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("chroma URL is required")
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	delay := c.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	maxDelay := c.MaxRetryDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxRetryDelay
	}

	d := &Driver{
		baseURL:        c.URL,
		collectionName: collectionName,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger.With("component", "chroma"),
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		collectionID, err := d.getOrCreateCollection(context.Background())
		if err == nil {
			d.collectionID = collectionID
			d.logger.Info("connected to Chroma",
				"url", c.URL,
				"collection", collectionName,
				"collection_id", collectionID,
			)
			return d, nil
		}

		lastErr = err
		if attempt == maxRetries {
			break
		}

		d.logger.Warn("chroma not ready, retrying",
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
		time.Sleep(delay)
		delay = min(delay*2, maxDelay)
	}

	return nil, fmt.Errorf("%w: getting or creating collection %q after %d attempts: %w",
		vector.ErrConnection, collectionName, maxRetries, lastErr)
}

// getOrCreateCollection gets an existing collection or creates a new one.
func (d *Driver) getOrCreateCollection(ctx context.Context) (string, error) {
	var collection chromaCollection

	err := d.do(ctx, http.MethodGet, collectionsPath+"/"+d.collectionName, nil, &collection)
	if err == nil {
		return collection.ID, nil
	}

	err = d.do(ctx, http.MethodPost, collectionsPath, chromaCreateCollectionRequest{
		Name:     d.collectionName,
		Metadata: map[string]any{"hnsw:space": "cosine"},
	}, &collection)
	if err != nil {
		return "", fmt.Errorf("creating collection: %w", err)
	}

	return collection.ID, nil
}

// Add upserts documents with their embeddings.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	req := chromaUpsertRequest{
		IDs:        make([]string, len(docs)),
		Embeddings: make([][]float32, len(docs)),
		Metadatas:  make([]map[string]string, len(docs)),
		Documents:  make([]string, len(docs)),
	}
	for i, doc := range docs {
		req.IDs[i] = doc.ID
		req.Embeddings[i] = doc.Embedding
		req.Metadatas[i] = doc.Metadata
		req.Documents[i] = doc.Content
	}

	if err := d.do(ctx, http.MethodPost, d.collectionPath("upsert"), req, nil); err != nil {
		return fmt.Errorf("upserting documents: %w", err)
	}

	d.logger.Debug("added documents to chroma", "count", len(docs))
	return nil
}

// Query finds the topK most similar documents to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	var queryResp chromaQueryResponse
	err := d.do(ctx, http.MethodPost, d.collectionPath("query"), chromaQueryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        topK,
		Include:         []string{"metadatas", "documents", "distances"},
	}, &queryResp)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}

	results := []vector.QueryResult{}

	// Process first group (we only query with one embedding)
	if len(queryResp.IDs) == 0 {
		return results, nil
	}

	ids := queryResp.IDs[0]
	distances := firstGroup(queryResp.Distances)
	metadatas := firstGroup(queryResp.Metadatas)
	documents := firstGroup(queryResp.Documents)

	for i, id := range ids {
		result := vector.QueryResult{
			Document: vector.Document{ID: id},
		}
		if i < len(metadatas) {
			result.Metadata = stringMetadata(metadatas[i])
		}
		if i < len(documents) && documents[i] != nil {
			result.Content = *documents[i]
		}

		// The collection uses cosine distance (1 - cosine similarity).
		if i < len(distances) {
			result.Score = 1 - distances[i]
		}

		results = append(results, result)
	}

	d.logger.Debug("queried chroma", "results", len(results))
	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var getResp chromaGetResponse
	err := d.do(ctx, http.MethodPost, d.collectionPath("get"), chromaGetRequest{
		IDs:     ids,
		Include: []string{"metadatas", "documents", "embeddings"},
	}, &getResp)
	if err != nil {
		return nil, fmt.Errorf("getting documents: %w", err)
	}

	docs := make([]vector.Document, len(getResp.IDs))
	for i, id := range getResp.IDs {
		docs[i] = vector.Document{ID: id}
		if i < len(getResp.Metadatas) {
			docs[i].Metadata = stringMetadata(getResp.Metadatas[i])
		}
		if i < len(getResp.Documents) && getResp.Documents[i] != nil {
			docs[i].Content = *getResp.Documents[i]
		}
		if i < len(getResp.Embeddings) {
			docs[i].Embedding = getResp.Embeddings[i]
		}
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := d.do(ctx, http.MethodPost, d.collectionPath("delete"), chromaDeleteRequest{IDs: ids}, nil); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	d.logger.Debug("deleted documents from chroma", "count", len(ids))
	return nil
}

// DeleteWhere removes every document whose metadata matches the filter.
func (d *Driver) DeleteWhere(ctx context.Context, filter vector.Filter) error {
	if len(filter) == 0 {
		return vector.ErrEmptyFilter
	}

	if err := d.do(ctx, http.MethodPost, d.collectionPath("delete"), chromaDeleteRequest{Where: whereClause(filter)}, nil); err != nil {
		return fmt.Errorf("deleting documents by filter: %w", err)
	}

	d.logger.Debug("deleted documents from chroma by filter", "filter", filter)
	return nil
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

func (d *Driver) collectionPath(op string) string {
	return fmt.Sprintf("%s/%s/%s", collectionsPath, d.collectionID, op)
}

// do sends a JSON request and decodes a JSON response into out when out is
// non-nil. Any status other than 200 or 201 is an error.
func (d *Driver) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// whereClause translates a filter to Chroma's where syntax. Multiple pairs
// are combined with $and.
func whereClause(filter vector.Filter) map[string]any {
	if len(filter) == 1 {
		for k, v := range filter {
			return map[string]any{k: v}
		}
	}

	clauses := make([]map[string]any, 0, len(filter))
	for k, v := range filter {
		clauses = append(clauses, map[string]any{k: v})
	}
	return map[string]any{"$and": clauses}
}

func stringMetadata(m map[string]any) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func firstGroup[T any](groups [][]T) []T {
	if len(groups) == 0 {
		return nil
	}
	return groups[0]
}

var _ vector.Driver = (*Driver)(nil)
