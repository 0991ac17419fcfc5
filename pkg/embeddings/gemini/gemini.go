// Package gemini implements pkg/embeddings' Embedder on the Gemini API
// through google.golang.org/genai.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/papercomputeco/shelf/pkg/embeddings"
)

const (
	// DefaultEmbeddingModel is the default model used for embeddings.
	DefaultEmbeddingModel = "gemini-embedding-001"

	// taskType tunes vectors for semantic search over stored documents.
	taskType = "RETRIEVAL_DOCUMENT"
)

// Embedder wraps the Gemini embedding API.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions uint
}

// EmbedderConfig holds configuration for the Gemini embedder.
type EmbedderConfig struct {
	APIKey string

	// BaseURL overrides the Gemini API endpoint. Mostly useful for tests.
	BaseURL string

	// Model defaults to DefaultEmbeddingModel if empty.
	Model string

	// Dimensions sets the output dimensionality. Zero keeps the model default.
	Dimensions uint
}

// NewEmbedder creates a new Gemini embedder.
func NewEmbedder(ctx context.Context, cfg EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini embedder requires an API key", embeddings.ErrEmbedding)
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &Embedder{
		client:     client,
		model:      model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed converts text into a vector embedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	config := &genai.EmbedContentConfig{TaskType: taskType}
	if e.dimensions > 0 {
		config.OutputDimensionality = genai.Ptr(int32(e.dimensions))
	}

	result, err := e.client.Models.EmbedContent(ctx,
		e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embed failed: %v", embeddings.ErrEmbedding, err)
	}

	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", embeddings.ErrEmbedding)
	}

	return result.Embeddings[0].Values, nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
