package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/shelf/pkg/utils"
	"github.com/papercomputeco/shelf/pkg/vectorstore"
)

var (
	askToolName    = "ask_shelf"
	askDescription = "Ask the shelf shopping assistant a question about products, stock or orders. Answers are grounded in the catalog and order history."

	similarToolName    = "similar_documents"
	similarDescription = "Find catalog and order documents semantically similar to a query. Returns scored documents with their metadata."
)

const (
	defaultSimilarTopK = 5
	similarPreviewLen  = 300
)

// AskInput represents the input arguments for the ask_shelf tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question for the shopping assistant"`
}

// AskOutput represents the output of the ask_shelf tool.
type AskOutput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return errorResult("question is required"), AskOutput{}, nil
	}

	output := AskOutput{
		Question: question,
		Answer:   s.config.Chatbot.Ask(ctx, question),
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: output.Answer},
		},
	}, output, nil
}

// SimilarInput represents the input arguments for the similar_documents tool.
type SimilarInput struct {
	Query     string  `json:"query" jsonschema:"the text to find similar documents for"`
	TopK      int     `json:"top_k,omitempty" jsonschema:"number of results to return (default: 5)"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"minimum similarity score between 0 and 1 (default: 0)"`
}

// SimilarDocument is one scored vector store hit.
type SimilarDocument struct {
	ID       string            `json:"id"`
	Score    float32           `json:"score"`
	Preview  string            `json:"preview"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SimilarOutput represents the output of the similar_documents tool.
type SimilarOutput struct {
	Query     string            `json:"query"`
	Documents []SimilarDocument `json:"documents"`
	Count     int               `json:"count"`
}

func (s *Server) handleSimilar(ctx context.Context, _ *mcp.CallToolRequest, input SimilarInput) (*mcp.CallToolResult, SimilarOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = defaultSimilarTopK
	}

	s.logger.Debug("MCP similarity search",
		"query", input.Query,
		"top_k", topK,
		"threshold", input.Threshold,
	)

	results, err := s.config.VectorStore.SimilaritySearch(ctx, vectorstore.SearchRequest{
		Query:               input.Query,
		TopK:                topK,
		SimilarityThreshold: input.Threshold,
	})
	if err != nil {
		s.logger.Error("failed to query vector store", "error", err)
		return errorResult("Failed to query vector store: %v", err), SimilarOutput{}, nil
	}

	output := SimilarOutput{
		Query:     input.Query,
		Documents: make([]SimilarDocument, 0, len(results)),
	}
	for _, r := range results {
		output.Documents = append(output.Documents, SimilarDocument{
			ID:       r.ID,
			Score:    r.Score,
			Preview:  utils.Truncate(r.Content, similarPreviewLen),
			Metadata: r.Metadata,
		})
	}
	output.Count = len(output.Documents)

	result, err := jsonResult(output)
	if err != nil {
		return errorResult("Failed to serialize results: %v", err), SimilarOutput{}, nil
	}
	return result, output, nil
}
