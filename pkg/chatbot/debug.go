package chatbot

import (
	"context"
	"fmt"

	"github.com/papercomputeco/shelf/pkg/vector"
	"github.com/papercomputeco/shelf/pkg/vectorstore"
)

const debugTopK = 3

// DebugThresholds are swept from strict to loose by Debug.
var DebugThresholds = []float64{0.9, 0.7, 0.5, 0.3, 0.1}

// DebugHit is one document found during a sweep.
type DebugHit struct {
	Type      string  `json:"type"`
	ID        string  `json:"id"`
	OrderID   string  `json:"orderId,omitempty"`
	ProductID string  `json:"productId,omitempty"`
	Score     float32 `json:"score"`
}

// DebugLevel is the outcome of one threshold.
type DebugLevel struct {
	Threshold float64    `json:"threshold"`
	Count     int        `json:"count"`
	Hits      []DebugHit `json:"hits"`
}

// DebugReport shows how retrieval for a query reacts to the threshold.
type DebugReport struct {
	Query  string       `json:"query"`
	Levels []DebugLevel `json:"levels"`
}

// Debug runs the query against every DebugThresholds entry.
func (b *Bot) Debug(ctx context.Context, query string) (*DebugReport, error) {
	report := &DebugReport{
		Query:  query,
		Levels: make([]DebugLevel, 0, len(DebugThresholds)),
	}

	for _, threshold := range DebugThresholds {
		results, err := b.store.SimilaritySearch(ctx, vectorstore.SearchRequest{
			Query:               query,
			TopK:                debugTopK,
			SimilarityThreshold: threshold,
		})
		if err != nil {
			return nil, fmt.Errorf("searching at threshold %.1f: %w", threshold, err)
		}

		level := DebugLevel{
			Threshold: threshold,
			Count:     len(results),
			Hits:      make([]DebugHit, 0, len(results)),
		}
		for _, r := range results {
			level.Hits = append(level.Hits, DebugHit{
				Type:      r.Metadata[vector.MetaType],
				ID:        r.ID,
				OrderID:   r.Metadata[vector.MetaOrderID],
				ProductID: r.Metadata[vector.MetaProductID],
				Score:     r.Score,
			})
		}

		b.logger.Debug("vector store debug",
			"query", query,
			"threshold", threshold,
			"count", level.Count,
		)
		report.Levels = append(report.Levels, level)
	}

	return report, nil
}
