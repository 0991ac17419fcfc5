package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/shelf/pkg/catalog"
)

var (
	searchProductsToolName    = "search_products"
	searchProductsDescription = "Search the product catalog by keyword. Matches name, description, brand and category. An empty keyword lists every product."
)

// SearchProductsInput represents the input arguments for the search_products tool.
type SearchProductsInput struct {
	Keyword string `json:"keyword" jsonschema:"the keyword to match against product fields"`
}

// ProductSummary is a catalog entry without its image.
type ProductSummary struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Brand         string `json:"brand"`
	Category      string `json:"category"`
	Price         string `json:"price"`
	Available     bool   `json:"available"`
	StockQuantity int    `json:"stock_quantity"`
	StockStatus   string `json:"stock_status"`
}

// SearchProductsOutput represents the output of the search_products tool.
type SearchProductsOutput struct {
	Keyword  string           `json:"keyword"`
	Products []ProductSummary `json:"products"`
	Count    int              `json:"count"`
}

func (s *Server) handleSearchProducts(ctx context.Context, _ *mcp.CallToolRequest, input SearchProductsInput) (*mcp.CallToolResult, SearchProductsOutput, error) {
	s.logger.Debug("MCP product search", "keyword", input.Keyword)

	list, err := s.config.Products.Search(ctx, input.Keyword)
	if err != nil {
		s.logger.Error("failed to search products", "error", err)
		return errorResult("Failed to search products: %v", err), SearchProductsOutput{}, nil
	}

	output := SearchProductsOutput{
		Keyword:  input.Keyword,
		Products: make([]ProductSummary, 0, len(list)),
	}
	for _, p := range list {
		output.Products = append(output.Products, summarize(p))
	}
	output.Count = len(output.Products)

	result, err := jsonResult(output)
	if err != nil {
		return errorResult("Failed to serialize results: %v", err), SearchProductsOutput{}, nil
	}
	return result, output, nil
}

func summarize(p *catalog.Product) ProductSummary {
	return ProductSummary{
		ID:            p.ID,
		Name:          p.Name,
		Brand:         p.Brand,
		Category:      p.Category,
		Price:         p.Price.StringFixed(2),
		Available:     p.ProductAvailable,
		StockQuantity: p.StockQuantity,
		StockStatus:   p.StockStatus(),
	}
}
