// Package mcp provides an MCP (Model Context Protocol) server exposing the
// shelf catalog and shopping assistant as tools.
package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/shelf/pkg/chatbot"
	"github.com/papercomputeco/shelf/pkg/products"
	"github.com/papercomputeco/shelf/pkg/utils"
)

type Config struct {
	// Products backs the search_products tool
	Products *products.Service

	// Chatbot backs the ask_shelf tool (optional)
	Chatbot *chatbot.Bot

	// VectorStore backs the similar_documents tool (optional)
	VectorStore chatbot.Searcher

	// Noop for empty MCP server
	Noop bool

	Logger *slog.Logger
}

type Server struct {
	config    Config
	logger    *slog.Logger
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the catalog tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "shelf",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Products == nil {
			return nil, errors.New("product service is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}
		s.logger = c.Logger.With("component", "mcp")

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        searchProductsToolName,
			Description: searchProductsDescription,
		}, s.handleSearchProducts)

		if c.Chatbot != nil {
			mcp.AddTool(mcpServer, &mcp.Tool{
				Name:        askToolName,
				Description: askDescription,
			}, s.handleAsk)
		}

		if c.VectorStore != nil {
			mcp.AddTool(mcpServer, &mcp.Tool{
				Name:        similarToolName,
				Description: similarDescription,
			}, s.handleSimilar)
		}
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// jsonResult mirrors structured output as JSON text for clients that only
// read text content.
func jsonResult(output any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(raw)},
		},
	}, nil
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}
