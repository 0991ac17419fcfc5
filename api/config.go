// Package api provides the HTTP API server for the shelf storefront: the
// product catalog, order placement and the shopping assistant.
package api

import (
	"net/http"

	"github.com/papercomputeco/shelf/pkg/chatbot"
	"github.com/papercomputeco/shelf/pkg/orders"
	"github.com/papercomputeco/shelf/pkg/products"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// CORSOrigins is a comma separated list of allowed browser origins.
	CORSOrigins string

	// Products serves the catalog routes. Required.
	Products *products.Service

	// Orders serves the order routes. Required.
	Orders *orders.Service

	// Chatbot answers /api/chat questions. Optional; the chat routes answer
	// 503 without it.
	Chatbot *chatbot.Bot

	// MCPHandler is mounted at /mcp when set.
	MCPHandler http.Handler
}
