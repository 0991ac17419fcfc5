package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// maxBodySize bounds multipart uploads, product images included.
const maxBodySize = 16 * 1024 * 1024

// Server is the API server for the shelf storefront
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server and registers its routes.
func NewServer(config Config, logger *slog.Logger) (*Server, error) {
	if config.Products == nil {
		return nil, errors.New("product service is required")
	}
	if config.Orders == nil {
		return nil, errors.New("order service is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             maxBodySize,
	})

	s := &Server{
		config: config,
		logger: logger.With("component", "api"),
		app:    app,
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/ping", s.handlePing)

	r := app.Group("/api")
	r.Get("/products", s.handleListProducts)
	r.Get("/products/search", s.handleSearchProducts)
	r.Post("/product/generate-description", s.handleGenerateDescription)
	r.Post("/product/generate-image", s.handleGenerateImage)
	r.Get("/product/:id", s.handleGetProduct)
	r.Get("/product/:id/image", s.handleGetProductImage)
	r.Post("/product", s.handleAddProduct)
	r.Put("/product/:id", s.handleUpdateProduct)
	r.Delete("/product/:id", s.handleDeleteProduct)

	r.Post("/orders/place", s.handlePlaceOrder)
	r.Get("/orders", s.handleListOrders)
	r.Get("/orders/:orderId", s.handleGetOrder)

	r.Get("/chat/ask", s.handleChatAsk)
	r.Get("/chat/debug", s.handleChatDebug)

	if config.MCPHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCPHandler))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}
