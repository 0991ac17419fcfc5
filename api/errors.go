package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/shelf/pkg/catalog"
	"github.com/papercomputeco/shelf/pkg/orders"
	"github.com/papercomputeco/shelf/pkg/products"
	"github.com/papercomputeco/shelf/pkg/storage"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var notFound storage.NotFoundError
	switch {
	case errors.As(err, &notFound), errors.Is(err, products.ErrNoImage):
		return fiber.StatusNotFound
	case errors.Is(err, catalog.ErrInvalidProduct), errors.Is(err, catalog.ErrInvalidOrder):
		return fiber.StatusBadRequest
	case errors.Is(err, orders.ErrInsufficientStock):
		return fiber.StatusConflict
	case errors.Is(err, products.ErrDescriptionGenerationDisabled),
		errors.Is(err, products.ErrImageGenerationDisabled):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// fail answers with the status matching err. Server errors are logged.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err,
		)
	}
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}
