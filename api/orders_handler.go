package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/shelf/pkg/catalog"
)

// handlePlaceOrder handles POST /api/orders/place with a JSON OrderRequest.
func (s *Server) handlePlaceOrder(c *fiber.Ctx) error {
	req := &catalog.OrderRequest{}
	if err := c.BodyParser(req); err != nil {
		return badRequest(c, "invalid order request: "+err.Error())
	}

	resp, err := s.config.Orders.Place(c.UserContext(), req)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (s *Server) handleListOrders(c *fiber.Ctx) error {
	list, err := s.config.Orders.List(c.UserContext())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(list)
}

func (s *Server) handleGetOrder(c *fiber.Ctx) error {
	resp, err := s.config.Orders.Get(c.UserContext(), c.Params("orderId"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(resp)
}
