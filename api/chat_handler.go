package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// handleChatAsk handles GET /api/chat/ask?message=
// The bot never fails; problems are reported inside the answer text.
func (s *Server) handleChatAsk(c *fiber.Ctx) error {
	if s.config.Chatbot == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "chat is not configured",
		})
	}

	message := chatMessage(c)
	if message == "" {
		return badRequest(c, "message parameter is required")
	}

	answer := s.config.Chatbot.Ask(c.UserContext(), message)
	return c.SendString(answer)
}

// handleChatDebug reports how many documents match the message at a sweep
// of similarity thresholds.
func (s *Server) handleChatDebug(c *fiber.Ctx) error {
	if s.config.Chatbot == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "chat is not configured",
		})
	}

	message := chatMessage(c)
	if message == "" {
		return badRequest(c, "message parameter is required")
	}

	report, err := s.config.Chatbot.Debug(c.UserContext(), message)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(report)
}

// chatMessage returns the trimmed message parameter. Query values alias the
// request buffer, which fasthttp reuses, so the message is copied before it
// can outlive the request as a cache key.
func chatMessage(c *fiber.Ctx) string {
	return strings.TrimSpace(utils.CopyString(c.Query("message")))
}
