package handlers

import (
	"github.com/gofiber/fiber/v2"

	"promptops/internal/services"
)

type PromptHandler struct {
	index services.PromptIndex
}

func NewPromptHandler(index services.PromptIndex) *PromptHandler {
	return &PromptHandler{
		index: index,
	}
}

// HandleSearchSimilar handles GET /prompts/similar
func (h *PromptHandler) HandleSearchSimilar(c *fiber.Ctx) error {
	if h.index == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "prompt index not configured",
		})
	}

	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "q is required",
		})
	}

	limit := c.QueryInt("limit", 5)
	if limit < 1 {
		limit = 5
	}

	prompts, err := h.index.SearchSimilar(c.Context(), query, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"prompts": prompts,
	})
}
