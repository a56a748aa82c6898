package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"promptops/internal/models"
	"promptops/internal/services"
)

// respondError maps the error taxonomy to HTTP statuses. Anything outside
// the taxonomy (persistence failures included) becomes an opaque 500 so no
// file paths or internals leak.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *models.ValidationError
	var stateErr *models.InvalidStateError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Message,
		})
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.As(err, &stateErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": stateErr.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}

func parseListParams(c *fiber.Ctx) services.ListParams {
	return services.ListParams{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Model:    c.Query("model"),
		Sort:     c.Query("sort", "createdAt"),
		Order:    c.Query("order", "desc"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", 10),
	}
}
