package handlers

import (
	"github.com/gofiber/fiber/v2"

	"promptops/internal/models"
	"promptops/internal/services"
)

type EvaluationHandler struct {
	evaluator services.EvaluatorService
}

func NewEvaluationHandler(evaluator services.EvaluatorService) *EvaluationHandler {
	return &EvaluationHandler{
		evaluator: evaluator,
	}
}

// HandleList handles GET /evaluations
func (h *EvaluationHandler) HandleList(c *fiber.Ctx) error {
	response, err := h.evaluator.List(parseListParams(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(response)
}

// HandleCreate handles POST /evaluations
func (h *EvaluationHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateEvaluationRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	evaluation, err := h.evaluator.Create(&req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"evaluation": evaluation,
	})
}

// HandleGet handles GET /evaluations/:id
func (h *EvaluationHandler) HandleGet(c *fiber.Ctx) error {
	evaluation, err := h.evaluator.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(evaluation)
}

// HandleDelete handles DELETE /evaluations/:id
func (h *EvaluationHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.evaluator.Delete(c.Params("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Evaluation deleted successfully",
	})
}

// HandleRun handles POST /evaluations/:id/run
func (h *EvaluationHandler) HandleRun(c *fiber.Ctx) error {
	if err := h.evaluator.Run(c.Params("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Evaluation started",
	})
}
