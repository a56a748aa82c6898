package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"promptops/internal/models"
	"promptops/internal/services"
)

type MigrationHandler struct {
	migrator       services.MigratorService
	storageService services.StorageService
	pdfParser      services.PDFParserService
	maxFileSize    int64
}

func NewMigrationHandler(
	migrator services.MigratorService,
	storageService services.StorageService,
	pdfParser services.PDFParserService,
	maxFileSize int64,
) *MigrationHandler {
	return &MigrationHandler{
		migrator:       migrator,
		storageService: storageService,
		pdfParser:      pdfParser,
		maxFileSize:    maxFileSize,
	}
}

// HandleList handles GET /migrations
func (h *MigrationHandler) HandleList(c *fiber.Ctx) error {
	response, err := h.migrator.List(parseListParams(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(response)
}

// HandleCreate handles POST /migrations
func (h *MigrationHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateMigrationRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	migration, err := h.migrator.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(migration)
}

// HandleGet handles GET /migrations/:id
func (h *MigrationHandler) HandleGet(c *fiber.Ctx) error {
	migration, err := h.migrator.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(migration)
}

// HandleDelete handles DELETE /migrations/:id
func (h *MigrationHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.migrator.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Migration deleted successfully",
	})
}

// HandleStart handles POST /migrations/:id/start
func (h *MigrationHandler) HandleStart(c *fiber.Ctx) error {
	migration, err := h.migrator.Start(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"migration": migration,
	})
}

// HandleImport handles POST /migrations/import — creates a DRAFT migration
// from a PDF of prompts, one prompt per non-empty line.
func (h *MigrationHandler) HandleImport(c *fiber.Ctx) error {
	file, err := c.FormFile("prompts")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "prompts file is required",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Prompts file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	filename, filePath, err := h.storageService.SaveFile(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save prompts file: %v", err),
		})
	}
	defer h.storageService.DeleteFile(filename)

	prompts, err := h.pdfParser.ExtractPromptLines(filePath)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to extract prompts: %v", err),
		})
	}

	req := models.CreateMigrationRequest{
		Name:        c.FormValue("name"),
		SourceModel: c.FormValue("sourceModel"),
		TargetModel: c.FormValue("targetModel"),
		Notes:       c.FormValue("notes"),
		Prompts:     prompts,
	}

	migration, err := h.migrator.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(migration)
}
