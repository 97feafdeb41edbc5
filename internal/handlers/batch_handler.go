package handlers

import (
	"github.com/gofiber/fiber/v2"

	"misswong/essay-grader/internal/models"
	"misswong/essay-grader/internal/repositories"
	"misswong/essay-grader/internal/services"
)

type BatchHandler struct {
	session      *services.BatchSession
	runner       services.BatchRunner
	settingsRepo repositories.SettingsRepository
}

func NewBatchHandler(
	session *services.BatchSession,
	runner services.BatchRunner,
	settingsRepo repositories.SettingsRepository,
) *BatchHandler {
	return &BatchHandler{
		session:      session,
		runner:       runner,
		settingsRepo: settingsRepo,
	}
}

// HandleGetBatch handles GET /batch.
func (h *BatchHandler) HandleGetBatch(c *fiber.Ctx) error {
	return c.JSON(models.BatchResponse{
		Items:    h.session.Items(),
		ActiveID: h.session.ActiveID(),
		Running:  h.runner.Running(),
	})
}

// HandleGetItem handles GET /batch/items/:id.
func (h *BatchHandler) HandleGetItem(c *fiber.Ctx) error {
	item, ok := h.session.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Upload not found",
		})
	}
	return c.JSON(item)
}

// HandleAnalyze handles POST /batch/analyze. Pending items (idle or
// errored) are processed sequentially in the background; the call returns
// immediately with the queued count.
func (h *BatchHandler) HandleAnalyze(c *fiber.Ctx) error {
	if h.settingsRepo.Get(models.SettingAPIKey, "") == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": services.ErrMissingAPIKey.Error(),
		})
	}

	pending := h.session.Pending()
	if len(pending) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No essays to analyze",
		})
	}

	if !h.runner.Enqueue() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Batch runner is shutting down",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(models.AnalyzeResponse{
		Status: "analyzing",
		Count:  len(pending),
	})
}
