package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"misswong/essay-grader/internal/models"
	"misswong/essay-grader/internal/repositories"
	"misswong/essay-grader/internal/services"
)

type UploadHandler struct {
	session        *services.BatchSession
	storageService services.StorageService
	settingsRepo   repositories.SettingsRepository
	maxFileSize    int64
}

func NewUploadHandler(
	session *services.BatchSession,
	storageService services.StorageService,
	settingsRepo repositories.SettingsRepository,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		session:        session,
		storageService: storageService,
		settingsRepo:   settingsRepo,
		maxFileSize:    maxFileSize,
	}
}

// HandleUpload handles POST /uploads. Each image in the multipart form
// becomes one idle batch item. Acceptance is all-or-nothing: one rejected
// file refuses the whole batch, leaving disk and session untouched.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	if h.settingsRepo.Get(models.SettingAPIKey, "") == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": services.ErrMissingAPIKey.Error(),
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	files := form.File["images"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No valid files uploaded. Please upload 'images' as JPEG or PNG files.",
		})
	}

	// Vet the whole batch before saving anything: a rejected file must
	// leave no sibling on disk or in the session.
	for _, file := range files {
		if file.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("File %s too large. Max size: %d bytes", file.Filename, h.maxFileSize),
			})
		}
		if err := h.storageService.ValidateFile(file); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("invalid file %s: %v", file.Filename, err),
			})
		}
	}

	items := make([]models.UploadItem, 0, len(files))
	for _, file := range files {
		filename, filePath, err := h.storageService.SaveFile(file)
		if err != nil {
			// Roll back everything saved so far; the session is untouched.
			for _, saved := range items {
				_ = h.storageService.DeleteFile(saved.Filename)
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("failed to save file %s: %v", file.Filename, err),
			})
		}

		items = append(items, models.UploadItem{
			ID:               uuid.New().String(),
			Filename:         filename,
			OriginalFileName: file.Filename,
			FilePath:         filePath,
			Status:           models.UploadIdle,
		})
	}

	responses := make([]models.UploadResponse, 0, len(items))
	for _, item := range items {
		h.session.Add(item)
		responses = append(responses, models.UploadResponse{
			ID:           item.ID,
			Filename:     item.Filename,
			OriginalName: item.OriginalFileName,
			Status:       string(item.Status),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Files uploaded successfully",
		"items":   responses,
	})
}

// HandleRemoveUpload handles DELETE /uploads/:id. Removing an item before
// its turn arrives skips it; an item mid-analysis cannot be removed.
func (h *UploadHandler) HandleRemoveUpload(c *fiber.Ctx) error {
	id := c.Params("id")

	item, err := h.session.Remove(id)
	if err != nil {
		if err == services.ErrItemNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Upload not found",
			})
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if item.Filename != "" {
		// Best effort; the row is already gone.
		_ = h.storageService.DeleteFile(item.Filename)
	}

	return c.JSON(fiber.Map{
		"message": "Upload removed",
	})
}
