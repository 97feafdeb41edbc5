package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"misswong/essay-grader/internal/models"
	"misswong/essay-grader/internal/repositories"
	"misswong/essay-grader/internal/services"
)

type HistoryHandler struct {
	historyRepo repositories.HistoryRepository
}

func NewHistoryHandler(historyRepo repositories.HistoryRepository) *HistoryHandler {
	return &HistoryHandler{historyRepo: historyRepo}
}

// HandleList handles GET /history with an optional ?status= filter.
func (h *HistoryHandler) HandleList(c *fiber.Ctx) error {
	status := models.HistoryStatus(c.Query("status"))
	switch status {
	case "", models.HistoryIncomplete, models.HistoryCompleted:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status filter. Use 'incomplete' or 'completed'",
		})
	}

	entries, err := h.historyRepo.List(status)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}

	return c.JSON(entries)
}

// HandleGet handles GET /history/:id. The response pairs the stored entry
// with its annotated text parsed into display segments.
func (h *HistoryHandler) HandleGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid history entry ID format",
		})
	}

	entry, err := h.historyRepo.FindByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "History entry not found",
		})
	}

	annotated := entry.DiffText
	if annotated == "" {
		annotated = entry.CorrectedText
	}

	return c.JSON(models.HistoryDetailResponse{
		Entry:    *entry,
		Segments: services.ParseAnnotated(annotated),
	})
}

// HandleComplete handles POST /history/:id/complete.
func (h *HistoryHandler) HandleComplete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid history entry ID format",
		})
	}

	if err := h.historyRepo.MarkCompleted(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "History entry not found",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Marked as completed",
	})
}

// HandleClear handles DELETE /history.
func (h *HistoryHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.historyRepo.Clear(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear history",
		})
	}
	return c.JSON(fiber.Map{
		"message": "History cleared",
	})
}

// HandleExport handles GET /history/export: the full collection as a
// downloadable JSON array.
func (h *HistoryHandler) HandleExport(c *fiber.Ctx) error {
	entries, err := h.historyRepo.List("")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}

	filename := fmt.Sprintf("essay_grader_backup_%s.json", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.JSON(entries)
}

// importRecord mirrors the exported entry shape with every field optional,
// so backups from the old browser client (string ids included) import
// cleanly.
type importRecord struct {
	StudentName          string          `json:"studentName"`
	Title                string          `json:"title"`
	Score                int             `json:"score"`
	Date                 string          `json:"date"`
	Level                string          `json:"level"`
	Model                string          `json:"model"`
	Status               string          `json:"status"`
	OCRText              string          `json:"ocrText"`
	DiffText             string          `json:"diffText"`
	CorrectedText        string          `json:"correctedText"`
	Comments             string          `json:"comments"`
	Suggestions          json.RawMessage `json:"suggestions"`
	SpellingErrors       json.RawMessage `json:"spellingErrors"`
	StrengthSummary      string          `json:"strengthSummary"`
	ImprovementSummary   string          `json:"improvementSummary"`
	ProcessedImageBase64 string          `json:"processedImageBase64"`
}

// HandleImport handles POST /history/import. The payload must be a JSON
// array; each record gets a fresh identifier and defaults for missing
// fields, then the batch is prepended to existing history.
func (h *HistoryHandler) HandleImport(c *fiber.Ctx) error {
	var records []importRecord
	if err := json.Unmarshal(c.Body(), &records); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid JSON: must be an array []",
		})
	}

	today := time.Now().Format("2006-01-02")
	entries := make([]*models.HistoryEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, sanitizeImport(record, today))
	}

	if err := h.historyRepo.CreateBatch(entries); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to import history entries",
		})
	}

	return c.JSON(models.ImportResponse{Imported: len(entries)})
}

func sanitizeImport(record importRecord, today string) *models.HistoryEntry {
	if record.Date == "" {
		record.Date = today
	}
	if record.Level == "" {
		record.Level = string(models.LevelPrimary)
	}
	if record.StudentName == "" {
		record.StudentName = "Imported Student"
	}
	if record.Status == "" {
		record.Status = string(models.HistoryIncomplete)
	}

	return &models.HistoryEntry{
		ID:                   uuid.New(),
		StudentName:          record.StudentName,
		Title:                record.Title,
		Score:                record.Score,
		Date:                 record.Date,
		Level:                models.GradingLevel(record.Level),
		Model:                record.Model,
		Status:               models.HistoryStatus(record.Status),
		OCRText:              record.OCRText,
		DiffText:             record.DiffText,
		CorrectedText:        record.CorrectedText,
		Comments:             record.Comments,
		Suggestions:          jsonOrEmptyList(record.Suggestions),
		SpellingErrors:       jsonOrEmptyList(record.SpellingErrors),
		StrengthSummary:      record.StrengthSummary,
		ImprovementSummary:   record.ImprovementSummary,
		ProcessedImageBase64: record.ProcessedImageBase64,
	}
}

// jsonOrEmptyList keeps an imported value only if it is a JSON array;
// anything else (missing, string, object) falls back to an empty list so
// the array-typed columns never serve a non-array to readers.
func jsonOrEmptyList(raw json.RawMessage) datatypes.JSON {
	var list []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &list) != nil || list == nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}
