package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type HistoryStatus string

const (
	HistoryIncomplete HistoryStatus = "incomplete"
	HistoryCompleted  HistoryStatus = "completed"
)

// HistoryEntry is a persisted record of one past grading result,
// independent of the batch session that produced it.
type HistoryEntry struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	StudentName          string         `gorm:"type:text" json:"studentName"`
	Title                string         `gorm:"type:text" json:"title"`
	Score                int            `json:"score"`
	Date                 string         `gorm:"type:text" json:"date"`
	Level                GradingLevel   `gorm:"type:text" json:"level"`
	Model                string         `gorm:"type:text" json:"model"`
	Status               HistoryStatus  `gorm:"type:text;not null;default:'incomplete'" json:"status"`
	OCRText              string         `gorm:"type:text" json:"ocrText"`
	DiffText             string         `gorm:"type:text" json:"diffText"`
	CorrectedText        string         `gorm:"type:text" json:"correctedText"`
	Comments             string         `gorm:"type:text" json:"comments"`
	Suggestions          datatypes.JSON `json:"suggestions"`
	SpellingErrors       datatypes.JSON `json:"spellingErrors"`
	StrengthSummary      string         `gorm:"type:text" json:"strengthSummary"`
	ImprovementSummary   string         `gorm:"type:text" json:"improvementSummary"`
	ProcessedImageBase64 string         `gorm:"type:text" json:"processedImageBase64,omitempty"`
	CreatedAt            time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (HistoryEntry) TableName() string {
	return "history_entries"
}

// NewHistoryEntry builds the persisted record for a finished grading run.
func NewHistoryEntry(result *GradingResult, level GradingLevel, date string) *HistoryEntry {
	return &HistoryEntry{
		ID:                   uuid.New(),
		StudentName:          result.StudentName,
		Title:                result.Title,
		Score:                result.Score,
		Date:                 date,
		Level:                level,
		Model:                result.ModelUsed,
		Status:               HistoryIncomplete,
		OCRText:              result.OCRText,
		DiffText:             result.DiffText,
		CorrectedText:        result.CorrectedText,
		Comments:             result.Comments,
		Suggestions:          mustJSON(result.Suggestions),
		SpellingErrors:       mustJSON(result.SpellingErrors),
		StrengthSummary:      result.StrengthSummary,
		ImprovementSummary:   result.ImprovementSummary,
		ProcessedImageBase64: result.ProcessedImageBase64,
	}
}

func mustJSON(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(data)
}
