package models

type GradingLevel string

const (
	LevelPrimary    GradingLevel = "Primary"
	LevelSecondary  GradingLevel = "Secondary"
	LevelUniversity GradingLevel = "University"
)

// NormalizeLevel constrains arbitrary input to one of the three grading
// levels, falling back to Secondary.
func NormalizeLevel(level string) GradingLevel {
	switch GradingLevel(level) {
	case LevelPrimary:
		return LevelPrimary
	case LevelUniversity:
		return LevelUniversity
	default:
		return LevelSecondary
	}
}

// GradingResult is the decoded AI response for one essay. The score is
// 0-100 by the model's own contract and is not clamped locally.
type GradingResult struct {
	StudentName        string   `json:"studentName"`
	OCRText            string   `json:"ocrText"`
	Title              string   `json:"title"`
	Score              int      `json:"score"`
	DiffText           string   `json:"diffText"`
	CorrectedText      string   `json:"correctedText"`
	Comments           string   `json:"comments"`
	Suggestions        []string `json:"suggestions"`
	SpellingErrors     []string `json:"spellingErrors"`
	StrengthSummary    string   `json:"strengthSummary"`
	ImprovementSummary string   `json:"improvementSummary"`

	// Attached by the orchestrator after decoding.
	ProcessedImageBase64 string `json:"processedImageBase64,omitempty"`
	ModelUsed            string `json:"modelUsed,omitempty"`
}
