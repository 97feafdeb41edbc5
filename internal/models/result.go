package models

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	Status       string `json:"status"`
}

type BatchResponse struct {
	Items    []UploadItem `json:"items"`
	ActiveID string       `json:"active_id,omitempty"`
	Running  bool         `json:"running"`
}

type AnalyzeResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type SettingsRequest struct {
	APIKey string `json:"api_key" validate:"required"`
	Level  string `json:"level" validate:"required,oneof=Primary Secondary University"`
	Model  string `json:"model" validate:"required"`
}

type SettingsResponse struct {
	APIKeySet bool   `json:"api_key_set"`
	Level     string `json:"level"`
	Model     string `json:"model"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
}

// HistoryDetailResponse pairs a stored entry with the parsed display
// segments of its annotated text.
type HistoryDetailResponse struct {
	Entry    HistoryEntry `json:"entry"`
	Segments []Segment    `json:"segments"`
}

type SegmentKind string

const (
	SegmentPlain      SegmentKind = "plain"
	SegmentAnnotation SegmentKind = "annotation"
	SegmentDeletion   SegmentKind = "deletion"
	SegmentInsertion  SegmentKind = "insertion"
)

// Segment is one displayable span of annotated text: either plain text,
// an (original, correction, reason) triple, or a legacy del/ins span.
type Segment struct {
	Kind       SegmentKind `json:"kind"`
	Text       string      `json:"text,omitempty"`
	Original   string      `json:"original,omitempty"`
	Correction string      `json:"correction,omitempty"`
	Reason     string      `json:"reason,omitempty"`
}
