package models

type UploadStatus string

const (
	UploadIdle      UploadStatus = "idle"
	UploadAnalyzing UploadStatus = "analyzing"
	UploadDone      UploadStatus = "done"
	UploadError     UploadStatus = "error"
)

// UploadItem is one essay image waiting for, or having undergone, analysis.
// Items live only inside the current batch session and are never persisted.
type UploadItem struct {
	ID               string         `json:"id"`
	Filename         string         `json:"filename"`
	OriginalFileName string         `json:"original_filename"`
	FilePath         string         `json:"-"`
	Status           UploadStatus   `json:"status"`
	Result           *GradingResult `json:"result,omitempty"`
	ErrorMsg         string         `json:"error_msg,omitempty"`
}
