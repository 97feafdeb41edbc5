package models

import "time"

// Setting is one key/value row of persisted configuration. The keys match
// the browser client this service replaced so exported data stays portable.
type Setting struct {
	Key       string    `gorm:"type:text;primary_key" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

const (
	SettingAPIKey = "essay_grader_api_key"
	SettingLevel  = "essay_grader_level"
	SettingModel  = "essay_grader_model"
)
