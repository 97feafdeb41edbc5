package repositories

import (
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"misswong/essay-grader/internal/models"
)

// SettingsRepository is a thin key/value store for grading preferences.
// Reads fail soft to the caller's fallback and writes fail soft with a
// warning, so a broken storage backend degrades the app instead of
// crashing it.
type SettingsRepository interface {
	Get(key, fallback string) string
	Set(key, value string)
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get implements SettingsRepository.
func (r *settingsRepository) Get(key, fallback string) string {
	var setting models.Setting
	if err := r.db.Where("key = ?", key).First(&setting).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Printf("⚠️  Settings read failed for %s: %v", key, err)
		}
		return fallback
	}
	return setting.Value
}

// Set implements SettingsRepository.
func (r *settingsRepository) Set(key, value string) {
	setting := models.Setting{Key: key, Value: value}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		log.Printf("⚠️  Settings write failed for %s: %v", key, err)
	}
}
