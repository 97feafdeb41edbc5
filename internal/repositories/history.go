package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"misswong/essay-grader/internal/models"
)

type HistoryRepository interface {
	Create(entry *models.HistoryEntry) error
	CreateBatch(entries []*models.HistoryEntry) error
	FindByID(id uuid.UUID) (*models.HistoryEntry, error)
	List(status models.HistoryStatus) ([]models.HistoryEntry, error)
	MarkCompleted(id uuid.UUID) error
	Clear() error
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// Create implements HistoryRepository.
func (r *historyRepository) Create(entry *models.HistoryEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create history entry: %w", err)
	}
	return nil
}

// CreateBatch implements HistoryRepository.
func (r *historyRepository) CreateBatch(entries []*models.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := r.db.Create(entries).Error; err != nil {
		return fmt.Errorf("failed to import history entries: %w", err)
	}
	return nil
}

// FindByID implements HistoryRepository.
func (r *historyRepository) FindByID(id uuid.UUID) (*models.HistoryEntry, error) {
	var entry models.HistoryEntry
	if err := r.db.Where("id = ?", id).First(&entry).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("history entry not found")
		}
		return nil, fmt.Errorf("failed to find history entry: %w", err)
	}
	return &entry, nil
}

// List implements HistoryRepository. Entries come back newest first, so a
// freshly finished essay sits at the top the way a prepend would put it.
// An empty status returns everything.
func (r *historyRepository) List(status models.HistoryStatus) ([]models.HistoryEntry, error) {
	query := r.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var entries []models.HistoryEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

// MarkCompleted implements HistoryRepository. Completion is the only
// mutation a stored entry ever sees.
func (r *historyRepository) MarkCompleted(id uuid.UUID) error {
	result := r.db.Model(&models.HistoryEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.HistoryCompleted,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark entry completed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("history entry not found")
	}
	return nil
}

// Clear implements HistoryRepository. Individual deletion is not offered;
// bulk clear is the only way out.
func (r *historyRepository) Clear() error {
	if err := r.db.Where("1 = 1").Delete(&models.HistoryEntry{}).Error; err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
