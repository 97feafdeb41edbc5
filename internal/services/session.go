package services

import (
	"errors"
	"sync"

	"misswong/essay-grader/internal/models"
)

var ErrItemNotFound = errors.New("upload item not found")

// BatchSession owns the upload items of the current analysis run. All
// mutation replaces the whole collection under one lock so orchestrator
// updates and user-driven deletions never lose each other's writes.
// Items are session-scoped and never persisted.
type BatchSession struct {
	mu       sync.Mutex
	items    []models.UploadItem
	activeID string
}

func NewBatchSession() *BatchSession {
	return &BatchSession{}
}

func (s *BatchSession) Add(item models.UploadItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.Status = models.UploadIdle
	next := make([]models.UploadItem, 0, len(s.items)+1)
	next = append(next, s.items...)
	next = append(next, item)
	s.items = next
}

// Remove drops an item unless it is currently being analyzed. Removing an
// item before its turn arrives skips it.
func (s *BatchSession) Remove(id string) (models.UploadItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ID != id {
			continue
		}
		if item.Status == models.UploadAnalyzing {
			return models.UploadItem{}, errors.New("item is being analyzed")
		}
		next := make([]models.UploadItem, 0, len(s.items)-1)
		next = append(next, s.items[:i]...)
		next = append(next, s.items[i+1:]...)
		s.items = next
		if s.activeID == id {
			s.activeID = ""
		}
		return item, nil
	}
	return models.UploadItem{}, ErrItemNotFound
}

// Items returns a snapshot copy in submission order.
func (s *BatchSession) Items() []models.UploadItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]models.UploadItem, len(s.items))
	copy(snapshot, s.items)
	return snapshot
}

func (s *BatchSession) Get(id string) (models.UploadItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.UploadItem{}, false
}

// Pending returns the ids of items eligible for analysis, in submission
// order: idle items and errored items queued for retry.
func (s *BatchSession) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, item := range s.items {
		if item.Status == models.UploadIdle || item.Status == models.UploadError {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

func (s *BatchSession) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// MarkAnalyzing transitions an idle or errored item to analyzing, clears
// any prior error and selects it as the active item. Done items are left
// untouched; status moves forward only, except the error->analyzing retry.
func (s *BatchSession) MarkAnalyzing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replace(id, func(item models.UploadItem) (models.UploadItem, bool) {
		if item.Status != models.UploadIdle && item.Status != models.UploadError {
			return item, false
		}
		item.Status = models.UploadAnalyzing
		item.ErrorMsg = ""
		s.activeID = id
		return item, true
	})
}

func (s *BatchSession) MarkDone(id string, result *models.GradingResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replace(id, func(item models.UploadItem) (models.UploadItem, bool) {
		if item.Status != models.UploadAnalyzing {
			return item, false
		}
		item.Status = models.UploadDone
		item.Result = result
		return item, true
	})
}

func (s *BatchSession) MarkError(id string, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replace(id, func(item models.UploadItem) (models.UploadItem, bool) {
		if item.Status != models.UploadAnalyzing {
			return item, false
		}
		item.Status = models.UploadError
		item.ErrorMsg = message
		return item, true
	})
}

// replace applies fn to the matching item and swaps in a fresh slice.
// Callers hold the lock.
func (s *BatchSession) replace(id string, fn func(models.UploadItem) (models.UploadItem, bool)) bool {
	for i, item := range s.items {
		if item.ID != id {
			continue
		}
		updated, ok := fn(item)
		if !ok {
			return false
		}
		next := make([]models.UploadItem, len(s.items))
		copy(next, s.items)
		next[i] = updated
		s.items = next
		return true
	}
	return false
}
