// Package store persists named copies of the working draft. The working
// draft itself stays in memory; saving is an explicit user action.
package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/billforge/billforge/internal/models"
)

var ErrNotFound = errors.New("store: draft not found")

type DraftStore struct {
	db *gorm.DB
}

func NewDraftStore(db *gorm.DB) *DraftStore { return &DraftStore{db: db} }

// Save captures the draft under the given name. Items are replaced
// wholesale inside one transaction.
func (s *DraftStore) Save(name string, d models.Draft) (models.DraftRecord, error) {
	rec := models.RecordFromDraft(name, d)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if err != nil {
		return models.DraftRecord{}, fmt.Errorf("store: save draft: %w", err)
	}
	return rec, nil
}

// List returns saved drafts, newest first, without item rows.
func (s *DraftStore) List(limit int) ([]models.DraftRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var recs []models.DraftRecord
	if err := s.db.Order("created_at desc").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("store: list drafts: %w", err)
	}
	return recs, nil
}

// Get loads one saved draft with its items in row order.
func (s *DraftStore) Get(id uint) (models.DraftRecord, error) {
	var rec models.DraftRecord
	err := s.db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc")
	}).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DraftRecord{}, ErrNotFound
	}
	if err != nil {
		return models.DraftRecord{}, fmt.Errorf("store: load draft: %w", err)
	}
	return rec, nil
}

// Delete removes a saved draft and its items.
func (s *DraftStore) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.DraftRecord{}, id)
		if res.Error != nil {
			return fmt.Errorf("store: delete draft: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		// sqlite does not enforce the CASCADE constraint without a pragma
		return tx.Where("draft_record_id = ?", id).Delete(&models.DraftItemRecord{}).Error
	})
}
