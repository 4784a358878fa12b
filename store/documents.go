package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// DocumentRepository owns generated documents.
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Get(id string) (*Document, error) {
	var doc Document
	if err := r.db.First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// List returns all documents, newest first.
func (r *DocumentRepository) List() ([]Document, error) {
	var docs []Document
	if err := r.db.Order("created_at desc, id desc").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) Delete(id string) error {
	if err := r.db.Delete(&Document{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
