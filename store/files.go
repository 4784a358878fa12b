package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// FileRepository owns uploaded-file records.
type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(file *UploadedFile) error {
	if err := r.db.Create(file).Error; err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}

func (r *FileRepository) Get(id string) (*UploadedFile, error) {
	var file UploadedFile
	if err := r.db.First(&file, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return &file, nil
}

func (r *FileRepository) MarkAnalyzed(id string) error {
	err := r.db.Model(&UploadedFile{}).Where("id = ?", id).
		Update("analyzed", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark file analyzed: %w", err)
	}
	return nil
}

// BySession returns the session's uploads, newest first.
func (r *FileRepository) BySession(sessionID string) ([]UploadedFile, error) {
	var files []UploadedFile
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at desc, id desc").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list session files: %w", err)
	}
	return files, nil
}

func (r *FileRepository) Delete(id string) error {
	if err := r.db.Delete(&UploadedFile{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (r *FileRepository) DeleteBySession(sessionID string) error {
	err := r.db.Delete(&UploadedFile{}, "session_id = ?", sessionID).Error
	if err != nil {
		return fmt.Errorf("failed to delete session files: %w", err)
	}
	return nil
}
