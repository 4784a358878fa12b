package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository owns sessions and their chat messages.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Touch creates the session if missing and stamps its last activity.
func (r *SessionRepository) Touch(sessionID string) error {
	session := Session{ID: sessionID, LastActivity: time.Now()}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_activity"}),
	}).Create(&session).Error
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(sessionID string) (*Session, error) {
	var session Session
	if err := r.db.First(&session, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&Session{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

// IdleSince returns the IDs of sessions with no activity after cutoff.
func (r *SessionRepository) IdleSince(cutoff time.Time) ([]string, error) {
	var ids []string
	err := r.db.Model(&Session{}).
		Where("last_activity < ?", cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list idle sessions: %w", err)
	}
	return ids, nil
}

// Delete removes a session with its messages and file records.
func (r *SessionRepository) Delete(sessionID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&ChatMessage{}, "session_id = ?", sessionID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&UploadedFile{}, "session_id = ?", sessionID).Error; err != nil {
			return err
		}
		return tx.Delete(&Session{}, "id = ?", sessionID).Error
	})
}

// AppendMessage stores one turn and touches the session.
func (r *SessionRepository) AppendMessage(sessionID, role, content string) error {
	if err := r.Touch(sessionID); err != nil {
		return err
	}
	msg := ChatMessage{SessionID: sessionID, Role: role, Content: content}
	if err := r.db.Create(&msg).Error; err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// Messages returns the session's turns in insertion order.
func (r *SessionRepository) Messages(sessionID string) ([]ChatMessage, error) {
	var msgs []ChatMessage
	err := r.db.Where("session_id = ?", sessionID).
		Order("id asc").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return msgs, nil
}

// DeleteMessagesBefore drops every message of the session with ID < before.
func (r *SessionRepository) DeleteMessagesBefore(sessionID string, before uint) error {
	err := r.db.Delete(&ChatMessage{}, "session_id = ? AND id < ?", sessionID, before).Error
	if err != nil {
		return fmt.Errorf("failed to trim messages: %w", err)
	}
	return nil
}

// LastAssistantMessage returns the most recent assistant turn, or nil.
func (r *SessionRepository) LastAssistantMessage(sessionID string) (*ChatMessage, error) {
	var msg ChatMessage
	err := r.db.Where("session_id = ? AND role = ?", sessionID, "assistant").
		Order("id desc").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load last reply: %w", err)
	}
	return &msg, nil
}
