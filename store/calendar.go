package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// CalendarRepository owns scheduled calendar events.
type CalendarRepository struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

func (r *CalendarRepository) Create(event *CalendarEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *CalendarRepository) Get(id uint) (*CalendarEvent, error) {
	var event CalendarEvent
	if err := r.db.First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

// List returns all events ordered by date.
func (r *CalendarRepository) List() ([]CalendarEvent, error) {
	var events []CalendarEvent
	if err := r.db.Order("date asc, id asc").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// PendingOn returns unsent events scheduled for the given date.
func (r *CalendarRepository) PendingOn(date string) ([]CalendarEvent, error) {
	var events []CalendarEvent
	err := r.db.Where("date = ? AND sent = ?", date, false).
		Order("id asc").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending events: %w", err)
	}
	return events, nil
}

func (r *CalendarRepository) Update(event *CalendarEvent) error {
	if err := r.db.Save(event).Error; err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

func (r *CalendarRepository) MarkSent(id uint) error {
	now := time.Now()
	err := r.db.Model(&CalendarEvent{}).Where("id = ?", id).
		Updates(map[string]any{"sent": true, "sent_at": &now}).Error
	if err != nil {
		return fmt.Errorf("failed to mark event sent: %w", err)
	}
	return nil
}

func (r *CalendarRepository) Delete(id uint) error {
	if err := r.db.Delete(&CalendarEvent{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}
