// Package calendar schedules greeting emails: events carry a date, a
// recipient and an optional image, and a daily dispatcher sends the
// day's unsent events.
package calendar

import (
	"fmt"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/viser-ai/viser-server/mailer"
	"github.com/viser-ai/viser-server/store"
)

// EmailSender is the slice of mailer.Sender the service needs.
type EmailSender interface {
	Send(to, subject, htmlBody, attachmentPath, attachmentName string) error
}

// Service manages calendar events and their email delivery.
type Service struct {
	events *store.CalendarRepository
	sender EmailSender
	cron   *cron.Cron
	today  func() string
}

func NewService(events *store.CalendarRepository, sender EmailSender) *Service {
	return &Service{
		events: events,
		sender: sender,
		today: func() string {
			return time.Now().Format("2006-01-02")
		},
	}
}

// CreateEvent validates and stores a new event. date must be YYYY-MM-DD.
func (s *Service) CreateEvent(date, email, eventType, message, imagePath string) (*store.CalendarEvent, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid event date %q, expected YYYY-MM-DD", date)
	}
	if email == "" {
		return nil, fmt.Errorf("recipient email is required")
	}
	if eventType == "" {
		eventType = "anniversary"
	}

	event := &store.CalendarEvent{
		Date:      date,
		Email:     email,
		EventType: eventType,
		Message:   message,
		ImagePath: imagePath,
	}
	if err := s.events.Create(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *Service) ListEvents() ([]store.CalendarEvent, error) {
	return s.events.List()
}

func (s *Service) GetEvent(id uint) (*store.CalendarEvent, error) {
	return s.events.Get(id)
}

// UpdateEvent persists field changes made to an existing event.
func (s *Service) UpdateEvent(event *store.CalendarEvent) error {
	return s.events.Update(event)
}

// TodayEvents returns today's unsent events together with today's date.
func (s *Service) TodayEvents() ([]store.CalendarEvent, string, error) {
	today := s.today()
	events, err := s.events.PendingOn(today)
	return events, today, err
}

func (s *Service) DeleteEvent(id uint) error {
	return s.events.Delete(id)
}

// SendNow delivers one event immediately regardless of its date.
func (s *Service) SendNow(id uint) error {
	event, err := s.events.Get(id)
	if err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("event %d not found", id)
	}
	return s.sendEvent(event)
}

// DispatchDue sends every unsent event scheduled for today. Returns the
// number of events delivered.
func (s *Service) DispatchDue() int {
	today := s.today()
	events, err := s.events.PendingOn(today)
	if err != nil {
		logger.Error("Failed to load today's events", zap.Error(err))
		return 0
	}
	if len(events) == 0 {
		logger.Info("No calendar events due", zap.String("date", today))
		return 0
	}

	sent := 0
	for i := range events {
		if err := s.sendEvent(&events[i]); err != nil {
			logger.Error("Failed to send calendar event",
				zap.Uint("eventId", events[i].ID), zap.Error(err))
			continue
		}
		sent++
	}
	logger.Info("Dispatched calendar events",
		zap.String("date", today), zap.Int("sent", sent))
	return sent
}

func (s *Service) sendEvent(event *store.CalendarEvent) error {
	body, err := mailer.CalendarBody(event.Message, event.EventType, event.ImagePath)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s Reminder", titleCase(event.EventType))
	if err := s.sender.Send(event.Email, subject, body, event.ImagePath, ""); err != nil {
		return err
	}
	return s.events.MarkSent(event.ID)
}

// StartScheduler runs DispatchDue every day at 09:00 until Stop.
func (s *Service) StartScheduler() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc("0 9 * * *", func() { s.DispatchDue() }); err != nil {
		return fmt.Errorf("failed to schedule calendar dispatch: %w", err)
	}
	s.cron.Start()
	logger.Info("Calendar scheduler started, dispatching daily at 09:00")
	return nil
}

// Stop halts the scheduler. Safe to call when it never started.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	if runes[0] >= 'a' && runes[0] <= 'z' {
		runes[0] -= 'a' - 'A'
	}
	return string(runes)
}
