package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/viser-ai/viser-server/store"
)

var calendarImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
}

func (s *Server) handleListCalendarEvents(c *gin.Context) {
	events, err := s.calendar.ListEvents()
	if err != nil {
		logger.Error("Failed to list calendar events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}

	date := c.Query("date")
	email := c.Query("email")
	eventType := c.Query("event_type")
	filtered := events[:0:0]
	for _, e := range events {
		if date != "" && e.Date != date {
			continue
		}
		if email != "" && e.Email != email {
			continue
		}
		if eventType != "" && e.EventType != eventType {
			continue
		}
		filtered = append(filtered, e)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"events":  filtered,
		"total":   len(filtered),
	})
}

func (s *Server) handleTodayCalendarEvents(c *gin.Context) {
	events, date, err := s.calendar.TodayEvents()
	if err != nil {
		logger.Error("Failed to load today's events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"date":    date,
		"events":  events,
		"total":   len(events),
	})
}

type createEventRequest struct {
	Date      string `json:"date"`
	Email     string `json:"email"`
	EventType string `json:"event_type"`
	Message   string `json:"message"`
	ImagePath string `json:"image_path"`
}

func (s *Server) handleCreateCalendarEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	event, err := s.calendar.CreateEvent(req.Date, req.Email, req.EventType, req.Message, req.ImagePath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Info("Calendar event created",
		zap.Uint("eventId", event.ID), zap.String("date", event.Date))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"event":   event,
		"message": "Event created successfully",
	})
}

// eventFromParam resolves the :event_id path parameter. Writes the error
// response itself and returns nil when the event cannot be served.
func (s *Server) eventFromParam(c *gin.Context) *store.CalendarEvent {
	id, err := strconv.ParseUint(c.Param("event_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return nil
	}
	event, err := s.calendar.GetEvent(uint(id))
	if err != nil {
		logger.Error("Failed to load calendar event", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return nil
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return nil
	}
	return event
}

func (s *Server) handleGetCalendarEvent(c *gin.Context) {
	event := s.eventFromParam(c)
	if event == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "event": event})
}

type updateEventRequest struct {
	Date      *string `json:"date"`
	Email     *string `json:"email"`
	EventType *string `json:"event_type"`
	Message   *string `json:"message"`
	ImagePath *string `json:"image_path"`
}

func (s *Server) handleUpdateCalendarEvent(c *gin.Context) {
	event := s.eventFromParam(c)
	if event == nil {
		return
	}

	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Date != nil {
		if _, err := time.Parse("2006-01-02", *req.Date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid event date %q, expected YYYY-MM-DD", *req.Date)})
			return
		}
		event.Date = *req.Date
	}
	if req.Email != nil {
		event.Email = *req.Email
	}
	if req.EventType != nil {
		event.EventType = *req.EventType
	}
	if req.Message != nil {
		event.Message = *req.Message
	}
	if req.ImagePath != nil {
		event.ImagePath = *req.ImagePath
	}

	if err := s.calendar.UpdateEvent(event); err != nil {
		logger.Error("Failed to update calendar event", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"event":   event,
		"message": "Event updated successfully",
	})
}

func (s *Server) handleDeleteCalendarEvent(c *gin.Context) {
	event := s.eventFromParam(c)
	if event == nil {
		return
	}

	if event.ImagePath != "" {
		if err := os.Remove(event.ImagePath); err != nil && !os.IsNotExist(err) {
			logger.Error("Failed to remove event image",
				zap.String("path", event.ImagePath), zap.Error(err))
		}
	}
	if err := s.calendar.DeleteEvent(event.ID); err != nil {
		logger.Error("Failed to delete calendar event", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Event %d deleted", event.ID),
	})
}

func (s *Server) handleCalendarUploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !calendarImageExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image type, use jpg, jpeg, png or gif"})
		return
	}

	dir := filepath.Join(s.cfg.UploadDir, "calendar")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Failed to create calendar upload dir", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	name := uuid.New().String() + ext
	path := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(fileHeader, path); err != nil {
		logger.Error("Failed to save calendar image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"image_path": path,
		"filename":   name,
	})
}

func (s *Server) handleCalendarSendNow(c *gin.Context) {
	event := s.eventFromParam(c)
	if event == nil {
		return
	}
	if event.Sent {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event has already been sent"})
		return
	}

	if err := s.calendar.SendNow(event.ID); err != nil {
		logger.Error("Failed to send calendar event",
			zap.Uint("eventId", event.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Event sent to %s", event.Email),
	})
}
