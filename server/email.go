package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/viser-ai/viser-server/mailer"
)

type emailAnalysisRequest struct {
	Filename  string `json:"filename"`
	Analysis  string `json:"analysis"`
	Recipient string `json:"recipient"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleEmailAnalysis(c *gin.Context) {
	var req emailAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Analysis) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No analysis provided"})
		return
	}

	recipient := req.Recipient
	if recipient == "" {
		recipient = s.email.DefaultRecipient()
	}
	if recipient == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No recipient configured"})
		return
	}

	sessionInfo := req.SessionID
	if sessionInfo == "" {
		sessionInfo = defaultSessionID
	}
	body, err := mailer.AnalysisBody(req.Filename, req.Analysis, sessionInfo)
	if err != nil {
		logger.Error("Failed to render analysis email", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare email"})
		return
	}

	subject := fmt.Sprintf("Viser AI Analysis Report: %s", req.Filename)
	if err := s.email.Send(recipient, subject, body, "", ""); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("Analysis emailed to %s", recipient),
		"recipient": recipient,
	})
}

type emailNotificationRequest struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	Details   string `json:"details"`
	Recipient string `json:"recipient"`
}

func (s *Server) handleEmailNotification(c *gin.Context) {
	var req emailNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No message provided"})
		return
	}

	recipient := req.Recipient
	if recipient == "" {
		recipient = s.email.DefaultRecipient()
	}
	if recipient == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No recipient configured"})
		return
	}

	title := req.Title
	if title == "" {
		title = "Notification from Viser AI"
	}
	body, err := mailer.NotificationBody(title, req.Message, req.Details)
	if err != nil {
		logger.Error("Failed to render notification email", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare email"})
		return
	}

	if err := s.email.Send(recipient, title, body, "", ""); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("Notification emailed to %s", recipient),
		"recipient": recipient,
	})
}

// handleEmailConfig reports the email setup without ever exposing the
// SMTP password.
func (s *Server) handleEmailConfig(c *gin.Context) {
	cfg := s.cfg.Email
	c.JSON(http.StatusOK, gin.H{
		"email_enabled":     cfg.Enabled,
		"smtp_server":       cfg.SMTPServer,
		"smtp_port":         cfg.SMTPPort,
		"sender_email":      cfg.SenderEmail,
		"owner_email":       cfg.OwnerEmail,
		"default_recipient": cfg.DefaultRecipient,
		"smtp_configured":   cfg.SMTPConfigured(),
	})
}

type testEmailRequest struct {
	Recipient string `json:"recipient"`
}

func (s *Server) handleTestEmail(c *gin.Context) {
	var req testEmailRequest
	_ = c.ShouldBindJSON(&req)

	recipient := req.Recipient
	if recipient == "" {
		recipient = s.email.DefaultRecipient()
	}
	if recipient == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No recipient configured"})
		return
	}

	body, err := mailer.NotificationBody("Test Email",
		"Your Viser AI email configuration is working.",
		"This message was sent by the /api/test-email endpoint.")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare email"})
		return
	}

	if err := s.email.Send(recipient, "Viser AI Test Email", body, "", ""); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Test email sent to %s", recipient),
	})
}
