// Package mailer sends HTML email over SMTP and recognizes email
// commands typed into chat.
package mailer

import (
	"fmt"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/viser-ai/viser-server/config"
)

// Sender delivers email through the configured SMTP account. A disabled
// or unconfigured sender rejects every send with a clear error.
type Sender struct {
	cfg config.EmailConfig
	// send is swapped out in tests. Variadic to match Dialer.DialAndSend.
	send func(m ...*gomail.Message) error
}

func NewSender(cfg config.EmailConfig) *Sender {
	dialer := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.SenderEmail, cfg.AppPassword)
	return &Sender{
		cfg:  cfg,
		send: dialer.DialAndSend,
	}
}

// Enabled reports whether sending can work at all.
func (s *Sender) Enabled() bool {
	return s.cfg.Enabled && s.cfg.SMTPConfigured()
}

// Send delivers an HTML email, optionally with one attachment.
func (s *Sender) Send(to, subject, htmlBody, attachmentPath, attachmentName string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("email sending is disabled")
	}
	if !s.cfg.SMTPConfigured() {
		return fmt.Errorf("SMTP is not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.SenderEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if attachmentPath != "" {
		if attachmentName != "" {
			m.Attach(attachmentPath, gomail.Rename(attachmentName))
		} else {
			m.Attach(attachmentPath)
		}
	}

	if err := s.send(m); err != nil {
		logger.Error("Failed to send email",
			zap.String("to", to), zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// DefaultRecipient resolves the recipient for owner notifications.
func (s *Sender) DefaultRecipient() string {
	if s.cfg.OwnerEmail != "" {
		return s.cfg.OwnerEmail
	}
	return s.cfg.DefaultRecipient
}
