package mailer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/gomail.v2"

	"github.com/viser-ai/viser-server/config"
)

func TestDetectEmailCommand(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		want     *EmailCommand
	}{
		{
			name:    "send message to address",
			message: "send meeting notes from today to alice@example.com",
			want:    &EmailCommand{Content: "meeting notes from today", Recipient: "alice@example.com"},
		},
		{
			name:    "send this forwards previous reply",
			message: "send this to bob@example.com",
			want: &EmailCommand{
				Content:              "AI Response",
				Recipient:            "bob@example.com",
				SendPreviousResponse: true,
			},
		},
		{
			name:    "send it forwards previous reply",
			message: "Send IT to bob@example.com",
			want: &EmailCommand{
				Content:              "AI Response",
				Recipient:            "bob@example.com",
				SendPreviousResponse: true,
			},
		},
		{
			name:    "bare email address",
			message: "  carol@example.co.uk  ",
			want: &EmailCommand{
				Content:              "AI Response",
				Recipient:            "carol@example.co.uk",
				SendPreviousResponse: true,
			},
		},
		{
			name:    "ordinary chat",
			message: "what is the capital of France?",
			want:    nil,
		},
		{
			name:    "mentions email without send",
			message: "my address is dave@example.com, remember it",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectEmailCommand(tt.message))
		})
	}
}

func TestSimpleBody(t *testing.T) {
	body, err := SimpleBody("hello there", "s1")
	require.NoError(t, err)
	assert.Contains(t, body, "Message from Viser AI")
	assert.Contains(t, body, "hello there")
	assert.Contains(t, body, "Session: s1")

	body, err = SimpleBody("hello", "")
	require.NoError(t, err)
	assert.NotContains(t, body, "Session:")
}

func TestAnalysisBody(t *testing.T) {
	body, err := AnalysisBody("report.pdf", "Key findings: everything works.", "")
	require.NoError(t, err)
	assert.Contains(t, body, "Viser AI Analysis Report")
	assert.Contains(t, body, "report.pdf")
	assert.Contains(t, body, "Key findings: everything works.")
}

func TestNotificationBody(t *testing.T) {
	body, err := NotificationBody("Task Done", "The automation finished.", "3 steps executed")
	require.NoError(t, err)
	assert.Contains(t, body, "Task Done")
	assert.Contains(t, body, "The automation finished.")
	assert.Contains(t, body, "3 steps executed")
}

func TestCalendarBody(t *testing.T) {
	body, err := CalendarBody("", "birthday", "")
	require.NoError(t, err)
	assert.Contains(t, body, "Birthday Reminder")
	assert.Contains(t, body, "Wishing you a wonderful birthday!")
	assert.NotContains(t, body, "data:image")

	imagePath := filepath.Join(t.TempDir(), "cake.png")
	require.NoError(t, os.WriteFile(imagePath, []byte{0x89, 0x50}, 0o644))

	body, err = CalendarBody("Happy birthday!", "birthday", imagePath)
	require.NoError(t, err)
	assert.Contains(t, body, "Happy birthday!")
	assert.Contains(t, body, "data:image/png;base64,")
}

func TestSenderDisabled(t *testing.T) {
	s := NewSender(config.EmailConfig{Enabled: false})
	assert.False(t, s.Enabled())

	err := s.Send("a@example.com", "subject", "<p>hi</p>", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestSenderUnconfigured(t *testing.T) {
	s := NewSender(config.EmailConfig{Enabled: true})
	assert.False(t, s.Enabled())

	err := s.Send("a@example.com", "subject", "<p>hi</p>", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP is not configured")
}

func TestSenderSend(t *testing.T) {
	s := NewSender(config.EmailConfig{
		Enabled:     true,
		SMTPServer:  "smtp.example.com",
		SMTPPort:    587,
		SenderEmail: "bot@example.com",
		AppPassword: "secret",
	})
	assert.True(t, s.Enabled())

	var captured *gomail.Message
	s.send = func(m ...*gomail.Message) error {
		captured = m[0]
		return nil
	}

	require.NoError(t, s.Send("a@example.com", "Greetings", "<p>hi</p>", "", ""))
	require.NotNil(t, captured)
	assert.Equal(t, []string{"a@example.com"}, captured.GetHeader("To"))
	assert.Equal(t, []string{"Greetings"}, captured.GetHeader("Subject"))
}

func TestDefaultRecipient(t *testing.T) {
	s := NewSender(config.EmailConfig{OwnerEmail: "owner@example.com", DefaultRecipient: "fallback@example.com"})
	assert.Equal(t, "owner@example.com", s.DefaultRecipient())

	s = NewSender(config.EmailConfig{DefaultRecipient: "fallback@example.com"})
	assert.Equal(t, "fallback@example.com", s.DefaultRecipient())
}
