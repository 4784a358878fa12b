package mailer

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/viser-ai/viser-server/extract"
)

//go:embed templates/*
var templatesFS embed.FS

func renderBody(name string, data any) (string, error) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// SimpleBody renders the body for a quick chat-triggered message.
func SimpleBody(message, sessionID string) (string, error) {
	return renderBody("simple.html", struct {
		Message   string
		SessionID string
		Timestamp string
	}{Message: message, SessionID: sessionID, Timestamp: timestamp()})
}

// AnalysisBody renders the body for a document analysis report.
func AnalysisBody(filename, analysis, sessionInfo string) (string, error) {
	return renderBody("analysis.html", struct {
		Filename    string
		Analysis    string
		SessionInfo string
		Timestamp   string
	}{Filename: filename, Analysis: analysis, SessionInfo: sessionInfo, Timestamp: timestamp()})
}

// NotificationBody renders the body for a generic notification.
func NotificationBody(title, message, details string) (string, error) {
	return renderBody("notification.html", struct {
		Title     string
		Message   string
		Details   string
		Timestamp string
	}{Title: title, Message: message, Details: details, Timestamp: timestamp()})
}

// CalendarBody renders the body for a calendar event greeting. When
// imagePath exists the image is inlined as a data URI.
func CalendarBody(message, eventType, imagePath string) (string, error) {
	var imageSrc template.URL
	if imagePath != "" {
		if data, err := os.ReadFile(imagePath); err == nil {
			mime := extract.ImageMIMEType(filepath.Ext(imagePath))
			encoded := base64.StdEncoding.EncodeToString(data)
			imageSrc = template.URL(fmt.Sprintf("data:%s;base64,%s", mime, encoded))
		}
	}

	return renderBody("calendar.html", struct {
		Message        string
		EventType      string
		EventTypeLower string
		ImageSrc       template.URL
		Timestamp      string
	}{
		Message:        message,
		EventType:      titleCase(eventType),
		EventTypeLower: eventType,
		ImageSrc:       imageSrc,
		Timestamp:      timestamp(),
	})
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
