package mailer

import (
	"regexp"
	"strings"
)

// EmailCommand is a parsed "send X to someone@example.com" chat message.
type EmailCommand struct {
	// Content is the text to send, or "AI Response" when the previous
	// assistant reply should be sent instead.
	Content string
	// Recipient is the extracted email address.
	Recipient string
	// SendPreviousResponse is set when the user wrote "send this to ..."
	// or typed a bare email address.
	SendPreviousResponse bool
}

var (
	// "send [message] to [email]"
	sendToPattern = regexp.MustCompile(`(?is)send\s+(.+?)\s+to\s+([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})`)
	// A message that is nothing but an email address sends the previous reply.
	bareEmailPattern = regexp.MustCompile(`^([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})$`)
)

// DetectEmailCommand checks whether a chat message is an email send
// command. Returns nil for ordinary messages.
func DetectEmailCommand(message string) *EmailCommand {
	if m := sendToPattern.FindStringSubmatch(message); m != nil {
		content := strings.TrimSpace(m[1])
		recipient := strings.TrimSpace(m[2])

		lowered := strings.ToLower(content)
		if lowered == "this" || lowered == "it" {
			return &EmailCommand{
				Content:              "AI Response",
				Recipient:            recipient,
				SendPreviousResponse: true,
			}
		}
		return &EmailCommand{Content: content, Recipient: recipient}
	}

	if m := bareEmailPattern.FindStringSubmatch(strings.TrimSpace(message)); m != nil {
		return &EmailCommand{
			Content:              "AI Response",
			Recipient:            strings.TrimSpace(m[1]),
			SendPreviousResponse: true,
		}
	}
	return nil
}
