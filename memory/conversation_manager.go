package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/viser-ai/viser-server/llm"
	"github.com/viser-ai/viser-server/store"
)

// ConversationManager handles conversation bookkeeping: message history,
// per-session file context and idle-session cleanup.
type ConversationManager struct {
	sessions *store.SessionRepository
	files    *store.FileRepository

	maxUserTurns int
	sessionTTL   time.Duration
	// Cleanup runs only once the session count crosses this threshold.
	cleanupThreshold int64
}

func NewConversationManager(sessions *store.SessionRepository, files *store.FileRepository, maxUserTurns int, sessionTTL time.Duration) *ConversationManager {
	return &ConversationManager{
		sessions:         sessions,
		files:            files,
		maxUserTurns:     maxUserTurns,
		sessionTTL:       sessionTTL,
		cleanupThreshold: 100,
	}
}

// AddUserMessage appends a user turn and trims the window.
func (cm *ConversationManager) AddUserMessage(sessionID, content string) error {
	if err := cm.sessions.AppendMessage(sessionID, "user", content); err != nil {
		return err
	}
	return cm.trimForSession(sessionID)
}

// AddAssistantMessage appends an assistant turn.
func (cm *ConversationManager) AddAssistantMessage(sessionID, content string) error {
	return cm.sessions.AppendMessage(sessionID, "assistant", content)
}

// History returns the session's messages in LLM wire form.
func (cm *ConversationManager) History(sessionID string) ([]llm.Message, error) {
	msgs, err := cm.sessions.Messages(sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out, nil
}

// LastAssistantReply returns the most recent assistant turn, or "" when
// the session has none.
func (cm *ConversationManager) LastAssistantReply(sessionID string) (string, error) {
	msg, err := cm.sessions.LastAssistantMessage(sessionID)
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", nil
	}
	return msg.Content, nil
}

// trimForSession keeps the last maxUserTurns "user" messages and the
// assistant messages that follow them. Fewer user turns than the limit
// leaves the history unchanged.
func (cm *ConversationManager) trimForSession(sessionID string) error {
	if cm.maxUserTurns <= 0 {
		return nil
	}

	msgs, err := cm.sessions.Messages(sessionID)
	if err != nil {
		return err
	}

	// Walk backward to the maxUserTurns-th user message from the end;
	// everything before it is dropped.
	usersSeen := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != "user" {
			continue
		}
		usersSeen++
		if usersSeen == cm.maxUserTurns {
			if i > 0 {
				return cm.sessions.DeleteMessagesBefore(sessionID, msgs[i].ID)
			}
			return nil
		}
	}
	return nil
}

// AddFile records an upload in the session's file context.
func (cm *ConversationManager) AddFile(file *store.UploadedFile) error {
	if err := cm.sessions.Touch(file.SessionID); err != nil {
		return err
	}
	return cm.files.Create(file)
}

// Files returns the session's uploads, newest first.
func (cm *ConversationManager) Files(sessionID string) ([]store.UploadedFile, error) {
	return cm.files.BySession(sessionID)
}

// FileContext renders the last files of a session as a prompt fragment
// so the model knows what the user has shared. At most five files are
// listed.
func (cm *ConversationManager) FileContext(sessionID string) (string, error) {
	files, err := cm.files.BySession(sessionID)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", nil
	}
	if len(files) > 5 {
		files = files[:5]
	}

	var sb strings.Builder
	sb.WriteString("Files shared in this conversation:\n")
	for _, f := range files {
		sb.WriteString(fmt.Sprintf("- %s (%s, %d bytes)\n", f.Filename, f.Kind, f.Size))
		if f.Content != "" {
			sb.WriteString(fmt.Sprintf("  Content: %s\n", f.Content))
		}
	}
	return sb.String(), nil
}

// Clear removes the session with its history and file records.
func (cm *ConversationManager) Clear(sessionID string) error {
	return cm.sessions.Delete(sessionID)
}

// CleanupIdleSessions drops sessions idle beyond the TTL. It is cheap to
// call on every request: nothing happens until the session count crosses
// the cleanup threshold.
func (cm *ConversationManager) CleanupIdleSessions() {
	n, err := cm.sessions.Count()
	if err != nil {
		logger.Error("Failed to count sessions", zap.Error(err))
		return
	}
	if n <= cm.cleanupThreshold {
		return
	}

	cutoff := time.Now().Add(-cm.sessionTTL)
	ids, err := cm.sessions.IdleSince(cutoff)
	if err != nil {
		logger.Error("Failed to list idle sessions", zap.Error(err))
		return
	}
	for _, id := range ids {
		if err := cm.sessions.Delete(id); err != nil {
			logger.Error("Failed to delete idle session",
				zap.String("sessionId", id), zap.Error(err))
		}
	}
	if len(ids) > 0 {
		logger.Info("Cleaned up idle sessions", zap.Int("count", len(ids)))
	}
}
