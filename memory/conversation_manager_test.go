package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/viser-ai/viser-server/store"
)

func newTestManager(t *testing.T, maxUserTurns int) (*ConversationManager, *gorm.DB) {
	t.Helper()
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	cm := NewConversationManager(
		store.NewSessionRepository(db),
		store.NewFileRepository(db),
		maxUserTurns,
		24*time.Hour,
	)
	return cm, db
}

func TestConversationHistory(t *testing.T) {
	cm, _ := newTestManager(t, 10)

	require.NoError(t, cm.AddUserMessage("s1", "hello"))
	require.NoError(t, cm.AddAssistantMessage("s1", "hi there"))
	require.NoError(t, cm.AddUserMessage("s1", "how are you"))

	history, err := cm.History("s1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, "assistant", history[1].Role)

	reply, err := cm.LastAssistantReply("s1")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)
}

func TestTrimKeepsLastUserTurns(t *testing.T) {
	cm, _ := newTestManager(t, 2)

	for i := 1; i <= 4; i++ {
		require.NoError(t, cm.AddUserMessage("s1", fmt.Sprintf("question %d", i)))
		require.NoError(t, cm.AddAssistantMessage("s1", fmt.Sprintf("answer %d", i)))
	}

	history, err := cm.History("s1")
	require.NoError(t, err)
	// Last two user turns plus their replies, and the reply trailing the
	// older kept user turn.
	require.NotEmpty(t, history)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "question 3", history[0].Content)

	users := 0
	for _, m := range history {
		if m.Role == "user" {
			users++
		}
	}
	assert.Equal(t, 2, users)
}

func TestTrimUnderLimitLeavesHistory(t *testing.T) {
	cm, _ := newTestManager(t, 10)

	require.NoError(t, cm.AddUserMessage("s1", "one"))
	require.NoError(t, cm.AddUserMessage("s1", "two"))

	history, err := cm.History("s1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestFileContext(t *testing.T) {
	cm, _ := newTestManager(t, 10)

	ctx, err := cm.FileContext("s1")
	require.NoError(t, err)
	assert.Empty(t, ctx)

	for i := 0; i < 7; i++ {
		require.NoError(t, cm.AddFile(&store.UploadedFile{
			ID:        fmt.Sprintf("f%d", i),
			SessionID: "s1",
			Filename:  fmt.Sprintf("doc%d.txt", i),
			Path:      fmt.Sprintf("uploads/documents/doc%d.txt", i),
			Size:      100,
			Kind:      "document",
			Extension: ".txt",
			Content:   fmt.Sprintf("text of doc %d", i),
		}))
	}

	ctx, err = cm.FileContext("s1")
	require.NoError(t, err)
	assert.Contains(t, ctx, "Files shared in this conversation")
	assert.Contains(t, ctx, "doc6.txt")
	assert.Contains(t, ctx, "text of doc 6")
	// Only the newest five files are listed.
	assert.NotContains(t, ctx, "doc0.txt")
	assert.NotContains(t, ctx, "doc1.txt")
}

func TestClearRemovesEverything(t *testing.T) {
	cm, _ := newTestManager(t, 10)

	require.NoError(t, cm.AddUserMessage("s1", "hello"))
	require.NoError(t, cm.AddFile(&store.UploadedFile{
		ID:        "f1",
		SessionID: "s1",
		Filename:  "notes.txt",
		Path:      "uploads/documents/notes.txt",
		Kind:      "document",
	}))

	require.NoError(t, cm.Clear("s1"))

	history, err := cm.History("s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	files, err := cm.Files("s1")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCleanupIdleSessions(t *testing.T) {
	cm, db := newTestManager(t, 10)
	cm.cleanupThreshold = 2

	require.NoError(t, cm.AddUserMessage("stale1", "old"))
	require.NoError(t, cm.AddUserMessage("stale2", "old"))
	require.NoError(t, cm.AddUserMessage("fresh", "new"))

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&store.Session{}).
		Where("id IN ?", []string{"stale1", "stale2"}).
		Update("last_activity", stale).Error)

	cm.CleanupIdleSessions()

	sessions := store.NewSessionRepository(db)
	n, err := sessions.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	remaining, err := sessions.Get("fresh")
	require.NoError(t, err)
	assert.NotNil(t, remaining)
}
