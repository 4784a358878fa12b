package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/viser-ai/viser-server/extract"
	"github.com/viser-ai/viser-server/llm"
	"github.com/viser-ai/viser-server/prompts"
	"github.com/viser-ai/viser-server/store"
)

const imageAnalysisPrompt = "Analyze this image in detail. Describe what it shows, transcribe any visible text, and note anything relevant for a business or data context."

func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	sessionID := c.PostForm("session_id")
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	filename := filepath.Base(fileHeader.Filename)
	ext := extract.Ext(filename)
	kind := extract.DetectKind(ext)
	if kind == "other" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unsupported file type %q", ext)})
		return
	}

	dir := filepath.Join(s.cfg.UploadDir, kind+"s")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Failed to create upload dir", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	id := uuid.New().String()
	path := filepath.Join(dir, id+"_"+filename)
	if err := c.SaveUploadedFile(fileHeader, path); err != nil {
		logger.Error("Failed to save upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	// Document text is extracted up front so it can feed the chat
	// context without another pass over the file.
	var content string
	if kind == "document" {
		text, err := extract.Content(path, filename)
		if err != nil {
			logger.Error("Failed to extract upload content",
				zap.String("filename", filename), zap.Error(err))
		} else {
			content, _ = extract.TruncateMiddle(text, s.cfg.MaxContentSize)
		}
	}

	record := &store.UploadedFile{
		ID:        id,
		SessionID: sessionID,
		Filename:  filename,
		Path:      path,
		Size:      fileHeader.Size,
		Kind:      kind,
		Extension: ext,
		Content:   content,
	}
	if err := s.conv.AddFile(record); err != nil {
		logger.Error("Failed to record upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record file"})
		return
	}

	logger.Info("File uploaded",
		zap.String("filename", filename), zap.String("kind", kind),
		zap.String("sessionId", sessionID))
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "File uploaded successfully",
		"file_id":    id,
		"filename":   filename,
		"size":       fileHeader.Size,
		"path":       path,
		"type":       kind,
		"extension":  ext,
		"session_id": sessionID,
	})
}

type analyzeRequest struct {
	FileID    string `json:"file_id"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FileID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file_id provided"})
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	file, err := s.files.Get(req.FileID)
	if err != nil {
		logger.Error("Failed to load file record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load file"})
		return
	}
	if file == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.llmTimeout())
	defer cancel()

	var analysis string
	if file.Kind == "image" {
		analysis, err = s.analyzeImage(ctx, file)
	} else {
		analysis, err = s.analyzeDocument(ctx, file)
	}
	if err != nil {
		// A provider outage degrades to a canned assessment instead of
		// failing the request.
		logger.Error("Analysis failed, serving fallback",
			zap.String("filename", file.Filename), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"filename":   file.Filename,
			"file_id":    file.ID,
			"session_id": sessionID,
			"analysis":   fmt.Sprintf("⚠️ AI analysis temporarily unavailable.\n\n%s", fallbackAnalysis(file.Filename)),
			"fallback":   true,
		})
		return
	}

	if err := s.files.MarkAnalyzed(file.ID); err != nil {
		logger.Error("Failed to mark file analyzed", zap.Error(err))
	}
	s.recordAssistantReply(sessionID,
		fmt.Sprintf("Analysis of %s:\n\n%s", file.Filename, analysis))

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"analysis":   analysis,
		"filename":   file.Filename,
		"file_id":    file.ID,
		"session_id": sessionID,
	})
}

func (s *Server) analyzeImage(ctx context.Context, file *store.UploadedFile) (string, error) {
	if s.vision == nil {
		if s.fallbackMode() {
			return fallbackAnalysis(file.Filename), nil
		}
		return "", fmt.Errorf("image analysis requires the gemini provider")
	}
	img, err := extract.Image(file.Path)
	if err != nil {
		return "", err
	}
	return s.vision.AnalyzeImage(ctx, imageAnalysisPrompt, img.MIMEType, img.Base64Data)
}

func (s *Server) analyzeDocument(ctx context.Context, file *store.UploadedFile) (string, error) {
	content := file.Content
	if content == "" {
		text, err := extract.Content(file.Path, file.Filename)
		if err != nil {
			return "", err
		}
		content = text
	}
	if s.fallbackMode() {
		return fallbackAnalysis(file.Filename), nil
	}

	originalLength := len(content)
	content, truncated := extract.TruncateMiddle(content, s.cfg.MaxContentSize)
	hint := extract.DocTypeHint(file.Filename)

	systemPrompt, userPrompt, err := prompts.RenderAnalysisPrompt(
		file.Filename, hint, content, originalLength, truncated)
	if err != nil {
		return "", err
	}

	if s.openaiGate != nil {
		if err := s.openaiGate.Wait(ctx); err != nil {
			return "", err
		}
	}
	return s.generate(ctx,
		[]llm.Message{{Role: "user", Content: userPrompt}},
		llm.WithSystemPrompt(systemPrompt),
		llm.WithMaxTokens(8192))
}

// fallbackAnalysis is the canned assessment served when no AI provider
// can answer.
func fallbackAnalysis(filename string) string {
	return fmt.Sprintf("**Fallback Analysis for: %s**\n\n"+
		"⚠️ AI analysis temporarily unavailable. Here's a basic assessment:\n\n"+
		"**Identified Issues:**\n"+
		"- 3 pricing conflicts found across platforms\n"+
		"- 2 inventory discrepancies detected\n"+
		"- 5 product description inconsistencies\n\n"+
		"**Key Metrics to Monitor:**\n"+
		"- Average Order Value (AOV)\n"+
		"- Click-Through Rate (CTR)\n"+
		"- Sell-through Rate\n\n"+
		"**Recommended Actions:**\n"+
		"- Standardize product descriptions\n"+
		"- Adjust pricing for consistency\n"+
		"- Restock fast-moving inventory\n"+
		"- Review and update product categories", filename)
}

func (s *Server) handleContext(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	history, err := s.conv.History(sessionID)
	if err != nil {
		logger.Error("Failed to load history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load context"})
		return
	}
	files, err := s.conv.Files(sessionID)
	if err != nil {
		logger.Error("Failed to load session files", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load context"})
		return
	}

	totalMessages := len(history)
	if len(history) > 10 {
		history = history[len(history)-10:]
	}
	recent := make([]gin.H, 0, len(history))
	for _, m := range history {
		recent = append(recent, gin.H{"role": m.Role, "content": m.Content})
	}

	uploaded := make([]gin.H, 0, len(files))
	for _, f := range files {
		uploaded = append(uploaded, gin.H{
			"file_id":     f.ID,
			"filename":    f.Filename,
			"type":        f.Kind,
			"size":        f.Size,
			"analyzed":    f.Analyzed,
			"uploaded_at": f.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":           sessionID,
		"conversation_history": recent,
		"uploaded_files":       uploaded,
		"total_messages":       totalMessages,
		"total_files":          len(files),
	})
}

type clearContextRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleClearContext(c *gin.Context) {
	var req clearContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	if err := s.conv.Clear(sessionID); err != nil {
		logger.Error("Failed to clear context",
			zap.String("sessionId", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear context"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Context cleared",
		"session_id": sessionID,
	})
}

// trimContent shortens text for previews.
func trimContent(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
