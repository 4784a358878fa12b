package server

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/viser-ai/viser-server/documents"
)

type generateDocumentRequest struct {
	Content  string `json:"content"`
	Format   string `json:"format"`
	Filename string `json:"filename"`
}

func (s *Server) handleGenerateDocument(c *gin.Context) {
	var req generateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No content provided"})
		return
	}

	format := strings.ToLower(strings.TrimSpace(req.Format))
	switch format {
	case "":
		format = "pdf"
	case "excel":
		format = "xlsx"
	case "word":
		format = "docx"
	}

	doc, err := s.generator.Generate(req.Content, req.Filename, format)
	if err != nil {
		logger.Error("Document generation failed",
			zap.String("format", format), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.Info("Document generated",
		zap.String("filename", doc.Filename), zap.String("format", doc.Format))
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"file_id":      doc.ID,
		"filename":     doc.Filename,
		"format":       doc.Format,
		"size":         doc.Size,
		"download_url": "/api/download/" + doc.ID,
		"message":      "Document generated successfully",
	})
}

func (s *Server) handleDownload(c *gin.Context) {
	doc, err := s.docs.Get(c.Param("file_id"))
	if err != nil {
		logger.Error("Failed to load document record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load document"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	if _, err := os.Stat(doc.Path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File no longer exists on disk"})
		return
	}
	c.FileAttachment(doc.Path, doc.Filename)
}

// handleListDocuments lists the session's uploads with their on-disk
// status.
func (s *Server) handleListDocuments(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	files, err := s.conv.Files(sessionID)
	if err != nil {
		logger.Error("Failed to list session files", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		return
	}

	out := make([]gin.H, 0, len(files))
	for _, f := range files {
		_, statErr := os.Stat(f.Path)
		out = append(out, gin.H{
			"file_id":     f.ID,
			"filename":    f.Filename,
			"type":        f.Kind,
			"extension":   f.Extension,
			"size":        f.Size,
			"analyzed":    f.Analyzed,
			"uploaded_at": f.CreatedAt,
			"exists":      statErr == nil,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"documents":  out,
		"total":      len(out),
		"session_id": sessionID,
	})
}

func (s *Server) handleDocumentDetails(c *gin.Context) {
	file, err := s.files.Get(c.Param("file_id"))
	if err != nil {
		logger.Error("Failed to load file record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load document"})
		return
	}
	if file == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"document": gin.H{
			"file_id":         file.ID,
			"filename":        file.Filename,
			"type":            file.Kind,
			"extension":       file.Extension,
			"size":            file.Size,
			"analyzed":        file.Analyzed,
			"uploaded_at":     file.CreatedAt,
			"session_id":      file.SessionID,
			"content_preview": trimContent(file.Content, 500),
		},
	})
}

func (s *Server) handleDeleteDocument(c *gin.Context) {
	file, err := s.files.Get(c.Param("file_id"))
	if err != nil {
		logger.Error("Failed to load file record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}
	if file == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
		logger.Error("Failed to remove file from disk",
			zap.String("path", file.Path), zap.Error(err))
	}
	if err := s.files.Delete(file.ID); err != nil {
		logger.Error("Failed to delete file record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Document %s deleted", file.Filename),
	})
}

func (s *Server) handleDocumentFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"formats": documents.Formats(),
	})
}
