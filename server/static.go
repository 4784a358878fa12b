package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/viser-ai/viser-server/extract"
)

// Extensions the static handler is willing to serve.
var staticExtensions = map[string]bool{
	".html": true, ".css": true, ".js": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
}

// handleIndex serves the app shell with caching disabled so UI updates
// land immediately.
func (s *Server) handleIndex(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.File(filepath.Join(s.cfg.StaticDir, "index.html"))
}

func (s *Server) handleStatic(c *gin.Context) {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/ws/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	rel := filepath.Clean(strings.TrimPrefix(path, "/"))
	if rel == "." || strings.HasPrefix(rel, "..") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if !staticExtensions[strings.ToLower(filepath.Ext(rel))] {
		c.JSON(http.StatusForbidden, gin.H{"error": "File type not allowed"})
		return
	}

	full := filepath.Join(s.cfg.StaticDir, rel)
	if _, err := os.Stat(full); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.File(full)
}

// handleRepoFiles lists the spreadsheets available in the archive.
func (s *Server) handleRepoFiles(c *gin.Context) {
	entries, err := os.ReadDir(s.cfg.ArchiveDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("Failed to read archive dir", zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "files": []gin.H{}, "total": 0})
		return
	}

	files := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".xlsx") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, gin.H{
			"name":     entry.Name(),
			"size":     info.Size(),
			"modified": info.ModTime(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "files": files, "total": len(files)})
}

// handleRepoLoad returns the text content of one archived spreadsheet.
func (s *Server) handleRepoLoad(c *gin.Context) {
	// filepath.Base blocks path traversal through the parameter.
	name := filepath.Base(c.Param("filename"))
	if !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .xlsx files can be loaded"})
		return
	}

	path := filepath.Join(s.cfg.ArchiveDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	content, err := extract.XlsxText(path)
	if err != nil {
		logger.Error("Failed to read archive file",
			zap.String("filename", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"filename": name,
		"content":  content,
	})
}
