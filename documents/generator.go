// Package documents turns chat output into downloadable files. Content
// that parses as a markdown table is rendered as a real table; anything
// else becomes styled text.
package documents

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viser-ai/viser-server/store"
)

// Format describes one supported output format.
type Format struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Available bool   `json:"available"`
}

// Formats lists what the generator can produce. Word output is listed so
// clients can show it greyed out.
func Formats() []Format {
	return []Format{
		{ID: "pdf", Name: "PDF Document", Extension: ".pdf", Available: true},
		{ID: "xlsx", Name: "Excel Workbook", Extension: ".xlsx", Available: true},
		{ID: "txt", Name: "Plain Text", Extension: ".txt", Available: true},
		{ID: "docx", Name: "Word Document", Extension: ".docx", Available: false},
	}
}

// Generator renders documents into the download directory and records
// them for later retrieval.
type Generator struct {
	downloadDir string
	docs        *store.DocumentRepository
	now         func() time.Time
}

func NewGenerator(downloadDir string, docs *store.DocumentRepository) *Generator {
	return &Generator{
		downloadDir: downloadDir,
		docs:        docs,
		now:         time.Now,
	}
}

// Generate renders content in the requested format, writes the file and
// records it. filename may omit the extension.
func (g *Generator) Generate(content, filename, format string) (*store.Document, error) {
	format = strings.ToLower(strings.TrimSpace(format))

	var data []byte
	var err error
	switch format {
	case "pdf":
		data, err = g.renderPDF(content)
	case "xlsx":
		data, err = g.renderXlsx(content)
	case "txt":
		data = g.renderTxt(content)
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if filename == "" {
		filename = "document"
	}
	ext := "." + format
	if !strings.HasSuffix(strings.ToLower(filename), ext) {
		filename += ext
	}

	if err := os.MkdirAll(g.downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	id := uuid.New().String()
	path := filepath.Join(g.downloadDir, id+"_"+filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}

	doc := &store.Document{
		ID:       id,
		Filename: filename,
		Format:   format,
		Path:     path,
		Size:     int64(len(data)),
	}
	if err := g.docs.Create(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
