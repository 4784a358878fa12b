package documents

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/viser-ai/viser-server/store"
)

func newTestGenerator(t *testing.T) (*Generator, *store.DocumentRepository) {
	t.Helper()
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	docs := store.NewDocumentRepository(db)
	g := NewGenerator(t.TempDir(), docs)
	g.now = func() time.Time {
		return time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	}
	return g, docs
}

const tableContent = `| Name | Age |
| --- | --- |
| Alice | 30 |
| Bob | 25 |`

func TestGenerateTxt(t *testing.T) {
	g, docs := newTestGenerator(t)

	doc, err := g.Generate("First line\n|---|---|\nSecond line", "notes", "txt")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", doc.Filename)
	assert.Equal(t, "txt", doc.Format)

	data, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "VISER AI GENERATED DOCUMENT")
	assert.Contains(t, text, "Generated on: 2026-01-15 10:30:00")
	assert.Contains(t, text, "First line")
	assert.Contains(t, text, "Second line")
	assert.NotContains(t, text, "|---")

	// The document is retrievable from the registry.
	stored, err := docs.Get(doc.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, doc.Size, stored.Size)
}

func TestGeneratePDF(t *testing.T) {
	g, _ := newTestGenerator(t)

	doc, err := g.Generate(tableContent, "people", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "people.pdf", doc.Filename)

	data, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Greater(t, doc.Size, int64(0))
}

func TestGeneratePDFPlainText(t *testing.T) {
	g, _ := newTestGenerator(t)

	doc, err := g.Generate("Just a paragraph of text.\n\nAnd another.", "memo", "pdf")
	require.NoError(t, err)

	data, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestGenerateXlsxTable(t *testing.T) {
	g, _ := newTestGenerator(t)

	doc, err := g.Generate(tableContent, "people", "xlsx")
	require.NoError(t, err)

	f, err := excelize.OpenFile(doc.Path)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Viser AI Generated Document", title)

	header, err := f.GetCellValue("Sheet1", "A4")
	require.NoError(t, err)
	assert.Equal(t, "Name", header)

	value, err := f.GetCellValue("Sheet1", "B5")
	require.NoError(t, err)
	assert.Equal(t, "30", value)
}

func TestGenerateXlsxPlainText(t *testing.T) {
	g, _ := newTestGenerator(t)

	doc, err := g.Generate("line one\nline two", "memo", "xlsx")
	require.NoError(t, err)

	f, err := excelize.OpenFile(doc.Path)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue("Sheet1", "A4")
	require.NoError(t, err)
	assert.Equal(t, "line one", value)

	value, err = f.GetCellValue("Sheet1", "A5")
	require.NoError(t, err)
	assert.Equal(t, "line two", value)
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	g, _ := newTestGenerator(t)

	_, err := g.Generate("content", "doc", "docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported document format")
}

func TestGenerateDefaultFilename(t *testing.T) {
	g, _ := newTestGenerator(t)

	doc, err := g.Generate("content", "", "txt")
	require.NoError(t, err)
	assert.Equal(t, "document.txt", doc.Filename)
}

func TestFormats(t *testing.T) {
	formats := Formats()
	byID := map[string]Format{}
	for _, f := range formats {
		byID[f.ID] = f
	}

	assert.True(t, byID["pdf"].Available)
	assert.True(t, byID["xlsx"].Available)
	assert.True(t, byID["txt"].Available)
	assert.False(t, byID["docx"].Available)
}
