package documents

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/viser-ai/viser-server/markdown"
)

func (g *Generator) renderPDF(content string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Viser AI Generated Document", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	if table := markdown.ParseTable(content); table != nil {
		g.renderPDFTable(pdf, table)
	} else {
		pdf.SetFont("Helvetica", "", 10)
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			pdf.MultiCell(0, 6, line, "", "L", false)
			pdf.Ln(1)
		}
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(128, 128, 128)
	footer := fmt.Sprintf("Generated by Viser AI on %s", g.now().Format("2006-01-02 15:04:05"))
	pdf.CellFormat(0, 6, footer, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf generation error: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) renderPDFTable(pdf *fpdf.Fpdf, table *markdown.Table) {
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(table.Headers))

	// Header row: white on the accent purple.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(102, 126, 234)
	pdf.SetTextColor(255, 255, 255)
	for _, header := range table.Headers {
		pdf.CellFormat(colW, 8, header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(245, 245, 220)
	for _, row := range table.Rows {
		for col := 0; col < len(table.Headers); col++ {
			cell := ""
			if col < len(row) {
				cell = row[col]
			}
			pdf.CellFormat(colW, 7, cell, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
}
