package documents

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/viser-ai/viser-server/markdown"
)

func (g *Generator) renderXlsx(content string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Viser AI Generated Document")
	f.SetCellValue(sheet, "A2", fmt.Sprintf("Generated on: %s", g.now().Format("2006-01-02 15:04:05")))

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 16, Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("excel generation error: %w", err)
	}
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	subtitleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10, Italic: true}})
	if err != nil {
		return nil, fmt.Errorf("excel generation error: %w", err)
	}
	f.SetCellStyle(sheet, "A2", "A2", subtitleStyle)

	if table := markdown.ParseTable(content); table != nil {
		if err := g.renderXlsxTable(f, sheet, table); err != nil {
			return nil, err
		}
	} else {
		row := 4
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			f.SetCellValue(sheet, cell, line)
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel generation error: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) renderXlsxTable(f *excelize.File, sheet string, table *markdown.Table) error {
	const startRow = 4

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"667EEA"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("excel generation error: %w", err)
	}

	for col, header := range table.Headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, startRow)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for rowIdx, row := range table.Rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, startRow+1+rowIdx)
			f.SetCellValue(sheet, cell, value)
		}
	}

	// Size columns to their widest value, capped at 50.
	for col := range table.Headers {
		width := float64(len(table.Headers[col]))
		for _, row := range table.Rows {
			if col < len(row) && float64(len(row[col])) > width {
				width = float64(len(row[col]))
			}
		}
		if width+2 < 50 {
			width += 2
		} else {
			width = 50
		}
		name, _ := excelize.ColumnNumberToName(col + 1)
		f.SetColWidth(sheet, name, name, width)
	}
	return nil
}
