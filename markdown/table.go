// Package markdown parses and repairs GitHub-Flavored Markdown tables
// produced by LLMs. Models routinely break table structure: missing
// trailing pipes, separators glued onto data lines, whole tables
// condensed into one line.
package markdown

import (
	"regexp"
	"strings"
)

// Table is a parsed markdown table.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ParseTable extracts the first markdown table from content. It tolerates
// a missing trailing pipe on each row. Returns nil when content holds no
// table with at least a header and one data row.
func ParseTable(content string) *Table {
	var tableLines [][]string
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		rest := strings.TrimSpace(strings.TrimRight(line[1:], "|"))
		cells := strings.Split(rest, "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		tableLines = append(tableLines, cells)
	}

	if len(tableLines) < 2 {
		return nil
	}

	headers := tableLines[0]

	// Separator lines carry only dashes, colons and spaces.
	var rows [][]string
	for _, row := range tableLines[1:] {
		if isSeparatorRow(row) {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil
	}
	return &Table{Headers: headers, Rows: rows}
}

func isSeparatorRow(cells []string) bool {
	for _, cell := range cells {
		for _, c := range cell {
			switch c {
			case ' ', '-', ':', '|':
			default:
				return false
			}
		}
	}
	return true
}

// IsValidTable reports whether content parses as a table with headers and
// at least one data row.
func IsValidTable(content string) bool {
	return ParseTable(content) != nil
}

// A run of one or more separator cells ("| --- | :---: |") embedded in a
// line. Condensed tables put the whole separator row between the header
// and data cells of a single line.
var separatorRunPattern = regexp.MustCompile(`\|(?:[ \t]*:?-{3,}:?[ \t]*\|)+`)

// RepairTable fixes the structural hallucinations models produce when
// emitting tables: doubled pipes standing in for newlines, and header,
// separator and data condensed onto a single line. Content without table
// markers is returned unchanged.
func RepairTable(text string) string {
	if !strings.Contains(text, "|") || !strings.Contains(text, "---") {
		return text
	}

	// Doubled pipes are almost always a swallowed newline.
	text = strings.ReplaceAll(text, "||", "|\n|")

	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		lines = append(lines, splitCondensedRow(line)...)
	}
	return strings.Join(lines, "\n")
}

// splitCondensedRow breaks a line that glues content cells around a
// separator run into header, separator and data lines. Plain rows and
// pure separator lines come back unchanged.
func splitCondensedRow(line string) []string {
	var out []string
	rest := line
	for {
		loc := separatorRunPattern.FindStringIndex(rest)
		if loc == nil {
			break
		}
		head := strings.TrimSpace(rest[:loc[0]])
		tail := strings.TrimSpace(rest[loc[1]:])
		if head == "" && tail == "" {
			break
		}

		if head != "" {
			// The match may have consumed the boundary pipe.
			if !strings.HasSuffix(head, "|") {
				head += " |"
			}
			out = append(out, head)
		}
		out = append(out, strings.TrimSpace(rest[loc[0]:loc[1]]))
		if tail == "" {
			return out
		}
		if !strings.HasPrefix(tail, "|") {
			tail = "| " + tail
		}
		rest = tail
	}
	return append(out, rest)
}
