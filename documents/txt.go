package documents

import (
	"fmt"
	"strings"
)

func (g *Generator) renderTxt(content string) []byte {
	banner := strings.Repeat("=", 60)

	var lines []string
	lines = append(lines,
		banner,
		"VISER AI GENERATED DOCUMENT",
		banner,
		fmt.Sprintf("Generated on: %s", g.now().Format("2006-01-02 15:04:05")),
		"",
	)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		// Markdown table separators carry no content in plain text.
		if line == "" || strings.HasPrefix(line, "|---") || strings.HasPrefix(line, "| ---") {
			continue
		}
		lines = append(lines, line)
	}

	lines = append(lines, "", banner, "End of Document", banner)
	return []byte(strings.Join(lines, "\n"))
}
