// Package extract reads text out of uploaded files so the LLM can see
// them. Each format gets its own reader; Content dispatches on the
// filename extension.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".webp": true, ".tiff": true, ".svg": true,
}

var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true,
	".txt": true, ".rtf": true, ".odt": true,
	".md": true, ".csv": true, ".xlsx": true,
}

// DetectKind classifies a file extension as image, document or other.
func DetectKind(extension string) string {
	ext := strings.ToLower(extension)
	switch {
	case imageExtensions[ext]:
		return "image"
	case documentExtensions[ext]:
		return "document"
	default:
		return "other"
	}
}

var imageMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".svg":  "image/svg+xml",
}

// ImageMIMEType returns the MIME type for an image extension, defaulting
// to image/jpeg.
func ImageMIMEType(extension string) string {
	if mime, ok := imageMIMETypes[strings.ToLower(extension)]; ok {
		return mime
	}
	return "image/jpeg"
}

// Content extracts the text of a document by extension. Unknown
// extensions are read as plain text.
func Content(path, filename string) (string, error) {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".docx"):
		return DocxText(path)
	case strings.HasSuffix(name, ".pdf"):
		return PDFText(path)
	case strings.HasSuffix(name, ".xlsx"):
		return XlsxText(path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("error reading file: %w", err)
		}
		return string(data), nil
	}
}

// TruncateMiddle caps content at max characters by keeping the start and
// end halves. The analysis prompt cares most about document openings and
// conclusions.
func TruncateMiddle(content string, max int) (string, bool) {
	if len(content) <= max {
		return content, false
	}
	half := max / 2
	return content[:half] + "\n\n[... CONTENT TRUNCATED ...]\n\n" + content[len(content)-half:], true
}

// DocTypeHint guesses the document category from filename keywords to
// steer the analysis prompt.
func DocTypeHint(filename string) string {
	name := strings.ToLower(filename)
	switch {
	case containsAny(name, "test", "case", "scenario", "spec"):
		return "This appears to be a test case or specification document."
	case containsAny(name, "api", "endpoint", "rest", "swagger"):
		return "This appears to be an API documentation or specification."
	case containsAny(name, "readme", "guide", "manual", "tutorial"):
		return "This appears to be a guide or documentation."
	case containsAny(name, "code", "script", "program", ".py", ".js", ".java"):
		return "This appears to be a code file or technical document."
	default:
		return ""
	}
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Ext returns the lowercase extension of a filename, dot included.
func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
