package extract

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// ImageData is an image encoded for a vision model.
type ImageData struct {
	Base64Data string
	MIMEType   string
	Size       int64
}

// Image reads an image file and base64-encodes it for inline upload.
func Image(path string) (*ImageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading image: %w", err)
	}

	return &ImageData{
		Base64Data: base64.StdEncoding.EncodeToString(data),
		MIMEType:   ImageMIMEType(filepath.Ext(path)),
		Size:       int64(len(data)),
	}, nil
}
