package services

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/presentia/backend/internal/pkg/recognition"
)

// readUploadedFiles loads multipart file contents into memory. Files are
// small images bounded by the upload size ceiling, so buffering them is
// acceptable.
func readUploadedFiles(headers []*multipart.FileHeader) ([]recognition.Image, error) {
	images := make([]recognition.Image, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file %s: %w", header.Filename, err)
		}

		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read uploaded file %s: %w", header.Filename, err)
		}

		images = append(images, recognition.Image{
			Name:    header.Filename,
			Content: content,
		})
	}
	return images, nil
}

// contentTypeFor maps a file name to the image content type used on upload
func contentTypeFor(name string) string {
	switch {
	case len(name) >= 4 && name[len(name)-4:] == ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
