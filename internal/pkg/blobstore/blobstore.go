// Package blobstore abstracts the object storage used for captured and
// annotated images. Keys are namespaced by entity type and owning record so
// concurrent pipeline runs never collide.
package blobstore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

// Store is the blob store contract consumed by the ingestion pipeline.
type Store interface {
	// Put uploads data under key and returns the retrieval location.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes the object under key. Deleting a missing object is
	// not an error.
	Delete(ctx context.Context, key string) error
}

// ObjectName derives a collision-free object filename from the original
// upload name, keeping its extension.
func ObjectName(originalName string) string {
	ext := filepath.Ext(originalName)
	return uuid.NewString() + ext
}

// StudentKey builds the object key for a student's enrollment image.
func StudentKey(rollNumber, fileName string) string {
	return fmt.Sprintf("students/%s/%s", rollNumber, fileName)
}

// LectureKey builds the object key for a lecture's captured image.
func LectureKey(subjectID, lectureID int64, fileName string) string {
	return fmt.Sprintf("lectures/%d/%d/images/%s", subjectID, lectureID, fileName)
}
