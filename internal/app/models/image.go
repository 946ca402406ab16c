package models

import "time"

// ImageRef points at an uploaded object in the blob store. The Key is the
// store-side identity; URL is the retrieval location returned at upload time.
type ImageRef struct {
	FileName   string    `json:"fileName"`
	FileSize   int64     `json:"fileSize"`
	Key        string    `json:"key"`
	URL        string    `json:"url,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Embedding is a reference embedding computed from one enrolled face image,
// used by the recognition service for matching.
type Embedding struct {
	Image     string    `json:"image"`
	Embedding []float64 `json:"embedding"`
}
