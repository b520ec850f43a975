package models

import (
	"time"
)

// UploadRequest represents a JSON upload of one or more raw passages.
// Each passage becomes an UploadedFile that flows through the ingestion
// pipeline exactly like a multipart file upload.
type UploadRequest struct {
	Passages []UploadPassage `json:"passages"`
}

// UploadPassage is a single named piece of raw content
type UploadPassage struct {
	Name     string                 `json:"name"`
	Text     string                 `json:"text"`
	MimeType string                 `json:"mime_type,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Validate checks the upload request
func (r *UploadRequest) Validate() error {
	if len(r.Passages) == 0 {
		return &ValidationError{Field: "passages", Message: "at least one passage is required"}
	}
	for _, p := range r.Passages {
		if p.Text == "" {
			return &ValidationError{Field: "text", Message: "passage text is required"}
		}
	}
	return nil
}

// UploadedFileDTO is the API view of an uploaded file
type UploadedFileDTO struct {
	ID           string `json:"file_id"`
	Name         string `json:"name"`
	SizeBytes    int64  `json:"size_bytes"`
	MimeType     string `json:"mime_type,omitempty"`
	IngestStatus string `json:"ingest_status"`
	ChunkCount   int    `json:"chunk_count"`
	Error        string `json:"error,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// UploadResponse acknowledges accepted uploads
type UploadResponse struct {
	Files  []UploadedFileDTO `json:"files"`
	Status string            `json:"status"`
}

// IndexStats reports knowledge base statistics
type IndexStats struct {
	TotalVectors int `json:"total_vectors"`
	Dimension    int `json:"dimension"`
}

// FormatTimestamp renders repository timestamps for DTOs
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
