package repositories

import (
	"context"
	"time"
)

// FileRepository defines the interface for the uploaded-file registry.
// Uploaded files are referenced (not owned) by indexed documents; the
// ingestion pipeline drives their status transitions.
type FileRepository interface {
	Register(ctx context.Context, file *UploadedFile) error
	Get(ctx context.Context, fileID string) (*UploadedFile, error)
	List(ctx context.Context) ([]*UploadedFile, error)
	UpdateStatus(ctx context.Context, fileID string, status IngestStatus, chunkCount int, message string) error

	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// UploadedFile represents a file submitted for ingestion
type UploadedFile struct {
	ID           string       `json:"file_id"`
	Name         string       `json:"name"`
	SizeBytes    int64        `json:"size_bytes"`
	MimeType     string       `json:"mime_type,omitempty"`
	IngestStatus IngestStatus `json:"ingest_status"`
	ChunkCount   int          `json:"chunk_count"`
	Error        string       `json:"error,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IngestStatus represents where a file is in the ingestion pipeline
type IngestStatus string

const (
	IngestStatusPending IngestStatus = "pending"
	IngestStatusIndexed IngestStatus = "indexed"
	IngestStatusFailed  IngestStatus = "failed"
)

// IsValid checks if the ingest status is a known value
func (s IngestStatus) IsValid() bool {
	switch s {
	case IngestStatusPending, IngestStatusIndexed, IngestStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s IngestStatus) String() string {
	return string(s)
}

// Validate checks if the uploaded file record is valid
func (f *UploadedFile) Validate() error {
	if f.ID == "" {
		return InvalidFileError("", "file ID is required")
	}
	if f.Name == "" {
		return InvalidFileError(f.ID, "file name is required")
	}
	if !f.IngestStatus.IsValid() {
		return InvalidFileError(f.ID, "unknown ingest status: "+string(f.IngestStatus))
	}
	return nil
}

// FileRepositoryError represents errors from the file registry
type FileRepositoryError struct {
	Operation string
	FileID    string
	Err       error
	Message   string
}

func (e *FileRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	prefix := e.Operation
	if e.FileID != "" {
		prefix += " (file: " + e.FileID + ")"
	}
	if e.Err != nil {
		return prefix + ": " + e.Err.Error()
	}
	return prefix + ": unknown error"
}

func (e *FileRepositoryError) Unwrap() error {
	return e.Err
}

// NewFileRepositoryError creates a new file repository error
func NewFileRepositoryError(operation, fileID string, err error, message string) *FileRepositoryError {
	return &FileRepositoryError{
		Operation: operation,
		FileID:    fileID,
		Err:       err,
		Message:   message,
	}
}

// FileNotFoundError reports an unknown file ID
func FileNotFoundError(fileID string) error {
	return NewFileRepositoryError("get_file", fileID, nil, "file not found: "+fileID)
}

// InvalidFileError reports a malformed file record
func InvalidFileError(fileID, reason string) error {
	return NewFileRepositoryError("validate_file", fileID, nil, "invalid file: "+reason)
}
