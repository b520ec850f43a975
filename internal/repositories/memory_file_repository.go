package repositories

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryFileRepository implements FileRepository with an in-process map
type MemoryFileRepository struct {
	mu    sync.RWMutex
	files map[string]*UploadedFile
}

// NewMemoryFileRepository creates an empty in-memory file registry
func NewMemoryFileRepository() *MemoryFileRepository {
	return &MemoryFileRepository{
		files: make(map[string]*UploadedFile),
	}
}

// Register stores a new uploaded file record
func (r *MemoryFileRepository) Register(ctx context.Context, file *UploadedFile) error {
	if err := file.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.files[file.ID]; exists {
		return NewFileRepositoryError("register", file.ID, nil, "file already exists: "+file.ID)
	}
	now := time.Now()
	file.CreatedAt = now
	file.UpdatedAt = now
	copied := *file
	r.files[file.ID] = &copied
	return nil
}

// Get retrieves an uploaded file by ID
func (r *MemoryFileRepository) Get(ctx context.Context, fileID string) (*UploadedFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file, ok := r.files[fileID]
	if !ok {
		return nil, FileNotFoundError(fileID)
	}
	copied := *file
	return &copied, nil
}

// List returns all uploaded files, newest first
func (r *MemoryFileRepository) List(ctx context.Context) ([]*UploadedFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	files := make([]*UploadedFile, 0, len(r.files))
	for _, file := range r.files {
		copied := *file
		files = append(files, &copied)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

// UpdateStatus transitions a file's ingest status
func (r *MemoryFileRepository) UpdateStatus(ctx context.Context, fileID string, status IngestStatus, chunkCount int, message string) error {
	if !status.IsValid() {
		return InvalidFileError(fileID, "unknown ingest status: "+string(status))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, ok := r.files[fileID]
	if !ok {
		return FileNotFoundError(fileID)
	}
	file.IngestStatus = status
	file.ChunkCount = chunkCount
	file.Error = message
	file.UpdatedAt = time.Now()
	return nil
}

// Ping always succeeds for the in-memory registry
func (r *MemoryFileRepository) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory registry
func (r *MemoryFileRepository) Close() error {
	return nil
}
