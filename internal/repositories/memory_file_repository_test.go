package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func pendingFile(id, name string) *UploadedFile {
	return &UploadedFile{
		ID:           id,
		Name:         name,
		SizeBytes:    42,
		MimeType:     "text/plain",
		IngestStatus: IngestStatusPending,
	}
}

func TestMemoryFileRepository_RegisterAndGet(t *testing.T) {
	repo := NewMemoryFileRepository()
	ctx := context.Background()

	assert.NoError(t, repo.Register(ctx, pendingFile("f1", "notes.txt")))

	file, err := repo.Get(ctx, "f1")
	assert.NoError(t, err)
	assert.Equal(t, "notes.txt", file.Name)
	assert.Equal(t, IngestStatusPending, file.IngestStatus)
	assert.False(t, file.CreatedAt.IsZero())
}

func TestMemoryFileRepository_RegisterDuplicate(t *testing.T) {
	repo := NewMemoryFileRepository()
	ctx := context.Background()

	assert.NoError(t, repo.Register(ctx, pendingFile("f1", "notes.txt")))
	assert.Error(t, repo.Register(ctx, pendingFile("f1", "other.txt")))
}

func TestMemoryFileRepository_RegisterInvalid(t *testing.T) {
	repo := NewMemoryFileRepository()
	ctx := context.Background()

	assert.Error(t, repo.Register(ctx, pendingFile("", "notes.txt")))
	assert.Error(t, repo.Register(ctx, pendingFile("f1", "")))
	assert.Error(t, repo.Register(ctx, &UploadedFile{ID: "f1", Name: "x", IngestStatus: "bogus"}))
}

func TestMemoryFileRepository_GetNotFound(t *testing.T) {
	repo := NewMemoryFileRepository()

	_, err := repo.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestMemoryFileRepository_UpdateStatus(t *testing.T) {
	repo := NewMemoryFileRepository()
	ctx := context.Background()

	assert.NoError(t, repo.Register(ctx, pendingFile("f1", "notes.txt")))
	assert.NoError(t, repo.UpdateStatus(ctx, "f1", IngestStatusIndexed, 7, ""))

	file, err := repo.Get(ctx, "f1")
	assert.NoError(t, err)
	assert.Equal(t, IngestStatusIndexed, file.IngestStatus)
	assert.Equal(t, 7, file.ChunkCount)
	assert.Empty(t, file.Error)

	assert.NoError(t, repo.UpdateStatus(ctx, "f1", IngestStatusFailed, 3, "embedding backend down"))
	file, err = repo.Get(ctx, "f1")
	assert.NoError(t, err)
	assert.Equal(t, IngestStatusFailed, file.IngestStatus)
	assert.Equal(t, "embedding backend down", file.Error)
}

func TestMemoryFileRepository_ListNewestFirst(t *testing.T) {
	repo := NewMemoryFileRepository()
	ctx := context.Background()

	assert.NoError(t, repo.Register(ctx, pendingFile("f1", "older.txt")))
	time.Sleep(5 * time.Millisecond)
	assert.NoError(t, repo.Register(ctx, pendingFile("f2", "newer.txt")))

	files, err := repo.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Equal(t, "f2", files[0].ID)
	assert.Equal(t, "f1", files[1].ID)
}
