package repositories

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fileKeyPrefix = "file:"
	fileIndexKey  = "files:index"
)

// RedisFileRepository implements FileRepository using Redis
type RedisFileRepository struct {
	client *redis.Client
}

// NewRedisFileRepository creates a new Redis-based file registry
func NewRedisFileRepository(client *redis.Client) *RedisFileRepository {
	return &RedisFileRepository{
		client: client,
	}
}

// Register stores a new uploaded file record
func (r *RedisFileRepository) Register(ctx context.Context, file *UploadedFile) error {
	if err := file.Validate(); err != nil {
		return err
	}

	exists, err := r.client.Exists(ctx, fileKeyPrefix+file.ID).Result()
	if err != nil {
		return NewFileRepositoryError("register", file.ID, err, "")
	}
	if exists > 0 {
		return NewFileRepositoryError("register", file.ID, nil, "file already exists: "+file.ID)
	}

	now := time.Now()
	file.CreatedAt = now
	file.UpdatedAt = now

	fileJSON, err := json.Marshal(file)
	if err != nil {
		return NewFileRepositoryError("register", file.ID, err, "failed to marshal file")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, fileKeyPrefix+file.ID, fileJSON, 0)
	pipe.SAdd(ctx, fileIndexKey, file.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return NewFileRepositoryError("register", file.ID, err, "failed to execute transaction")
	}
	return nil
}

// Get retrieves an uploaded file by ID
func (r *RedisFileRepository) Get(ctx context.Context, fileID string) (*UploadedFile, error) {
	fileJSON, err := r.client.Get(ctx, fileKeyPrefix+fileID).Result()
	if err == redis.Nil {
		return nil, FileNotFoundError(fileID)
	}
	if err != nil {
		return nil, NewFileRepositoryError("get", fileID, err, "")
	}

	var file UploadedFile
	if err := json.Unmarshal([]byte(fileJSON), &file); err != nil {
		return nil, NewFileRepositoryError("get", fileID, err, "failed to unmarshal file")
	}
	return &file, nil
}

// List returns all uploaded files, newest first
func (r *RedisFileRepository) List(ctx context.Context) ([]*UploadedFile, error) {
	ids, err := r.client.SMembers(ctx, fileIndexKey).Result()
	if err != nil {
		return nil, NewFileRepositoryError("list", "", err, "")
	}
	if len(ids) == 0 {
		return []*UploadedFile{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, fileKeyPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, NewFileRepositoryError("list", "", err, "failed to execute batch get")
	}

	files := make([]*UploadedFile, 0, len(ids))
	for i, cmd := range cmds {
		fileJSON, err := cmd.Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, NewFileRepositoryError("list", ids[i], err, "")
		}
		var file UploadedFile
		if err := json.Unmarshal([]byte(fileJSON), &file); err != nil {
			return nil, NewFileRepositoryError("list", ids[i], err, "failed to unmarshal file")
		}
		files = append(files, &file)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})
	return files, nil
}

// UpdateStatus transitions a file's ingest status
func (r *RedisFileRepository) UpdateStatus(ctx context.Context, fileID string, status IngestStatus, chunkCount int, message string) error {
	if !status.IsValid() {
		return InvalidFileError(fileID, "unknown ingest status: "+string(status))
	}

	file, err := r.Get(ctx, fileID)
	if err != nil {
		return err
	}

	file.IngestStatus = status
	file.ChunkCount = chunkCount
	file.Error = message
	file.UpdatedAt = time.Now()

	fileJSON, err := json.Marshal(file)
	if err != nil {
		return NewFileRepositoryError("update_status", fileID, err, "failed to marshal file")
	}
	if err := r.client.Set(ctx, fileKeyPrefix+fileID, fileJSON, 0).Err(); err != nil {
		return NewFileRepositoryError("update_status", fileID, err, "")
	}
	return nil
}

// Ping checks if the Redis connection is alive
func (r *RedisFileRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisFileRepository) Close() error {
	return r.client.Close()
}
