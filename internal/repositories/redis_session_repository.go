package repositories

import (
	"context"
	"encoding/json"
	"time"

	"jarvis-assistant/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Redis key layout
	sessionKeyPrefix  = "session:"
	messagesKeySuffix = ":messages"
	sessionActivity   = "sessions:by-activity"
)

// sessionMeta is the persisted session record without its message list.
// Messages live in a separate Redis list so appends are atomic and
// naturally append-only.
type sessionMeta struct {
	ID          string                    `json:"session_id"`
	Title       string                    `json:"title"`
	CreatedAt   time.Time                 `json:"created_at"`
	LastContext []models.RetrievedContext `json:"last_context,omitempty"`
}

// RedisSessionRepository implements SessionRepository using Redis
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a new Redis-based session repository
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{
		client: client,
	}
}

// CreateSession opens a new session with a generated UUID
func (r *RedisSessionRepository) CreateSession(ctx context.Context, title string) (*ChatSession, error) {
	now := time.Now()
	meta := sessionMeta{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, NewSessionRepositoryError("create_session", meta.ID, err, "failed to marshal session")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+meta.ID, metaJSON, 0)
	pipe.ZAdd(ctx, sessionActivity, redis.Z{Score: float64(now.UnixNano()), Member: meta.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, NewSessionRepositoryError("create_session", meta.ID, err, "failed to execute transaction")
	}

	return &ChatSession{
		ID:             meta.ID,
		Title:          meta.Title,
		CreatedAt:      now,
		LastActivityAt: now,
		Messages:       []models.Message{},
	}, nil
}

// GetSession retrieves a session by ID, including its message history
func (r *RedisSessionRepository) GetSession(ctx context.Context, sessionID string) (*ChatSession, error) {
	meta, err := r.getMeta(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := r.GetHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	activity, err := r.client.ZScore(ctx, sessionActivity, sessionID).Result()
	lastActivity := meta.CreatedAt
	if err == nil {
		lastActivity = time.Unix(0, int64(activity))
	}

	return &ChatSession{
		ID:             meta.ID,
		Title:          meta.Title,
		CreatedAt:      meta.CreatedAt,
		LastActivityAt: lastActivity,
		Messages:       messages,
		LastContext:    meta.LastContext,
	}, nil
}

// AppendMessage appends a message to the session's Redis list
func (r *RedisSessionRepository) AppendMessage(ctx context.Context, sessionID string, msg models.Message) error {
	if err := msg.Validate(); err != nil {
		return NewSessionRepositoryError("append_message", sessionID, err, "")
	}

	if _, err := r.getMeta(ctx, sessionID); err != nil {
		return err
	}

	msgJSON, err := json.Marshal(msg)
	if err != nil {
		return NewSessionRepositoryError("append_message", sessionID, err, "failed to marshal message")
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, sessionKeyPrefix+sessionID+messagesKeySuffix, msgJSON)
	pipe.ZAdd(ctx, sessionActivity, redis.Z{Score: float64(time.Now().UnixNano()), Member: sessionID})
	if _, err := pipe.Exec(ctx); err != nil {
		return NewSessionRepositoryError("append_message", sessionID, err, "failed to execute transaction")
	}
	return nil
}

// GetHistory returns a snapshot of the session's messages
func (r *RedisSessionRepository) GetHistory(ctx context.Context, sessionID string) ([]models.Message, error) {
	if _, err := r.getMeta(ctx, sessionID); err != nil {
		return nil, err
	}

	raw, err := r.client.LRange(ctx, sessionKeyPrefix+sessionID+messagesKeySuffix, 0, -1).Result()
	if err != nil {
		return nil, NewSessionRepositoryError("get_history", sessionID, err, "")
	}

	messages := make([]models.Message, 0, len(raw))
	for _, item := range raw {
		var msg models.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, NewSessionRepositoryError("get_history", sessionID, err, "failed to unmarshal message")
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// ClearSession deletes the message list and retained context, keeping the session
func (r *RedisSessionRepository) ClearSession(ctx context.Context, sessionID string) error {
	meta, err := r.getMeta(ctx, sessionID)
	if err != nil {
		return err
	}

	meta.LastContext = nil
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return NewSessionRepositoryError("clear_session", sessionID, err, "failed to marshal session")
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+sessionID+messagesKeySuffix)
	pipe.Set(ctx, sessionKeyPrefix+sessionID, metaJSON, 0)
	pipe.ZAdd(ctx, sessionActivity, redis.Z{Score: float64(time.Now().UnixNano()), Member: sessionID})
	if _, err := pipe.Exec(ctx); err != nil {
		return NewSessionRepositoryError("clear_session", sessionID, err, "failed to execute transaction")
	}
	return nil
}

// SetLastContext records the most recent retrieved context set
func (r *RedisSessionRepository) SetLastContext(ctx context.Context, sessionID string, contexts []models.RetrievedContext) error {
	meta, err := r.getMeta(ctx, sessionID)
	if err != nil {
		return err
	}

	meta.LastContext = contexts
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return NewSessionRepositoryError("set_last_context", sessionID, err, "failed to marshal session")
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+sessionID, metaJSON, 0).Err(); err != nil {
		return NewSessionRepositoryError("set_last_context", sessionID, err, "")
	}
	return nil
}

// ListSessions returns summaries ordered most-recent-activity first,
// using the activity sorted set as the index.
func (r *RedisSessionRepository) ListSessions(ctx context.Context) ([]*models.SessionSummary, error) {
	ids, err := r.client.ZRevRange(ctx, sessionActivity, 0, -1).Result()
	if err != nil {
		return nil, NewSessionRepositoryError("list_sessions", "", err, "")
	}

	summaries := make([]*models.SessionSummary, 0, len(ids))
	for _, id := range ids {
		session, err := r.GetSession(ctx, id)
		if err != nil {
			// Index may briefly lead the session keys; skip missing entries
			if _, ok := err.(*SessionNotFoundError); ok {
				continue
			}
			return nil, err
		}
		summaries = append(summaries, session.Summary())
	}
	return summaries, nil
}

// Ping checks if the Redis connection is alive
func (r *RedisSessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisSessionRepository) Close() error {
	return r.client.Close()
}

func (r *RedisSessionRepository) getMeta(ctx context.Context, sessionID string) (*sessionMeta, error) {
	metaJSON, err := r.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, &SessionNotFoundError{SessionID: sessionID}
	}
	if err != nil {
		return nil, NewSessionRepositoryError("get_session", sessionID, err, "")
	}

	var meta sessionMeta
	if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
		return nil, NewSessionRepositoryError("get_session", sessionID, err, "failed to unmarshal session")
	}
	return &meta, nil
}
