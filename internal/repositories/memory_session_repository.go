package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"jarvis-assistant/internal/models"

	"github.com/google/uuid"
)

// MemorySessionRepository implements SessionRepository with an in-process map.
// Useful for tests and Redis-less deployments.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*ChatSession
}

// NewMemorySessionRepository creates an empty in-memory session repository
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*ChatSession),
	}
}

// CreateSession opens a new session with a generated UUID
func (r *MemorySessionRepository) CreateSession(ctx context.Context, title string) (*ChatSession, error) {
	now := time.Now()
	session := &ChatSession{
		ID:             uuid.NewString(),
		Title:          title,
		CreatedAt:      now,
		LastActivityAt: now,
		Messages:       []models.Message{},
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return snapshotSession(session), nil
}

// GetSession retrieves a session by ID
func (r *MemorySessionRepository) GetSession(ctx context.Context, sessionID string) (*ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, &SessionNotFoundError{SessionID: sessionID}
	}
	return snapshotSession(session), nil
}

// AppendMessage appends a message to the session history
func (r *MemorySessionRepository) AppendMessage(ctx context.Context, sessionID string, msg models.Message) error {
	if err := msg.Validate(); err != nil {
		return NewSessionRepositoryError("append_message", sessionID, err, "")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return &SessionNotFoundError{SessionID: sessionID}
	}
	session.Messages = append(session.Messages, msg)
	session.LastActivityAt = time.Now()
	return nil
}

// GetHistory returns a snapshot of the session's messages
func (r *MemorySessionRepository) GetHistory(ctx context.Context, sessionID string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, &SessionNotFoundError{SessionID: sessionID}
	}
	history := make([]models.Message, len(session.Messages))
	copy(history, session.Messages)
	return history, nil
}

// ClearSession empties the history without deleting the session
func (r *MemorySessionRepository) ClearSession(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return &SessionNotFoundError{SessionID: sessionID}
	}
	session.Messages = []models.Message{}
	session.LastContext = nil
	session.LastActivityAt = time.Now()
	return nil
}

// SetLastContext records the most recent retrieved context set
func (r *MemorySessionRepository) SetLastContext(ctx context.Context, sessionID string, contexts []models.RetrievedContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return &SessionNotFoundError{SessionID: sessionID}
	}
	session.LastContext = append([]models.RetrievedContext(nil), contexts...)
	return nil
}

// ListSessions returns summaries ordered most-recent-activity first
func (r *MemorySessionRepository) ListSessions(ctx context.Context) ([]*models.SessionSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]*models.SessionSummary, 0, len(r.sessions))
	for _, session := range r.sessions {
		summaries = append(summaries, session.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastActivityAt.After(summaries[j].LastActivityAt)
	})
	return summaries, nil
}

// Ping always succeeds for the in-memory repository
func (r *MemorySessionRepository) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory repository
func (r *MemorySessionRepository) Close() error {
	return nil
}

// snapshotSession copies a session so callers cannot mutate owned state
func snapshotSession(s *ChatSession) *ChatSession {
	copied := *s
	copied.Messages = make([]models.Message, len(s.Messages))
	copy(copied.Messages, s.Messages)
	if s.LastContext != nil {
		copied.LastContext = append([]models.RetrievedContext(nil), s.LastContext...)
	}
	return &copied
}
