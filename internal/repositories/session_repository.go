package repositories

import (
	"context"
	"time"

	"jarvis-assistant/internal/models"
)

// SessionRepository defines the interface for chat session storage.
// Message history is strictly append-only: it never shrinks except via
// ClearSession, which replaces the list wholesale with an empty one.
type SessionRepository interface {
	// CreateSession opens a new session with a freshly generated ID.
	// Session IDs are never reused.
	CreateSession(ctx context.Context, title string) (*ChatSession, error)

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, sessionID string) (*ChatSession, error)

	// AppendMessage appends a message to the session history.
	// Fails with a SessionNotFound error if the session is unknown.
	AppendMessage(ctx context.Context, sessionID string, msg models.Message) error

	// GetHistory returns a read-only snapshot of the session's messages
	GetHistory(ctx context.Context, sessionID string) ([]models.Message, error)

	// ClearSession empties the message history without deleting the session
	ClearSession(ctx context.Context, sessionID string) error

	// SetLastContext records the most recent retrieved context set for display
	SetLastContext(ctx context.Context, sessionID string, contexts []models.RetrievedContext) error

	// ListSessions returns session summaries ordered most-recent-activity first
	ListSessions(ctx context.Context) ([]*models.SessionSummary, error)

	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// ChatSession represents a chat session and its message history
type ChatSession struct {
	ID             string                    `json:"session_id"`
	Title          string                    `json:"title"`
	CreatedAt      time.Time                 `json:"created_at"`
	LastActivityAt time.Time                 `json:"last_activity_at"`
	Messages       []models.Message          `json:"messages"`
	LastContext    []models.RetrievedContext `json:"last_context,omitempty"`
}

// Summary builds the listing view of the session
func (s *ChatSession) Summary() *models.SessionSummary {
	summary := &models.SessionSummary{
		ID:             s.ID,
		Title:          s.Title,
		MessageCount:   len(s.Messages),
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
	}
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == models.RoleUser {
			summary.Preview = s.Messages[i].Content
			break
		}
	}
	return summary
}

// SessionRepositoryError represents errors from the session repository
type SessionRepositoryError struct {
	Operation string
	SessionID string
	Err       error
	Message   string
}

func (e *SessionRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	prefix := e.Operation
	if e.SessionID != "" {
		prefix += " (session: " + e.SessionID + ")"
	}
	if e.Err != nil {
		return prefix + ": " + e.Err.Error()
	}
	return prefix + ": unknown error"
}

func (e *SessionRepositoryError) Unwrap() error {
	return e.Err
}

// NewSessionRepositoryError creates a new session repository error
func NewSessionRepositoryError(operation, sessionID string, err error, message string) *SessionRepositoryError {
	return &SessionRepositoryError{
		Operation: operation,
		SessionID: sessionID,
		Err:       err,
		Message:   message,
	}
}

// SessionNotFoundError reports an unknown session ID
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return "session not found: " + e.SessionID
}
