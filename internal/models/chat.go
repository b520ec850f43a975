package models

import (
	"strings"
	"time"
)

// Role identifies the author of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid checks if the role is one of the known values
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message represents a single message in a conversation.
// Messages are immutable once created and belong to exactly one session.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks if the message is valid
func (m *Message) Validate() error {
	if !m.Role.IsValid() {
		return &ValidationError{Field: "role", Message: "role must be user or assistant"}
	}
	if m.Content == "" {
		return &ValidationError{Field: "content", Message: "content is required"}
	}
	return nil
}

// RetrievedContext represents a single passage retrieved for a turn.
// It is ephemeral: produced per query and discarded after the answer is
// synthesized, optionally retained read-only on the session for display.
type RetrievedContext struct {
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	Score      float32 `json:"score"` // Cosine similarity in [0,1], higher is better
}

// TurnRequest represents one conversational turn submitted by a client
type TurnRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	TopK      int    `json:"top_k,omitempty"` // 0 means use the server default
}

// Validate checks the turn request before any state is mutated
func (r *TurnRequest) Validate() error {
	if r.SessionID == "" {
		return &ValidationError{Field: "session_id", Message: "session ID is required"}
	}
	if strings.TrimSpace(r.Query) == "" {
		return &ValidationError{Field: "query", Message: "query is required"}
	}
	if r.TopK < 0 {
		return &ValidationError{Field: "top_k", Message: "top_k cannot be negative"}
	}
	return nil
}

// TurnResult represents the outcome of a completed turn
type TurnResult struct {
	SessionID   string             `json:"session_id"`
	State       string             `json:"state"`
	AnswerText  string             `json:"answer_text"`
	ContextUsed []RetrievedContext `json:"context_used"`
	Messages    []Message          `json:"messages"` // Session snapshot after the turn
}

// SessionSummary is the listing view of a chat session
type SessionSummary struct {
	ID             string    `json:"session_id"`
	Title          string    `json:"title"`
	MessageCount   int       `json:"message_count"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	Preview        string    `json:"preview,omitempty"` // Content of the most recent user message
}

// CreateSessionRequest represents a request to open a new chat session
type CreateSessionRequest struct {
	Title string `json:"title"`
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
