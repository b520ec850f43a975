package services

import (
	"context"
	"log"
	"sync"
	"time"

	"jarvis-assistant/internal/models"
	"jarvis-assistant/internal/repositories"
)

// DefaultGenerationTimeout bounds how long a single turn may spend in
// the generation phase.
const DefaultGenerationTimeout = 60 * time.Second

// TurnState tracks where a conversational turn is in its lifecycle
type TurnState string

const (
	TurnStateReceived   TurnState = "received"
	TurnStateRetrieving TurnState = "retrieving"
	TurnStateGenerating TurnState = "generating"
	TurnStatePersisted  TurnState = "persisted"
	TurnStateCompleted  TurnState = "completed"
	TurnStateFailed     TurnState = "failed"
)

// Retriever finds the passages most similar to a query
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedContext, error)
}

// Generator produces an answer grounded in retrieved context
type Generator interface {
	Generate(ctx context.Context, query string, contexts []models.RetrievedContext) (string, error)
}

// AssistantService orchestrates a conversational turn: validate,
// persist the user message, retrieve context, generate an answer,
// persist the answer. Turns on the same session are serialized;
// a second concurrent turn fails fast instead of queueing.
type AssistantService struct {
	sessions  repositories.SessionRepository
	retriever Retriever
	generator Generator
	logger    *log.Logger

	genTimeout time.Duration

	mu     sync.Mutex
	active map[string]struct{}
}

// NewAssistantService creates a new assistant orchestrator.
// A non-positive genTimeout falls back to the default.
func NewAssistantService(sessions repositories.SessionRepository, retriever Retriever, generator Generator, genTimeout time.Duration, logger *log.Logger) *AssistantService {
	if genTimeout <= 0 {
		genTimeout = DefaultGenerationTimeout
	}
	return &AssistantService{
		sessions:   sessions,
		retriever:  retriever,
		generator:  generator,
		logger:     logger,
		genTimeout: genTimeout,
		active:     make(map[string]struct{}),
	}
}

// HandleTurn runs one full turn against a session. Validation happens
// before any state changes; once the user message is persisted it stays
// in the history even when a later phase fails.
func (s *AssistantService) HandleTurn(ctx context.Context, req *models.TurnRequest) (*models.TurnResult, error) {
	if err := req.Validate(); err != nil {
		return nil, NewServiceError(CodeInvalidArgument, "handle_turn", err, err.Error())
	}

	if _, err := s.sessions.GetSession(ctx, req.SessionID); err != nil {
		return nil, NewServiceError(CodeNotFound, "handle_turn", err, "")
	}

	if !s.acquire(req.SessionID) {
		return nil, SessionBusyError(req.SessionID)
	}
	defer s.release(req.SessionID)

	state := TurnStateReceived
	s.logger.Printf("Turn %s for session %s", state, req.SessionID)

	userMsg := models.Message{
		Role:      models.RoleUser,
		Content:   req.Query,
		Timestamp: time.Now(),
	}
	if err := s.sessions.AppendMessage(ctx, req.SessionID, userMsg); err != nil {
		return nil, NewServiceError(CodeInternal, "handle_turn", err, "")
	}

	state = TurnStateRetrieving
	s.logger.Printf("Turn %s for session %s", state, req.SessionID)
	k := req.TopK
	if k == 0 {
		k = DefaultTopK
	}
	contexts, err := s.retriever.Retrieve(ctx, req.Query, k)
	if err != nil {
		s.logger.Printf("Turn %s for session %s: %v", TurnStateFailed, req.SessionID, err)
		return nil, err
	}

	state = TurnStateGenerating
	s.logger.Printf("Turn %s for session %s", state, req.SessionID)
	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()
	answer, err := s.generator.Generate(genCtx, req.Query, contexts)
	if err != nil {
		if genCtx.Err() == context.DeadlineExceeded && !IsCode(err, CodeGenerationTimeout) {
			err = NewServiceError(CodeGenerationTimeout, "handle_turn", err, "generation timed out")
		}
		s.logger.Printf("Turn %s for session %s: %v", TurnStateFailed, req.SessionID, err)
		return nil, err
	}

	state = TurnStatePersisted
	s.logger.Printf("Turn %s for session %s", state, req.SessionID)
	assistantMsg := models.Message{
		Role:      models.RoleAssistant,
		Content:   answer,
		Timestamp: time.Now(),
	}
	if err := s.sessions.AppendMessage(ctx, req.SessionID, assistantMsg); err != nil {
		return nil, NewServiceError(CodeInternal, "handle_turn", err, "")
	}
	if err := s.sessions.SetLastContext(ctx, req.SessionID, contexts); err != nil {
		s.logger.Printf("Failed to record context for session %s: %v", req.SessionID, err)
	}

	messages, err := s.sessions.GetHistory(ctx, req.SessionID)
	if err != nil {
		return nil, NewServiceError(CodeInternal, "handle_turn", err, "")
	}

	state = TurnStateCompleted
	s.logger.Printf("Turn %s for session %s (%d context passages)", state, req.SessionID, len(contexts))

	return &models.TurnResult{
		SessionID:   req.SessionID,
		State:       string(TurnStateCompleted),
		AnswerText:  answer,
		ContextUsed: contexts,
		Messages:    messages,
	}, nil
}

// acquire marks the session as busy; false means another turn holds it
func (s *AssistantService) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.active[sessionID]; busy {
		return false
	}
	s.active[sessionID] = struct{}{}
	return true
}

func (s *AssistantService) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, sessionID)
}
