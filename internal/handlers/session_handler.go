package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"jarvis-assistant/internal/models"
	"jarvis-assistant/internal/repositories"

	"github.com/gorilla/mux"
)

// SessionHandler handles HTTP requests for chat sessions
type SessionHandler struct {
	sessions repositories.SessionRepository
	logger   *log.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions repositories.SessionRepository, logger *log.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Create opens a new chat session
// @Summary Create session
// @Description Open a new chat session with an empty history
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body models.CreateSessionRequest false "Session options"
// @Success 201 {object} models.SessionSummary
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.Title == "" {
		req.Title = "New conversation"
	}

	session, err := h.sessions.CreateSession(r.Context(), req.Title)
	if err != nil {
		h.logger.Printf("Failed to create session: %v", err)
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Printf("Created session %s", session.ID)
	sendJSON(w, http.StatusCreated, session.Summary())
}

// List returns all sessions, most recently active first
// @Summary List sessions
// @Description List session summaries ordered by last activity
// @Tags sessions
// @Produce json
// @Success 200 {array} models.SessionSummary
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/sessions [get]
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.sessions.ListSessions(r.Context())
	if err != nil {
		h.logger.Printf("Failed to list sessions: %v", err)
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendJSON(w, http.StatusOK, summaries)
}

// History returns the full message history of a session
// @Summary Get session history
// @Description Return every message in the session, oldest first
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} models.Message
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/sessions/{id}/messages [get]
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	messages, err := h.sessions.GetHistory(r.Context(), sessionID)
	if err != nil {
		h.sendRepositoryError(w, sessionID, err)
		return
	}
	sendJSON(w, http.StatusOK, messages)
}

// Clear empties a session's history without deleting the session
// @Summary Clear session
// @Description Remove every message from the session; the session itself survives
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/sessions/{id}/messages [delete]
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := h.sessions.ClearSession(r.Context(), sessionID); err != nil {
		h.sendRepositoryError(w, sessionID, err)
		return
	}

	h.logger.Printf("Cleared session %s", sessionID)
	sendJSON(w, http.StatusOK, SuccessResponse{Message: "Session cleared"})
}

// Export returns the session transcript as plain text
// @Summary Export session
// @Description Download the session history as a plain-text transcript
// @Tags sessions
// @Produce plain
// @Param id path string true "Session ID"
// @Success 200 {string} string "Transcript"
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/sessions/{id}/export [get]
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		h.sendRepositoryError(w, sessionID, err)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Transcript: %s\n", session.Title))
	sb.WriteString(fmt.Sprintf("Session: %s\n\n", session.ID))
	for _, msg := range session.Messages {
		sb.WriteString(fmt.Sprintf("[%s] %s: %s\n", models.FormatTimestamp(msg.Timestamp), msg.Role, msg.Content))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "session-"+session.ID+".txt"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sb.String()))
}

func (h *SessionHandler) sendRepositoryError(w http.ResponseWriter, sessionID string, err error) {
	if _, ok := err.(*repositories.SessionNotFoundError); ok {
		sendError(w, http.StatusNotFound, "Session not found: "+sessionID)
		return
	}
	h.logger.Printf("Session operation failed for %s: %v", sessionID, err)
	sendError(w, http.StatusInternalServerError, err.Error())
}
