package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"jarvis-assistant/internal/models"
	"jarvis-assistant/internal/services"
)

// ChatHandler handles HTTP requests for conversational turns
type ChatHandler struct {
	assistant *services.AssistantService
	logger    *log.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(assistant *services.AssistantService, logger *log.Logger) *ChatHandler {
	return &ChatHandler{
		assistant: assistant,
		logger:    logger,
	}
}

// Turn handles one conversational turn against a session
// @Summary Ask the assistant
// @Description Run one retrieval-augmented turn: the query is answered from the indexed corpus and both messages are appended to the session history
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.TurnRequest true "Turn request"
// @Success 200 {object} models.TurnResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /api/v1/chat [post]
func (h *ChatHandler) Turn(w http.ResponseWriter, r *http.Request) {
	h.logger.Printf("Chat request from %s", r.RemoteAddr)

	var req models.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Printf("Failed to decode request: %v", err)
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.assistant.HandleTurn(r.Context(), &req)
	if err != nil {
		h.logger.Printf("Turn failed: %v", err)
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, result)
}
