package handlers

import (
	"encoding/json"
	"net/http"

	"jarvis-assistant/internal/services"
)

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// SuccessResponse is the JSON body for simple acknowledgements
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// HealthResponse reports server liveness
type HealthResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// HealthCheckHandler reports whether the server is up
// @Summary Health check
// @Description Check if the server is running
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Message: "Server is healthy",
		Status:  "success",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sendJSON writes data as a JSON response with the given status
func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// sendError writes a JSON error response
func sendError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}

// statusForError maps service error codes to HTTP status codes
func statusForError(err error) int {
	switch services.CodeOf(err) {
	case services.CodeInvalidArgument, services.CodeEmptyContent:
		return http.StatusBadRequest
	case services.CodeNotFound:
		return http.StatusNotFound
	case services.CodeSessionBusy:
		return http.StatusConflict
	case services.CodeGenerationTimeout:
		return http.StatusGatewayTimeout
	case services.CodeEmbeddingUnavailable, services.CodeGenerationUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// sendServiceError maps a service-layer error to an HTTP error response
func sendServiceError(w http.ResponseWriter, err error) {
	sendError(w, statusForError(err), err.Error())
}
