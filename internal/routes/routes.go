package routes

import (
	"jarvis-assistant/internal/handlers"

	"github.com/gorilla/mux"
)

// Handlers collects everything the router needs
type Handlers struct {
	Chat     *handlers.ChatHandler
	Session  *handlers.SessionHandler
	Document *handlers.DocumentHandler
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(router *mux.Router, h *Handlers) {
	// Health endpoints
	router.HandleFunc("/health", handlers.HealthCheckHandler).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Conversational turns
	api.HandleFunc("/chat", h.Chat.Turn).Methods("POST")

	// Sessions
	api.HandleFunc("/sessions", h.Session.Create).Methods("POST")
	api.HandleFunc("/sessions", h.Session.List).Methods("GET")
	api.HandleFunc("/sessions/{id}/messages", h.Session.History).Methods("GET")
	api.HandleFunc("/sessions/{id}/messages", h.Session.Clear).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/export", h.Session.Export).Methods("GET")

	// Corpus management
	api.HandleFunc("/documents", h.Document.Upload).Methods("POST")
	api.HandleFunc("/documents", h.Document.List).Methods("GET")
	api.HandleFunc("/documents/{id}/retry", h.Document.Retry).Methods("POST")
	api.HandleFunc("/stats", h.Document.Stats).Methods("GET")
	api.HandleFunc("/index", h.Document.ResetIndex).Methods("DELETE")
}
