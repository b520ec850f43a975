package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"jarvis-assistant/internal/models"
	"jarvis-assistant/internal/repositories"
	"jarvis-assistant/internal/services"
	"jarvis-assistant/internal/workers"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// maxUploadBytes bounds multipart uploads held in memory
const maxUploadBytes = 32 << 20

// IngestQueue accepts files for background ingestion
type IngestQueue interface {
	Enqueue(job workers.IngestJob) error
}

// DocumentHandler handles HTTP requests for corpus management
type DocumentHandler struct {
	files     repositories.FileRepository
	ingestion *services.IngestionService
	retrieval *services.RetrievalService
	queue     IngestQueue
	logger    *log.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(files repositories.FileRepository, ingestion *services.IngestionService, retrieval *services.RetrievalService, queue IngestQueue, logger *log.Logger) *DocumentHandler {
	return &DocumentHandler{
		files:     files,
		ingestion: ingestion,
		retrieval: retrieval,
		queue:     queue,
		logger:    logger,
	}
}

// Upload accepts new content for the corpus. It takes either a JSON
// body of named passages or a multipart form with one or more files;
// both paths register the content and queue it for ingestion.
// @Summary Upload documents
// @Description Submit passages (JSON) or files (multipart) for asynchronous ingestion into the corpus
// @Tags documents
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param request body models.UploadRequest false "Passages to ingest"
// @Success 202 {object} models.UploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.logger.Printf("Upload request from %s", r.RemoteAddr)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		h.uploadMultipart(w, r)
		return
	}
	h.uploadJSON(w, r)
}

func (h *DocumentHandler) uploadJSON(w http.ResponseWriter, r *http.Request) {
	var req models.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	dtos := make([]models.UploadedFileDTO, 0, len(req.Passages))
	for _, passage := range req.Passages {
		name := passage.Name
		if name == "" {
			name = "passage"
		}
		mimeType := passage.MimeType
		if mimeType == "" {
			mimeType = "text/plain"
		}
		dto, err := h.acceptContent(r, name, mimeType, passage.Text)
		if err != nil {
			h.logger.Printf("Failed to accept passage %s: %v", name, err)
			sendError(w, http.StatusInternalServerError, err.Error())
			return
		}
		dtos = append(dtos, *dto)
	}

	sendJSON(w, http.StatusAccepted, models.UploadResponse{Files: dtos, Status: "accepted"})
}

func (h *DocumentHandler) uploadMultipart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		sendError(w, http.StatusBadRequest, "No files provided in 'files' field")
		return
	}

	dtos := make([]models.UploadedFileDTO, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		file, err := header.Open()
		if err != nil {
			sendError(w, http.StatusBadRequest, "Failed to open uploaded file: "+header.Filename)
			return
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			sendError(w, http.StatusBadRequest, "Failed to read uploaded file: "+header.Filename)
			return
		}

		dto, err := h.acceptContent(r, header.Filename, header.Header.Get("Content-Type"), string(content))
		if err != nil {
			h.logger.Printf("Failed to accept file %s: %v", header.Filename, err)
			sendError(w, http.StatusInternalServerError, err.Error())
			return
		}
		dtos = append(dtos, *dto)
	}

	sendJSON(w, http.StatusAccepted, models.UploadResponse{Files: dtos, Status: "accepted"})
}

// acceptContent registers the content as a pending file and queues it
func (h *DocumentHandler) acceptContent(r *http.Request, name, mimeType, content string) (*models.UploadedFileDTO, error) {
	file := &repositories.UploadedFile{
		ID:           uuid.NewString(),
		Name:         name,
		SizeBytes:    int64(len(content)),
		MimeType:     mimeType,
		IngestStatus: repositories.IngestStatusPending,
	}
	if err := h.files.Register(r.Context(), file); err != nil {
		return nil, err
	}

	if err := h.queue.Enqueue(workers.IngestJob{FileID: file.ID, Content: content}); err != nil {
		h.logger.Printf("Queue full, ingesting %s synchronously: %v", file.ID, err)
		if ingErr := h.ingestion.Ingest(r.Context(), file.ID, content); ingErr != nil {
			return nil, ingErr
		}
		if refreshed, getErr := h.files.Get(r.Context(), file.ID); getErr == nil {
			file = refreshed
		}
	}

	dto := toFileDTO(file)
	return &dto, nil
}

// List returns all uploaded files with their ingest status
// @Summary List documents
// @Description List every uploaded file and its ingestion status, newest first
// @Tags documents
// @Produce json
// @Success 200 {array} models.UploadedFileDTO
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/documents [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.List(r.Context())
	if err != nil {
		h.logger.Printf("Failed to list files: %v", err)
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}

	dtos := make([]models.UploadedFileDTO, 0, len(files))
	for _, file := range files {
		dtos = append(dtos, toFileDTO(file))
	}
	sendJSON(w, http.StatusOK, dtos)
}

// Retry re-attempts ingestion of a file's failed chunks
// @Summary Retry ingestion
// @Description Re-run ingestion for the chunks of a file that failed to index; already indexed chunks are untouched
// @Tags documents
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} models.UploadedFileDTO
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/documents/{id}/retry [post]
func (h *DocumentHandler) Retry(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["id"]

	if err := h.ingestion.Retry(r.Context(), fileID); err != nil {
		h.logger.Printf("Retry failed for file %s: %v", fileID, err)
		sendServiceError(w, err)
		return
	}

	file, err := h.files.Get(r.Context(), fileID)
	if err != nil {
		sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sendJSON(w, http.StatusOK, toFileDTO(file))
}

// Stats reports the current state of the vector index
// @Summary Index statistics
// @Description Report the number of indexed vectors and the embedding dimension
// @Tags index
// @Produce json
// @Success 200 {object} models.IndexStats
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/stats [get]
func (h *DocumentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.retrieval.Stats(r.Context())
	if err != nil {
		h.logger.Printf("Failed to read index stats: %v", err)
		sendServiceError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, stats)
}

// ResetIndex drops every vector from the index
// @Summary Reset index
// @Description Remove all indexed documents; uploaded file records are kept for audit
// @Tags index
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/index [delete]
func (h *DocumentHandler) ResetIndex(w http.ResponseWriter, r *http.Request) {
	if err := h.ingestion.Reset(r.Context()); err != nil {
		h.logger.Printf("Failed to reset index: %v", err)
		sendServiceError(w, err)
		return
	}

	h.logger.Printf("Vector index reset")
	sendJSON(w, http.StatusOK, SuccessResponse{Message: "Index reset"})
}

// toFileDTO converts a repository file record to its API view
func toFileDTO(file *repositories.UploadedFile) models.UploadedFileDTO {
	return models.UploadedFileDTO{
		ID:           file.ID,
		Name:         file.Name,
		SizeBytes:    file.SizeBytes,
		MimeType:     file.MimeType,
		IngestStatus: file.IngestStatus.String(),
		ChunkCount:   file.ChunkCount,
		Error:        file.Error,
		CreatedAt:    models.FormatTimestamp(file.CreatedAt),
		UpdatedAt:    models.FormatTimestamp(file.UpdatedAt),
	}
}
