// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/interviewcoach/backend/internal/domain/interview"
	"github.com/interviewcoach/backend/internal/llm"
	"github.com/interviewcoach/backend/internal/service"
	"github.com/interviewcoach/backend/internal/speech"
	"github.com/interviewcoach/backend/internal/store"
)

const maxJSONBody = 1 << 20

// Handler holds all dependencies needed by HTTP handlers.
type Handler struct {
	svc    *service.InterviewService
	logger *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(svc *service.InterviewService, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// ErrorResponse is the body of every error reply. Kind tells the caller
// whether to fix the input, refresh its state or retry later.
type ErrorResponse struct {
	Error string `json:"error" example:"turn already answered"`
	Kind  string `json:"kind" example:"state"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, ErrorResponse{Error: msg, Kind: errorKind(status)})
}

func errorKind(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return "validation"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "state"
	case http.StatusBadGateway:
		return "upstream"
	default:
		return "internal"
	}
}

type validator interface {
	Validate() error
}

// decodeAndValidate reads a JSON body into v and runs its Validate method.
// It writes a 400 and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v validator) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := v.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// handleServiceError maps orchestrator errors to HTTP responses. Returns
// true if an error was handled (caller should return).
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}

	var (
		validationErr    *interview.ValidationError
		generationErr    *llm.GenerationError
		transcriptionErr *speech.TranscriptionError
	)

	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, interview.ErrNotOwner):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, interview.ErrSessionDone),
		errors.Is(err, interview.ErrNoOpenTurn),
		errors.Is(err, interview.ErrDuplicateSubmission):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrConflict):
		respondError(w, http.StatusConflict, "session changed by a concurrent request, reload it")
	case errors.As(err, &generationErr), errors.As(err, &transcriptionErr):
		h.logger.Warn("upstream failure", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("internal error", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
	return true
}
