package quiz

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/signacademy/signquiz/internal/identity"
	httperrors "github.com/signacademy/signquiz/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for quiz session operations. All
// routes expect the identity middleware to have run.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for quiz endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "quiz_http").Logger(),
	}
}

// StartRequest is the POST /v1/quiz/start payload.
type StartRequest struct {
	Level int    `json:"level"`
	Topic string `json:"topic,omitempty"`
	Count int    `json:"count,omitempty"`
}

// AnswerRequest is the POST /v1/quiz/answer payload.
type AnswerRequest struct {
	SessionID     string `json:"session_id"`
	QuestionIndex *int   `json:"question_index"`
	Choice        int    `json:"choice"`
}

// FinishRequest is the POST /v1/quiz/finish payload.
type FinishRequest struct {
	SessionID string `json:"session_id"`
}

// Start handles POST /v1/quiz/start.
func (h *HTTPHandlers) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePost(w, r)
	if !ok {
		return
	}

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Level < 1 {
		req.Level = 1
	}

	result, err := h.service.Start(r.Context(), userID, StartParams{
		Level: req.Level,
		Topic: req.Topic,
		Count: req.Count,
	})
	if err != nil {
		h.respondDomainError(w, err, "start failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Answer handles POST /v1/quiz/answer.
func (h *HTTPHandlers) Answer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePost(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.SessionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "session_id is required", "session_id")
		return
	}
	if req.QuestionIndex == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "question_index is required", "question_index")
		return
	}

	result, err := h.service.Answer(r.Context(), userID, req.SessionID, *req.QuestionIndex, req.Choice)
	if err != nil {
		h.respondDomainError(w, err, "answer failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Finish handles POST /v1/quiz/finish.
func (h *HTTPHandlers) Finish(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePost(w, r)
	if !ok {
		return
	}

	var req FinishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.SessionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "session_id is required", "session_id")
		return
	}

	result, err := h.service.Finish(r.Context(), userID, req.SessionID)
	if err != nil {
		h.respondDomainError(w, err, "finish failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Status handles GET /v1/quiz/status.
func (h *HTTPHandlers) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	userID, ok := identity.FromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	ledger, err := h.service.Status(r.Context(), userID)
	if err != nil {
		h.respondDomainError(w, err, "status failed")
		return
	}

	respondJSON(w, http.StatusOK, ledger)
}

// Reset handles POST /v1/quiz/reset.
func (h *HTTPHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePost(w, r)
	if !ok {
		return
	}

	ledger, err := h.service.Reset(r.Context(), userID)
	if err != nil {
		h.respondDomainError(w, err, "reset failed")
		return
	}

	respondJSON(w, http.StatusOK, ledger)
}

func (h *HTTPHandlers) respondDomainError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrLevelLocked):
		httperrors.RespondForbidden(w, httperrors.ErrCodeLevelLocked, "Level is locked")
	case errors.Is(err, ErrInsufficientContent):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInsufficientContent, "Not enough signs to build a quiz")
	case errors.Is(err, ErrSessionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "Session not found")
	case errors.Is(err, ErrInvalidIndex):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidIndex, "Invalid question index")
	case errors.Is(err, ErrAlreadyFinished):
		httperrors.RespondConflict(w, httperrors.ErrCodeAlreadyFinished, "Session already finished")
	default:
		h.logger.Error().Err(err).Msg(msg)
		httperrors.RespondInternalError(w, "Internal error")
	}
}

// requirePost enforces the method and extracts the caller identity.
func requirePost(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return uuid.Nil, false
	}
	id, found := identity.FromContext(r.Context())
	if !found {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
