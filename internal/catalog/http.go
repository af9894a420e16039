package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	httperrors "github.com/signacademy/signquiz/pkg/http/errors"
)

const maxSearchLimit = 200

// HTTPHandler exposes REST endpoints for catalog browsing.
type HTTPHandler struct {
	svc          *Service
	defaultLimit int
	logger       zerolog.Logger
}

// NewHTTPHandler constructs a catalog HTTP handler.
func NewHTTPHandler(svc *Service, defaultLimit int, logger zerolog.Logger) *HTTPHandler {
	if defaultLimit <= 0 {
		defaultLimit = 60
	}
	return &HTTPHandler{
		svc:          svc,
		defaultLimit: defaultLimit,
		logger:       logger.With().Str("component", "catalog_http").Logger(),
	}
}

// HandleSigns routes GET /v1/signs and GET /v1/signs/{id}.
func (h *HTTPHandler) HandleSigns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/signs"), "/")
	if rest == "" {
		h.list(w, r)
		return
	}
	h.detail(w, r, rest)
}

// list handles GET /v1/signs?q=&limit=
func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= maxSearchLimit {
			limit = parsed
		}
	}

	items, err := h.svc.Search(r.Context(), term, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("term", term).Msg("sign search failed")
		httperrors.RespondInternalError(w, "Failed to fetch signs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// detail handles GET /v1/signs/{id}
func (h *HTTPHandler) detail(w http.ResponseWriter, r *http.Request, id string) {
	sign, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSignNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "Sign not found")
			return
		}
		h.logger.Error().Err(err).Str("sign_id", id).Msg("sign lookup failed")
		httperrors.RespondInternalError(w, "Failed to fetch sign")
		return
	}

	writeJSON(w, http.StatusOK, sign)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
