package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/genres"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/repositories"
	"github.com/desertthunder/crate/internal/search"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/go-playground/validator/v10"
)

// errorResponse is the JSON envelope returned for every failed request.
// Details carries the underlying error and is omitted in production.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// writeJSON serializes v into the response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing useful left to do.
		_ = err
	}
}

// writeError writes the error envelope with the given status code.
func writeError(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message, Details: details})
}

// statusForKind translates an error classification into an HTTP status code.
//
// Auth, forbidden and upstream failures all collapse to 500: the caller sent
// a valid request and the service could not serve it.
func statusForKind(kind shared.Kind) int {
	switch kind {
	case shared.KindValidation:
		return http.StatusBadRequest
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError classifies err and writes the envelope, hiding the underlying
// detail when production is set.
func respondError(w http.ResponseWriter, err error, production bool, logger *log.Logger) {
	normalized := shared.Normalize(err)
	logger.Error("request failed", "kind", normalized.Kind, "error", normalized.Detail)

	details := normalized.Detail
	if production {
		details = ""
	}

	writeError(w, statusForKind(normalized.Kind), string(normalized.Kind), normalized.Message, details)
}

// GenresHandler serves the available genre taxonomy.
type GenresHandler struct {
	cache      *genres.Cache
	logger     *log.Logger
	production bool
}

// NewGenresHandler creates a handler over the given genre cache.
func NewGenresHandler(cache *genres.Cache, logger *log.Logger, production bool) *GenresHandler {
	return &GenresHandler{cache: cache, logger: logger, production: production}
}

// Routes returns the HTTP routes this handler serves.
func (h *GenresHandler) Routes() []string {
	return []string{"/genres"}
}

// ServeHTTP handles GET /genres, returning the sorted genre labels.
func (h *GenresHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use GET for this endpoint.", "")
		return
	}

	labels, err := h.cache.Available(r.Context())
	if err != nil {
		respondError(w, err, h.production, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"genres": labels,
		"count":  len(labels),
	})
}

// searchRequest is the POST /search/playlists body.
type searchRequest struct {
	Genres           []string `json:"genres" validate:"required,min=1,max=10,dive,required"`
	MinFollowerCount int      `json:"minFollowerCount" validate:"gte=0"`
	Limit            int      `json:"limit" validate:"gte=0,lte=50"`
}

// SearchHandler orchestrates playlist searches over HTTP.
//
// A non-nil history repository records each successful search; a recording
// failure is logged and never fails the response.
type SearchHandler struct {
	orchestrator *search.Orchestrator
	history      *repositories.SearchRepository
	validate     *validator.Validate
	logger       *log.Logger
	production   bool
}

// NewSearchHandler creates a handler over the given orchestrator. The history
// repository may be nil to disable search logging.
func NewSearchHandler(orchestrator *search.Orchestrator, history *repositories.SearchRepository, logger *log.Logger, production bool) *SearchHandler {
	return &SearchHandler{
		orchestrator: orchestrator,
		history:      history,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       logger,
		production:   production,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *SearchHandler) Routes() []string {
	return []string{"/search/playlists"}
}

// ServeHTTP handles POST /search/playlists.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Use POST for this endpoint.", "")
		return
	}

	var req searchRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondError(w, fmt.Errorf("%w: malformed JSON body: %v", shared.ErrInvalidInput, err), h.production, h.logger)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err), h.production, h.logger)
		return
	}

	criteria := models.NewSearchCriteria(req.Genres, req.MinFollowerCount, req.Limit)

	result, err := h.orchestrator.Search(r.Context(), criteria)
	if err != nil {
		respondError(w, err, h.production, h.logger)
		return
	}

	if h.history != nil {
		if err := h.history.Create(models.NewSearchRecord(result)); err != nil {
			h.logger.Warn("failed to record search", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// HealthHandler reports process liveness.
type HealthHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/health"}
}

// ServeHTTP handles GET /health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
