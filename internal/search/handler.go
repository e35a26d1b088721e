package search

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"partnersearch/internal/company/models"
	"partnersearch/internal/company/store"
	"partnersearch/internal/dnb"
	"partnersearch/pkg/platform/httputil"
	"partnersearch/pkg/requestcontext"
)

type Searcher interface {
	Search(ctx context.Context, criteria dnb.Criteria) ([]models.Company, error)
	Recent(ctx context.Context, limit int) []models.Company
}

type searchRequest struct {
	dnb.Criteria
}

func (r *searchRequest) Validate() error {
	r.Criteria = Normalize(r.Criteria)
	return Validate(r.Criteria)
}

type searchResponse struct {
	Results []models.Company `json:"results"`
	Count   int              `json:"count"`
}

type Handler struct {
	service Searcher
	logger  *slog.Logger
}

func NewHandler(service Searcher, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/unified-search", h.handleSearch)
	r.Get("/cached-companies", h.handleRecent)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[searchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	results, err := h.service.Search(ctx, req.Criteria)
	if err != nil {
		h.logger.ErrorContext(ctx, "unified search failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, searchResponse{Results: results, Count: len(results)})
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Recent(r.Context(), store.DefaultRecentLimit))
}
