package navigation

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"partnersearch/internal/company/models"
	"partnersearch/internal/hierarchy"
	dErrors "partnersearch/pkg/domain-errors"
	"partnersearch/pkg/platform/httputil"
	"partnersearch/pkg/requestcontext"
)

type Navigator interface {
	State(ctx context.Context, user string) State
	Select(ctx context.Context, user string, company models.Company) State
	NavigateTo(ctx context.Context, user, duns string) (State, error)
	Back(ctx context.Context, user string) State
	ToggleView(ctx context.Context, user string) State
	SetView(ctx context.Context, user, mode string) (State, error)
	Clear(ctx context.Context, user string) State
}

type stateResponse struct {
	State
	CanGoBack bool                `json:"can_go_back"`
	Tree      *hierarchy.TreeView `json:"tree,omitempty"`
}

func newStateResponse(s State) stateResponse {
	resp := stateResponse{State: s, CanGoBack: s.CanGoBack()}
	if s.Hierarchy != nil {
		tree := hierarchy.BuildTree(s.Hierarchy.DUNS, s.Hierarchy.Hierarchy, s.View, "")
		resp.Tree = &tree
	}
	return resp
}

type selectRequest struct {
	Company *models.Company `json:"company"`
}

func (r *selectRequest) Validate() error {
	if r.Company == nil {
		return dErrors.New(dErrors.CodeValidation, "company is required")
	}
	return nil
}

type navigateRequest struct {
	DUNS string `json:"duns"`
}

func (r *navigateRequest) Validate() error {
	if r.DUNS == "" {
		return dErrors.New(dErrors.CodeValidation, "duns is required")
	}
	return nil
}

type Handler struct {
	service Navigator
	logger  *slog.Logger
}

func NewHandler(service Navigator, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/navigation", func(r chi.Router) {
		r.Get("/", h.handleState)
		r.Post("/select", h.handleSelect)
		r.Post("/navigate", h.handleNavigate)
		r.Post("/back", h.handleBack)
		r.Post("/view", h.handleView)
		r.Post("/clear", h.handleClear)
	})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httputil.WriteJSON(w, http.StatusOK, newStateResponse(h.service.State(ctx, requestcontext.Username(ctx))))
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[selectRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	state := h.service.Select(ctx, requestcontext.Username(ctx), *req.Company)
	httputil.WriteJSON(w, http.StatusOK, newStateResponse(state))
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[navigateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	state, err := h.service.NavigateTo(ctx, requestcontext.Username(ctx), req.DUNS)
	if err != nil {
		h.logger.WarnContext(ctx, "navigation failed", "error", err, "duns", req.DUNS, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newStateResponse(state))
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httputil.WriteJSON(w, http.StatusOK, newStateResponse(h.service.Back(ctx, requestcontext.Username(ctx))))
}

// handleView toggles the tree mode, or sets it when ?mode= is given.
func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := requestcontext.Username(ctx)
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		httputil.WriteJSON(w, http.StatusOK, newStateResponse(h.service.ToggleView(ctx, user)))
		return
	}
	state, err := h.service.SetView(ctx, user, mode)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newStateResponse(state))
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httputil.WriteJSON(w, http.StatusOK, newStateResponse(h.service.Clear(ctx, requestcontext.Username(ctx))))
}
