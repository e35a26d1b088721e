// Package handler exposes hierarchy lookups, tree views and exports over HTTP.
package handler

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"partnersearch/internal/company/models"
	"partnersearch/internal/hierarchy"
	"partnersearch/internal/hierarchy/cache"
	"partnersearch/internal/hierarchy/service"
	dErrors "partnersearch/pkg/domain-errors"
	"partnersearch/pkg/platform/httputil"
	"partnersearch/pkg/requestcontext"
)

// Service defines the hierarchy operations used by the handler.
type Service interface {
	Get(ctx context.Context, duns string) (*models.Envelope, error)
	Tree(ctx context.Context, duns string, mode hierarchy.ViewMode, term string) (*hierarchy.TreeView, error)
	Export(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error)
	CreateExportLink(ctx context.Context, req service.ExportRequest) (*service.ExportLink, error)
	Download(ctx context.Context, id string) (*cache.Artifact, error)
}

const deliveryLink = "link"

type Handler struct {
	service Service
	logger  *slog.Logger
	export  []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithExportMiddleware wraps the export route, which costs two upstream
// calls and a workbook encode per request.
func WithExportMiddleware(mws ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.export = append(h.export, mws...)
	}
}

func New(svc Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: svc, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the routes on r. Authentication is applied by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Get("/company-hierarchy/{duns}", h.handleGet)
	r.Get("/company-hierarchy/{duns}/tree", h.handleTree)
	r.With(h.export...).Get("/company-hierarchy/{duns}/export", h.handleExport)
	r.Get("/exports/{id}", h.handleDownload)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, err := h.service.Get(ctx, chi.URLParam(r, "duns"))
	if err != nil {
		h.writeError(ctx, w, err, "hierarchy lookup failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, env)
}

func (h *Handler) handleTree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	mode, ok := hierarchy.ParseViewMode(q.Get("mode"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "mode must be one of: full, downward"))
		return
	}
	view, err := h.service.Tree(ctx, chi.URLParam(r, "duns"), mode, q.Get("q"))
	if err != nil {
		h.writeError(ctx, w, err, "tree view failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

type exportLinkResponse struct {
	*service.ExportLink
	DownloadURL string `json:"download_url"`
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	req := service.ExportRequest{DUNS: chi.URLParam(r, "duns"), Language: q.Get("lang")}

	if q.Get("delivery") == deliveryLink {
		link, err := h.service.CreateExportLink(ctx, req)
		if err != nil {
			h.writeError(ctx, w, err, "export failed")
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, exportLinkResponse{
			ExportLink:  link,
			DownloadURL: "/api/exports/" + link.ID,
		})
		return
	}

	result, err := h.service.Export(ctx, req)
	if err != nil {
		h.writeError(ctx, w, err, "export failed")
		return
	}
	h.logger.InfoContext(ctx, "hierarchy exported",
		"duns", req.DUNS,
		"entities", result.Entities,
		"request_id", requestcontext.RequestID(ctx),
	)
	writeAttachment(w, result.FileName, result.ContentType, result.Data)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	artifact, err := h.service.Download(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(ctx, w, err, "export download failed")
		return
	}
	writeAttachment(w, artifact.FileName, artifact.ContentType, artifact.Data)
}

func writeAttachment(w http.ResponseWriter, fileName, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	requestID := requestcontext.RequestID(ctx)
	if de, ok := dErrors.From(err); ok && httputil.StatusFor(de.Code) < http.StatusInternalServerError {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestID)
	} else {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestID)
	}
	httputil.WriteError(w, err)
}
