package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "partnersearch/pkg/domain-errors"
	"partnersearch/pkg/platform/httputil"
	"partnersearch/pkg/requestcontext"
)

const (
	bannerMessage = "D&B Business Partner Search API"
	bannerVersion = "1.0"
)

type Authenticator interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	ActiveUser(ctx context.Context, username string) (*User, error)
}

type Handler struct {
	service Authenticator
	logger  *slog.Logger
	login   []func(http.Handler) http.Handler
}

type HandlerOption func(*Handler)

// WithLoginMiddleware wraps only the login route, e.g. with a rate limiter.
func WithLoginMiddleware(mws ...func(http.Handler) http.Handler) HandlerOption {
	return func(h *Handler) {
		h.login = append(h.login, mws...)
	}
}

func NewHandler(service Authenticator, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterPublic mounts the routes reachable without a token.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/", h.handleBanner)
	r.With(h.login...).Post("/login", h.handleLogin)
}

// RegisterProtected mounts the routes behind RequireAuth and RequireActiveUser.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/verify-token", h.handleVerify)
}

func (h *Handler) handleBanner(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": bannerMessage,
		"version": bannerVersion,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	token, err := h.service.Login(ctx, *req)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, token)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.service.ActiveUser(ctx, requestcontext.Username(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VerifyResponse{Username: user.Username, Email: user.Email})
}

// RequireActiveUser rejects tokens whose subject no longer exists (401) or is
// disabled (400). It runs after RequireAuth.
func (h *Handler) RequireActiveUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if _, err := h.service.ActiveUser(ctx, requestcontext.Username(ctx)); err != nil {
			h.logger.WarnContext(ctx, "rejected request from inactive or unknown user",
				"username", requestcontext.Username(ctx),
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
				w.Header().Set("WWW-Authenticate", "Bearer")
			}
			httputil.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
