package authhandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/auth"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
)

// Service is the slice of auth.Service the handlers call.
type Service interface {
	Login(ctx context.Context, email, password, mfaCode string) (auth.LoginResult, error)
	Logout(ctx context.Context, user auth.UserContext) error
	Refresh(ctx context.Context, token string) (string, error)
	SetupMFA(ctx context.Context, userID string) (auth.MFASetup, error)
	SetMFA(ctx context.Context, userID, code string, enabled bool) error
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

// RegisterPublicRoutes mounts the endpoints reachable without a session.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/refresh", h.HandleRefresh)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
	r.Post("/auth/mfa/setup", h.HandleMFASetup)
	r.Post("/auth/mfa/enable", h.HandleMFAEnable)
	r.Post("/auth/mfa/disable", h.HandleMFADisable)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if !api.DecodeJSON(w, r, &payload, requestID) {
		return
	}

	result, err := h.Service.Login(r.Context(), strings.TrimSpace(strings.ToLower(payload.Email)), payload.Password, payload.MFACode)
	if err != nil {
		failAuth(w, err, requestID)
		return
	}

	api.Success(w, map[string]any{
		"token": result.Token,
		"user":  map[string]string{"id": result.User.UserID, "roleId": result.User.RoleID, "role": result.User.RoleName},
	}, requestID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := middleware.GetUser(r.Context()); ok {
		if err := h.Service.Logout(r.Context(), user); err != nil {
			slog.Warn("logout session revoke failed", "userId", user.UserID, "err", err)
		}
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	refreshed, err := h.Service.Refresh(r.Context(), strings.TrimSpace(token))
	if err != nil {
		failAuth(w, err, requestID)
		return
	}
	api.Success(w, map[string]any{"token": refreshed}, requestID)
}

func (h *Handler) HandleMFASetup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	setup, err := h.Service.SetupMFA(r.Context(), user.UserID)
	if err != nil {
		failAuth(w, err, requestID)
		return
	}
	api.Success(w, setup, requestID)
}

func (h *Handler) HandleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, true)
}

func (h *Handler) HandleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, false)
}

func (h *Handler) toggleMFA(w http.ResponseWriter, r *http.Request, enabled bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	var payload mfaCodeRequest
	if !api.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	if err := h.Service.SetMFA(r.Context(), user.UserID, payload.Code, enabled); err != nil {
		failAuth(w, err, requestID)
		return
	}

	status := "disabled"
	if enabled {
		status = "enabled"
	}
	api.Success(w, map[string]string{"status": status}, requestID)
}

func failAuth(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
	case errors.Is(err, auth.ErrMFARequired):
		api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", requestID)
	case errors.Is(err, auth.ErrSessionExpired):
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "session expired", requestID)
	case errors.Is(err, auth.ErrMFAInvalid):
		api.Fail(w, http.StatusBadRequest, "mfa_invalid", "invalid mfa code", requestID)
	case errors.Is(err, auth.ErrMFAUnavailable):
		api.Fail(w, http.StatusBadRequest, "mfa_unavailable", "mfa requires encryption key", requestID)
	case errors.Is(err, auth.ErrMFAMissing):
		api.Fail(w, http.StatusBadRequest, "mfa_missing", "mfa setup required", requestID)
	default:
		slog.Error("auth request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "auth_failed", "authentication failed", requestID)
	}
}
