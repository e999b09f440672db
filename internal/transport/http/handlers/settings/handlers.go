package settingshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/policy"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Service interface {
	Settings(ctx context.Context) (policy.Settings, error)
	Update(ctx context.Context, updates map[string]any) error
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Audit   shared.AuditRecorder
}

func NewHandler(service Service, perms middleware.PermissionStore, auditor shared.AuditRecorder) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditor}
}

// apiKeys maps the JSON field names of policy.Settings to stored setting keys.
var apiKeys = map[string]string{
	"pfEnabled":     policy.KeyPFEnabled,
	"esicEnabled":   policy.KeyESICEnabled,
	"ptaxEnabled":   policy.KeyPTaxEnabled,
	"pfRate":        policy.KeyPFRate,
	"esicRate":      policy.KeyESICRate,
	"esicWageLimit": policy.KeyESICWageLimit,
	"ptaxSlabs":     policy.KeyPTaxSlabs,
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermSettingsRead, h.Perms)).Get("/payroll", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermSettingsWrite, h.Perms)).Put("/payroll", h.handleUpdate)
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	settings, err := h.Service.Settings(r.Context())
	if err != nil {
		slog.Error("load payroll settings failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "settings_failed", "failed to load payroll settings", requestID)
		return
	}
	api.Success(w, settings, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload map[string]any
	if !api.DecodeJSON(w, r, &payload, requestID, api.UseNumber()) {
		return
	}

	updates := make(map[string]any, len(payload))
	for field, value := range payload {
		if key, ok := apiKeys[field]; ok {
			field = key
		}
		updates[field] = value
	}

	before, err := h.Service.Settings(r.Context())
	if err != nil {
		slog.Warn("load payroll settings before update failed", "err", err)
	}

	if err := h.Service.Update(r.Context(), updates); err != nil {
		switch {
		case errors.Is(err, policy.ErrUnknownKey),
			errors.Is(err, policy.ErrInvalidBoolean),
			errors.Is(err, policy.ErrInvalidNumber),
			errors.Is(err, policy.ErrInvalidSlabs):
			api.Fail(w, http.StatusBadRequest, "invalid_settings", err.Error(), requestID)
		default:
			slog.Error("update payroll settings failed", "err", err)
			api.Fail(w, http.StatusInternalServerError, "settings_update_failed", "failed to update payroll settings", requestID)
		}
		return
	}

	after, err := h.Service.Settings(r.Context())
	if err != nil {
		slog.Error("load payroll settings failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "settings_failed", "failed to load payroll settings", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{Action: audit.ActionSettingsUpdate, EntityType: "payroll_settings", Before: before, After: after})
	api.Success(w, after, requestID)
}
