package holidayshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/employee"
	"hrms/internal/domain/holiday"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Store interface {
	holiday.Lister
	Create(ctx context.Context, h holiday.Holiday) (string, error)
	Delete(ctx context.Context, id string) error
}

type EmployeeGetter interface {
	Get(ctx context.Context, id string) (employee.Employee, error)
}

type Handler struct {
	Store     Store
	Resolver  *holiday.Resolver
	Employees EmployeeGetter
	Perms     middleware.PermissionStore
	Audit     shared.AuditRecorder
	Now       func() time.Time
}

func NewHandler(store Store, employees EmployeeGetter, perms middleware.PermissionStore, auditor shared.AuditRecorder) *Handler {
	return &Handler{
		Store:     store,
		Resolver:  holiday.NewResolver(store),
		Employees: employees,
		Perms:     perms,
		Audit:     auditor,
		Now:       time.Now,
	}
}

type holidayPayload struct {
	Name         string `json:"name"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	ScopeType    string `json:"scopeType"`
	DepartmentID string `json:"departmentId"`
	Location     string `json:"location"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/holidays", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermHolidaysRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermHolidaysWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermHolidaysRead, h.Perms)).Get("/resolve", h.handleResolve)
		r.With(middleware.RequirePermission(auth.PermHolidaysWrite, h.Perms)).Delete("/{holidayID}", h.handleDelete)
	})
}

// handleList returns holidays overlapping ?from..?to, defaulting to the current year.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	year := h.Now().UTC().Year()
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	v := shared.NewValidator()
	query := r.URL.Query()
	if raw := query.Get("from"); raw != "" {
		from, _ = v.Date("from", raw)
	}
	if raw := query.Get("to"); raw != "" {
		to, _ = v.Date("to", raw)
	}
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, requestID) {
		return
	}

	list, err := h.Store.ListOverlapping(r.Context(), from, to)
	if err != nil {
		slog.Error("list holidays failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "holidays_failed", "failed to list holidays", requestID)
		return
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload holidayPayload
	if !api.DecodeJSON(w, r, &payload, requestID) {
		return
	}

	v := shared.NewValidator()
	item := holiday.Holiday{
		Name:         strings.TrimSpace(payload.Name),
		ScopeType:    holiday.ScopeType(strings.ToLower(strings.TrimSpace(payload.ScopeType))),
		DepartmentID: strings.TrimSpace(payload.DepartmentID),
		Location:     strings.TrimSpace(payload.Location),
	}
	if item.ScopeType == "" {
		item.ScopeType = holiday.ScopeGlobal
	}
	item.StartDate, _ = v.Date("startDate", payload.StartDate)
	item.EndDate, _ = v.Date("endDate", payload.EndDate)
	if item.ScopeType == holiday.ScopeDepartment && item.DepartmentID != "" {
		v.UUID("departmentId", item.DepartmentID)
	}
	if !v.HasIssues() {
		v.AddFields(item.Validate(), "is missing or invalid")
	}
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Store.Create(r.Context(), item)
	if err != nil {
		slog.Error("create holiday failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "holiday_create_failed", "failed to create holiday", requestID)
		return
	}
	item.ID = id
	shared.RecordAudit(r, h.Audit, audit.Entry{Action: audit.ActionHolidayCreate, EntityType: "holiday", EntityID: id, After: item})
	api.Created(w, item, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	holidayID := chi.URLParam(r, "holidayID")
	v := shared.NewValidator()
	v.UUID("holidayID", holidayID)
	if v.Reject(w, requestID) {
		return
	}

	if err := h.Store.Delete(r.Context(), holidayID); err != nil {
		if errors.Is(err, holiday.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "holiday not found", requestID)
			return
		}
		slog.Error("delete holiday failed", "holidayId", holidayID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "holiday_delete_failed", "failed to delete holiday", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{Action: audit.ActionHolidayDelete, EntityType: "holiday", EntityID: holidayID})
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

// handleResolve answers whether ?date is a holiday for ?employeeId, or for an
// explicit ?departmentId / ?location pair when no employee is given.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	v := shared.NewValidator()
	date, _ := v.Date("date", query.Get("date"))
	subject := holiday.Subject{
		DepartmentID: strings.TrimSpace(query.Get("departmentId")),
		Location:     strings.TrimSpace(query.Get("location")),
	}
	employeeID := strings.TrimSpace(query.Get("employeeId"))
	if employeeID != "" {
		v.UUID("employeeId", employeeID)
	}
	if v.Reject(w, requestID) {
		return
	}

	if employeeID != "" {
		emp, err := h.Employees.Get(r.Context(), employeeID)
		if err != nil {
			if errors.Is(err, employee.ErrNotFound) {
				api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
				return
			}
			slog.Error("load employee failed", "employeeId", employeeID, "err", err)
			api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to load employee", requestID)
			return
		}
		subject = holiday.SubjectOf(emp)
	}

	found, ok, err := h.Resolver.Resolve(r.Context(), date, subject)
	if err != nil {
		slog.Error("resolve holiday failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "holiday_resolve_failed", "failed to resolve holiday", requestID)
		return
	}

	out := map[string]any{"date": date.Format(shared.DateLayout), "isHoliday": ok}
	if ok {
		out["holiday"] = found
	}
	api.Success(w, out, requestID)
}
