package employeeshandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/employee"
	"hrms/internal/domain/salary"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type EmployeeStore interface {
	List(ctx context.Context) ([]employee.Employee, error)
	Get(ctx context.Context, id string) (employee.Employee, error)
	Create(ctx context.Context, in employee.NewEmployee) (string, error)
	UpdateStatutory(ctx context.Context, id string, flags employee.Statutory) error
}

type SalaryStore interface {
	Current(ctx context.Context, employeeID string) (salary.Structure, error)
	Upsert(ctx context.Context, in salary.Structure) (salary.Structure, error)
	History(ctx context.Context, employeeID string) ([]salary.Revision, error)
}

type Handler struct {
	Employees EmployeeStore
	Salaries  SalaryStore
	Perms     middleware.PermissionStore
	Audit     shared.AuditRecorder
}

func NewHandler(employees EmployeeStore, salaries SalaryStore, perms middleware.PermissionStore, auditor shared.AuditRecorder) *Handler {
	return &Handler{Employees: employees, Salaries: salaries, Perms: perms, Audit: auditor}
}

type employeePayload struct {
	UserID        string `json:"userId"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	DepartmentID  string `json:"departmentId"`
	Location      string `json:"location"`
	DateOfJoining string `json:"dateOfJoining"`
	employee.Statutory
}

type salaryPayload struct {
	salary.Structure
	EffectiveFrom string `json:"effectiveFrom"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/{employeeID}/statutory", h.handleUpdateStatutory)
		r.With(middleware.RequirePermission(auth.PermSalaryRead, h.Perms)).Get("/{employeeID}/salary", h.handleGetSalary)
		r.With(middleware.RequirePermission(auth.PermSalaryWrite, h.Perms)).Put("/{employeeID}/salary", h.handlePutSalary)
		r.With(middleware.RequirePermission(auth.PermSalaryRead, h.Perms)).Get("/{employeeID}/salary/history", h.handleSalaryHistory)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	list, err := h.Employees.List(r.Context())
	if err != nil {
		slog.Error("list employees failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", requestID)
		return
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload employeePayload
	if !api.DecodeJSON(w, r, &payload, requestID) {
		return
	}

	v := shared.NewValidator()
	in := employee.NewEmployee{
		UserID:       strings.TrimSpace(payload.UserID),
		FirstName:    strings.TrimSpace(payload.FirstName),
		LastName:     strings.TrimSpace(payload.LastName),
		Email:        strings.ToLower(strings.TrimSpace(payload.Email)),
		DepartmentID: strings.TrimSpace(payload.DepartmentID),
		Location:     strings.TrimSpace(payload.Location),
		Statutory:    payload.Statutory,
	}
	if joined, ok := v.Date("dateOfJoining", payload.DateOfJoining); ok {
		in.DateOfJoining = joined
	}
	if in.UserID != "" {
		v.UUID("userId", in.UserID)
	}
	if in.DepartmentID != "" {
		v.UUID("departmentId", in.DepartmentID)
	}
	for _, field := range in.Validate() {
		if field != "dateOfJoining" {
			v.Add(field, "is missing or invalid")
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Employees.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, employee.ErrEmailExists) {
			api.Fail(w, http.StatusConflict, "employee_exists", "an employee with this email already exists", requestID)
			return
		}
		slog.Error("create employee failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{Action: audit.ActionEmployeeCreate, EntityType: "employee", EntityID: id, After: in})
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleUpdateStatutory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	if !validID(w, employeeID, requestID) {
		return
	}

	var flags employee.Statutory
	if !api.DecodeJSON(w, r, &flags, requestID) {
		return
	}
	if err := h.Employees.UpdateStatutory(r.Context(), employeeID, flags); err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
			return
		}
		slog.Error("update statutory flags failed", "employeeId", employeeID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "statutory_update_failed", "failed to update statutory settings", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{Action: audit.ActionStatutoryUpdate, EntityType: "employee", EntityID: employeeID, After: flags})
	api.Success(w, flags, requestID)
}

func (h *Handler) handleGetSalary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	if !validID(w, employeeID, requestID) {
		return
	}

	structure, err := h.Salaries.Current(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, salary.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "salary structure not found", requestID)
			return
		}
		slog.Error("load salary structure failed", "employeeId", employeeID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "salary_failed", "failed to load salary structure", requestID)
		return
	}
	api.Success(w, structure, requestID)
}

func (h *Handler) handlePutSalary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	var payload salaryPayload
	if !api.DecodeJSON(w, r, &payload, requestID) {
		return
	}

	v := shared.NewValidator()
	in := payload.Structure
	in.EmployeeID = emp.ID
	if payload.EffectiveFrom != "" {
		if from, ok := v.Date("effectiveFrom", payload.EffectiveFrom); ok {
			in.EffectiveFrom = from
		}
	}
	v.AddFields(in.Validate(), "must not be negative")
	if v.Reject(w, requestID) {
		return
	}

	var before any
	if previous, err := h.Salaries.Current(r.Context(), emp.ID); err == nil {
		before = previous
	}

	saved, err := h.Salaries.Upsert(r.Context(), in)
	if err != nil {
		slog.Error("save salary structure failed", "employeeId", emp.ID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "salary_update_failed", "failed to save salary structure", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{Action: audit.ActionSalaryUpdate, EntityType: "salary_structure", EntityID: emp.ID, Before: before, After: saved})
	api.Success(w, saved, requestID)
}

func (h *Handler) handleSalaryHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	if !validID(w, employeeID, requestID) {
		return
	}

	history, err := h.Salaries.History(r.Context(), employeeID)
	if err != nil {
		slog.Error("load salary history failed", "employeeId", employeeID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "salary_history_failed", "failed to load salary history", requestID)
		return
	}
	api.Success(w, history, requestID)
}

func (h *Handler) loadEmployee(w http.ResponseWriter, r *http.Request) (employee.Employee, bool) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	if !validID(w, employeeID, requestID) {
		return employee.Employee{}, false
	}

	emp, err := h.Employees.Get(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
			return employee.Employee{}, false
		}
		slog.Error("load employee failed", "employeeId", employeeID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to load employee", requestID)
		return employee.Employee{}, false
	}
	return emp, true
}

func validID(w http.ResponseWriter, id, requestID string) bool {
	v := shared.NewValidator()
	v.UUID("employeeID", id)
	return !v.Reject(w, requestID)
}
