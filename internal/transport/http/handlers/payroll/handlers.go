package payrollhandler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/employee"
	"hrms/internal/domain/payroll"
	"hrms/internal/platform/jobs"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Service interface {
	Run(ctx context.Context, month, year int) (payroll.RunSummary, error)
	List(ctx context.Context, filter payroll.ListFilter) ([]payroll.Detail, int, error)
	Get(ctx context.Context, id string) (payroll.Detail, error)
	Delete(ctx context.Context, id string) error
}

type JobRunner interface {
	RunNow(ctx context.Context, jobType string, run jobs.Func) (any, error)
	Enqueue(jobType string, run jobs.Func) error
	ListRuns(ctx context.Context, jobType string, limit int) ([]jobs.Run, error)
}

type EmployeeLookup interface {
	GetByUserID(ctx context.Context, userID string) (employee.Employee, error)
}

type Handler struct {
	Service   Service
	Jobs      JobRunner
	Employees EmployeeLookup
	Perms     middleware.PermissionStore
	Audit     shared.AuditRecorder
}

func NewHandler(service Service, jobsSvc JobRunner, employees EmployeeLookup, perms middleware.PermissionStore, auditor shared.AuditRecorder) *Handler {
	return &Handler{Service: service, Jobs: jobsSvc, Employees: employees, Perms: perms, Audit: auditor}
}

type runPayload struct {
	Month int  `json:"month"`
	Year  int  `json:"year"`
	Async bool `json:"async"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms)).Post("/run", h.handleRun)
		r.With(middleware.RequirePermission(auth.PermPayrollRun, h.Perms)).Get("/runs", h.handleListRuns)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/payslips", h.handleListPayslips)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/payslips/{payslipID}", h.handleGetPayslip)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/payslips/{payslipID}/pdf", h.handleDownloadPayslip)
		r.With(middleware.RequirePermission(auth.PermPayrollDelete, h.Perms)).Delete("/payslips/{payslipID}", h.handleDeletePayslip)
	})
}

// handleRun generates payslips for a period. A zero month or year selects the
// current one; async queues the run and answers 202.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload runPayload
	if !api.DecodeJSON(w, r, &payload, requestID, api.AllowEmpty()) {
		return
	}

	v := shared.NewValidator()
	v.Period(optionalInt(payload.Month), optionalInt(payload.Year))
	if v.Reject(w, requestID) {
		return
	}

	run := func(ctx context.Context) (any, error) {
		return h.Service.Run(ctx, payload.Month, payload.Year)
	}

	if payload.Async {
		if err := h.Jobs.Enqueue(jobs.JobPayrollRun, run); err != nil {
			api.Fail(w, http.StatusServiceUnavailable, "queue_full", "payroll run could not be queued", requestID)
			return
		}
		shared.RecordAudit(r, h.Audit, audit.Entry{Action: audit.ActionPayrollRunQueued, EntityType: "payroll_run", After: payload})
		api.Accepted(w, map[string]string{"status": "queued"}, requestID)
		return
	}

	result, err := h.Jobs.RunNow(r.Context(), jobs.JobPayrollRun, run)
	if err != nil {
		if errors.Is(err, payroll.ErrInvalidPeriod) {
			api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
			return
		}
		slog.Error("payroll run failed", "month", payload.Month, "year", payload.Year, "err", err)
		api.Fail(w, http.StatusInternalServerError, "payroll_run_failed", "payroll run failed", requestID)
		return
	}
	if summary, ok := result.(payroll.RunSummary); ok {
		shared.RecordAudit(r, h.Audit, audit.Entry{
			Action:     audit.ActionPayrollRun,
			EntityType: "payroll_run",
			EntityID:   fmt.Sprintf("%04d-%02d", summary.Year, summary.Month),
			After:      map[string]int{"generated": summary.Generated, "skipped": summary.Skipped, "errored": summary.Errored},
		})
	}
	api.Success(w, result, requestID)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.Jobs.ListRuns(r.Context(), jobs.JobPayrollRun, limit)
	if err != nil {
		slog.Error("list payroll runs failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "payroll_runs_failed", "failed to list payroll runs", requestID)
		return
	}
	api.Success(w, runs, requestID)
}

func (h *Handler) handleListPayslips(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	query := r.URL.Query()
	v := shared.NewValidator()
	month, year := v.Period(query.Get("month"), query.Get("year"))
	employeeID := strings.TrimSpace(query.Get("employeeId"))
	if employeeID != "" {
		v.UUID("employeeId", employeeID)
	}
	if v.Reject(w, requestID) {
		return
	}

	if !auth.SeesAllPayslips(user.RoleName) {
		self, err := h.Employees.GetByUserID(r.Context(), user.UserID)
		if err != nil {
			if errors.Is(err, employee.ErrNotFound) {
				api.Paged(w, []payroll.Detail{}, api.Meta{}, requestID)
				return
			}
			slog.Error("load employee for user failed", "userId", user.UserID, "err", err)
			api.Fail(w, http.StatusInternalServerError, "payslips_failed", "failed to list payslips", requestID)
			return
		}
		if employeeID != "" && employeeID != self.ID {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
			return
		}
		employeeID = self.ID
	}

	page := shared.ParsePagination(r, 50, 200)
	list, total, err := h.Service.List(r.Context(), payroll.ListFilter{
		EmployeeID: employeeID,
		Month:      month,
		Year:       year,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		slog.Error("list payslips failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "payslips_failed", "failed to list payslips", requestID)
		return
	}
	if list == nil {
		list = []payroll.Detail{}
	}
	api.Paged(w, list, api.Meta{Total: total, Limit: page.Limit, Offset: page.Offset}, requestID)
}

func (h *Handler) handleGetPayslip(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.loadPayslip(w, r)
	if !ok {
		return
	}
	api.Success(w, detail, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDownloadPayslip(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.loadPayslip(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := payroll.RenderPDF(&buf, detail); err != nil {
		slog.Error("render payslip pdf failed", "payslipId", detail.ID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "payslip_pdf_failed", "failed to render payslip", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=payslip-%04d-%02d-%s.pdf", detail.Year, detail.Month, detail.EmployeeID))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("write payslip pdf failed", "payslipId", detail.ID, "err", err)
	}
}

func (h *Handler) handleDeletePayslip(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	payslipID := chi.URLParam(r, "payslipID")
	v := shared.NewValidator()
	v.UUID("payslipID", payslipID)
	if v.Reject(w, requestID) {
		return
	}

	if err := h.Service.Delete(r.Context(), payslipID); err != nil {
		if errors.Is(err, payroll.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "payslip not found", requestID)
			return
		}
		slog.Error("delete payslip failed", "payslipId", payslipID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "payslip_delete_failed", "failed to delete payslip", requestID)
		return
	}
	shared.RecordAudit(r, h.Audit, audit.Entry{Action: audit.ActionPayslipDelete, EntityType: "payslip", EntityID: payslipID})
	api.Success(w, map[string]string{"status": "deleted"}, requestID)
}

// loadPayslip fetches the payslip in the URL. Payslips of other employees are
// reported as missing to roles that only see their own.
func (h *Handler) loadPayslip(w http.ResponseWriter, r *http.Request) (payroll.Detail, bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return payroll.Detail{}, false
	}

	payslipID := chi.URLParam(r, "payslipID")
	v := shared.NewValidator()
	v.UUID("payslipID", payslipID)
	if v.Reject(w, requestID) {
		return payroll.Detail{}, false
	}

	detail, err := h.Service.Get(r.Context(), payslipID)
	if err != nil {
		if errors.Is(err, payroll.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "payslip not found", requestID)
			return payroll.Detail{}, false
		}
		slog.Error("load payslip failed", "payslipId", payslipID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "payslip_failed", "failed to load payslip", requestID)
		return payroll.Detail{}, false
	}

	if !auth.SeesAllPayslips(user.RoleName) && (detail.EmployeeUserID == "" || detail.EmployeeUserID != user.UserID) {
		api.Fail(w, http.StatusNotFound, "not_found", "payslip not found", requestID)
		return payroll.Detail{}, false
	}
	return detail, true
}

func optionalInt(value int) string {
	if value == 0 {
		return ""
	}
	return strconv.Itoa(value)
}
