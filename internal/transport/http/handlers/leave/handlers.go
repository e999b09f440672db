package leavehandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/employee"
	"hrms/internal/domain/holiday"
	"hrms/internal/domain/leave"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
	"hrms/internal/transport/http/shared"
)

type Calculator interface {
	CountWorkingDays(ctx context.Context, start, end time.Time, subject holiday.Subject) (leave.DayCount, error)
}

type BalanceStore interface {
	ListBalances(ctx context.Context, employeeID string) ([]leave.Balance, error)
}

type EmployeeStore interface {
	Get(ctx context.Context, id string) (employee.Employee, error)
}

type Handler struct {
	Calculator Calculator
	Balances   BalanceStore
	Employees  EmployeeStore
	Perms      middleware.PermissionStore
}

func NewHandler(calc Calculator, balances BalanceStore, employees EmployeeStore, perms middleware.PermissionStore) *Handler {
	return &Handler{Calculator: calc, Balances: balances, Employees: employees, Perms: perms}
}

type workingDaysPayload struct {
	EmployeeID string `json:"employeeId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
}

type balanceView struct {
	leave.Balance
	RemainingDays decimal.Decimal `json:"remainingDays"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Post("/working-days", h.handleWorkingDays)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/balances/{employeeID}", h.handleBalances)
	})
}

func (h *Handler) handleWorkingDays(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload workingDaysPayload
	if !api.DecodeJSON(w, r, &payload, requestID) {
		return
	}

	v := shared.NewValidator()
	payload.EmployeeID = strings.TrimSpace(payload.EmployeeID)
	v.UUID("employeeId", payload.EmployeeID)
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if !start.IsZero() && !end.IsZero() && leave.SpanDays(start, end) > leave.MaxRangeDays {
		v.Add("endDate", fmt.Sprintf("range must not exceed %d days", leave.MaxRangeDays))
	}
	if v.Reject(w, requestID) {
		return
	}

	emp, ok := h.accessibleEmployee(w, r, payload.EmployeeID)
	if !ok {
		return
	}

	count, err := h.Calculator.CountWorkingDays(r.Context(), start, end, holiday.SubjectOf(emp))
	if err != nil {
		slog.Error("count working days failed", "employeeId", emp.ID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "working_days_failed", "failed to count working days", requestID)
		return
	}
	api.Success(w, count, requestID)
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	v := shared.NewValidator()
	v.UUID("employeeID", employeeID)
	if v.Reject(w, requestID) {
		return
	}

	emp, ok := h.accessibleEmployee(w, r, employeeID)
	if !ok {
		return
	}

	balances, err := h.Balances.ListBalances(r.Context(), emp.ID)
	if err != nil {
		slog.Error("list leave balances failed", "employeeId", emp.ID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "leave_balances_failed", "failed to list leave balances", requestID)
		return
	}
	out := make([]balanceView, 0, len(balances))
	for _, b := range balances {
		out = append(out, balanceView{Balance: b, RemainingDays: b.RemainingDays()})
	}
	api.Success(w, out, requestID)
}

// accessibleEmployee loads employeeID, restricting employees to their own record.
func (h *Handler) accessibleEmployee(w http.ResponseWriter, r *http.Request, employeeID string) (employee.Employee, bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
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

	if user.RoleName == auth.RoleEmployee && emp.UserID != user.UserID {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
		return employee.Employee{}, false
	}
	return emp, true
}
