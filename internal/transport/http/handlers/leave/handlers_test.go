package leavehandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/employee"
	"hrms/internal/domain/holiday"
	"hrms/internal/domain/leave"
	"hrms/internal/transport/http/middleware"
)

const (
	ownID   = "0e0e0e0e-0000-4000-8000-000000000001"
	otherID = "0e0e0e0e-0000-4000-8000-000000000002"
)

type holidayList []holiday.Holiday

func (l holidayList) ListOverlapping(context.Context, time.Time, time.Time) ([]holiday.Holiday, error) {
	return l, nil
}

type employees map[string]employee.Employee

func (e employees) Get(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := e[id]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	return emp, nil
}

type balances map[string][]leave.Balance

func (b balances) ListBalances(_ context.Context, employeeID string) ([]leave.Balance, error) {
	return b[employeeID], nil
}

type allowAll struct{}

func (allowAll) HasPermission(context.Context, string, string) (bool, error) { return true, nil }

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func newRouter() http.Handler {
	holidays := holidayList{
		{Name: "Republic Day", StartDate: day("2025-01-26"), EndDate: day("2025-01-26"), ScopeType: holiday.ScopeGlobal},
		{Name: "Pune fest", StartDate: day("2025-01-28"), EndDate: day("2025-01-28"), ScopeType: holiday.ScopeLocation, Location: "Pune"},
	}
	emps := employees{
		ownID:   {ID: ownID, UserID: "user-own", Location: "Pune"},
		otherID: {ID: otherID, UserID: "user-other", Location: "Mumbai"},
	}
	bal := balances{ownID: {{LeaveTypeName: "Annual", AllocatedDays: decimal.NewFromInt(12), UsedDays: decimal.RequireFromString("2.5")}}}

	r := chi.NewRouter()
	NewHandler(leave.NewCalculator(holidays), bal, emps, allowAll{}).RegisterRoutes(r)
	return r
}

func do(router http.Handler, user auth.UserContext, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var hr = auth.UserContext{UserID: "hr", RoleName: auth.RoleHR}

func TestWorkingDaysCountsScopedHolidays(t *testing.T) {
	// 2025-01-26 is a Sunday, so only the Pune holiday reduces the count.
	body := `{"employeeId":"` + ownID + `","startDate":"2025-01-24","endDate":"2025-01-31"}`
	rec := do(newRouter(), hr, http.MethodPost, "/leave/working-days", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Data leave.DayCount `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 6, env.Data.WorkingDays)
	assert.Equal(t, 1, env.Data.HolidayDays)

	body = `{"employeeId":"` + otherID + `","startDate":"2025-01-24","endDate":"2025-01-31"}`
	rec = do(newRouter(), hr, http.MethodPost, "/leave/working-days", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 7, env.Data.WorkingDays)
	assert.Equal(t, 0, env.Data.HolidayDays)
}

func TestWorkingDaysValidation(t *testing.T) {
	body := `{"employeeId":"` + ownID + `","startDate":"2025-02-10","endDate":"2025-02-01"}`
	rec := do(newRouter(), hr, http.MethodPost, "/leave/working-days", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkingDaysRejectsOversizedRange(t *testing.T) {
	body := `{"employeeId":"` + ownID + `","startDate":"0001-01-01","endDate":"9999-12-31"}`
	rec := do(newRouter(), hr, http.MethodPost, "/leave/working-days", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "range must not exceed 366 days")

	// 2024 is a leap year: 366 days inclusive is the largest accepted span.
	body = `{"employeeId":"` + ownID + `","startDate":"2024-01-01","endDate":"2024-12-31"}`
	rec = do(newRouter(), hr, http.MethodPost, "/leave/working-days", body)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body = `{"employeeId":"` + ownID + `","startDate":"2024-01-01","endDate":"2025-01-01"}`
	rec = do(newRouter(), hr, http.MethodPost, "/leave/working-days", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBalancesAreScopedForEmployees(t *testing.T) {
	self := auth.UserContext{UserID: "user-own", RoleName: auth.RoleEmployee}

	rec := do(newRouter(), self, http.MethodGet, "/leave/balances/"+ownID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []struct {
			RemainingDays decimal.Decimal `json:"remainingDays"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "9.5", env.Data[0].RemainingDays.String())

	rec = do(newRouter(), self, http.MethodGet, "/leave/balances/"+otherID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
