package settingshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms/internal/domain/auth"
	"hrms/internal/domain/policy"
	"hrms/internal/transport/http/api"
	"hrms/internal/transport/http/middleware"
)

type memPolicy struct {
	values map[string]string
}

func (m *memPolicy) Values(context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *memPolicy) Set(_ context.Context, values map[string]string) error {
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

type allowAll struct{}

func (allowAll) HasPermission(context.Context, string, string) (bool, error) { return true, nil }

func newRouter(store *memPolicy) http.Handler {
	r := chi.NewRouter()
	NewHandler(policy.NewService(store), allowAll{}, nil).RegisterRoutes(r)
	return r
}

func do(router http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/settings/payroll", strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "hr", RoleName: auth.RoleHR}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetSettingsReturnsDefaults(t *testing.T) {
	rec := do(newRouter(&memPolicy{values: policy.Defaults()}), http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data policy.Settings `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Data.PFEnabled)
	assert.Equal(t, "0.12", env.Data.PFRate.String())
	assert.Len(t, env.Data.PTaxSlabs, 4)
}

func TestUpdateSettingsAcceptsBothKeyStyles(t *testing.T) {
	store := &memPolicy{values: policy.Defaults()}
	rec := do(newRouter(store), http.MethodPut, `{"pfEnabled":false,"esic_rate":0.01,"ptaxSlabs":[{"min":0,"max":null,"tax":150}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "false", store.values[policy.KeyPFEnabled])
	assert.Equal(t, "0.01", store.values[policy.KeyESICRate])
	assert.Contains(t, store.values[policy.KeyPTaxSlabs], `"tax_amount":150`)
}

func TestUpdateSettingsRejectsInvalidValues(t *testing.T) {
	for name, body := range map[string]string{
		"unknown key":    `{"bonus_rate":1}`,
		"bad boolean":    `{"pfEnabled":"maybe"}`,
		"rate above one": `{"pfRate":12}`,
		"gapped slabs":   `{"ptaxSlabs":[{"min":0,"max":100,"tax":0},{"min":500,"max":null,"tax":10}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			store := &memPolicy{values: policy.Defaults()}
			rec := do(newRouter(store), http.MethodPut, body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var env api.Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, "invalid_settings", env.Error.Code)
			assert.Equal(t, policy.Defaults(), store.values)
		})
	}
}
