package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms/internal/platform/metrics"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestOpsEndpoints(t *testing.T) {
	r := chi.NewRouter()
	mountOps(r, stubPinger{}, metrics.New(), true)

	assert.Equal(t, http.StatusOK, get(r, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(r, "/readyz").Code)

	rec := get(r, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "payrollRunsTotal")
}

func TestReadyzReportsDatabaseFailure(t *testing.T) {
	r := chi.NewRouter()
	mountOps(r, stubPinger{err: errors.New("down")}, metrics.New(), false)

	assert.Equal(t, http.StatusServiceUnavailable, get(r, "/readyz").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/metrics").Code)
}

func TestSPAHandlerFallsBackToIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))
	h := spaHandler{staticPath: dir, indexPath: "index.html"}

	rec := get(h, "/app.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console.log")

	rec = get(h, "/payroll/payslips")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
