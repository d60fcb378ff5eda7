package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/objectkit/internal/logging"
)

func newRouter(t *testing.T) (*gin.Engine, *prometheus.Registry, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var out bytes.Buffer
	logger, err := logging.NewLogger("http-test", logging.Options{ConsoleLevel: logging.INFO, Console: &out})
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Close() })

	reg := prometheus.NewRegistry()
	pm := NewPrometheusMiddleware("test", reg)

	r := gin.New()
	r.Use(NewRequestLogger(logger).Handler())
	r.Use(pm.Handler())
	pm.RegisterMetricsEndpoint(r, reg)
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/fail", func(c *gin.Context) { c.String(http.StatusNotFound, "nope") })
	r.GET("/projects/:project", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.PUT("/projects/:project", func(c *gin.Context) {
		if c.Param("project") == "locked" {
			c.Status(http.StatusConflict)
			return
		}
		c.Status(http.StatusOK)
	})
	return r, reg, &out
}

func TestRequestLoggerSetsTraceID(t *testing.T) {
	r, _, out := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	traceID := w.Header().Get(TraceIDHeader)
	require.NotEmpty(t, traceID)
	assert.Contains(t, out.String(), "GET /ok")
	assert.Contains(t, out.String(), traceID)
}

func TestPrometheusMiddleware(t *testing.T) {
	r, reg, _ := newRouter(t)

	for _, path := range []string{"/ok", "/ok", "/fail"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	count, err := testutil.GatherAndCount(reg, "test_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `test_http_request_errors_total{method="GET",path="/fail",status="404"} 1`), body)
}

func TestProjectChangesCounter(t *testing.T) {
	r, reg, _ := newRouter(t)

	requests := []struct{ method, path string }{
		{http.MethodPut, "/projects/game"},
		{http.MethodPut, "/projects/game"},
		{http.MethodGet, "/projects/game"},
		{http.MethodPut, "/projects/locked"},
	}
	for _, req := range requests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(req.method, req.path, nil))
	}

	expected := `
# HELP test_project_changes_total Успешные изменения проектов через API.
# TYPE test_project_changes_total counter
test_project_changes_total{project="game"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_project_changes_total"))
}
