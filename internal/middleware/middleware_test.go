package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/annel0/voxel-chunks/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(reg *prometheus.Registry, out *bytes.Buffer) (*gin.Engine, *PrometheusMiddleware) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.Use(NewRequestLogger(logging.NewConsoleLogger("test", out)).Handler())
	pm := NewPrometheusMiddleware("test", reg)
	r.Use(pm.Handler())
	pm.RegisterMetricsEndpoint(r, reg)

	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/fail", func(c *gin.Context) { c.String(http.StatusBadRequest, "плохо") })
	return r, pm
}

func TestPrometheusMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, pm := newTestRouter(reg, &bytes.Buffer{})

	for _, path := range []string{"/ok", "/ok", "/fail", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 1, testutil.CollectAndCount(pm.reqErrors.WithLabelValues("GET", "/fail", "400")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.reqErrors.WithLabelValues("GET", "/fail", "400")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pm.reqErrors.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, float64(0), testutil.ToFloat64(pm.reqInflight))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_request_duration_seconds")
}

func TestRequestLogger(t *testing.T) {
	var out bytes.Buffer
	r, _ := newTestRouter(prometheus.NewRegistry(), &out)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	traceID := w.Header().Get("X-Trace-Id")
	require.NotEmpty(t, traceID)
	assert.True(t, strings.Contains(out.String(), "trace="+traceID))
	assert.Contains(t, out.String(), "GET /ok 200")
}
