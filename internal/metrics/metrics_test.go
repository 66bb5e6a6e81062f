package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := NewRegistry()

	r := gin.New()
	r.Use(reg.Middleware())
	r.GET("/api/diagrams/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/diagrams/"+id, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("GET", "/api/diagrams/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(reg.HTTPRequestsInFlight))
}

func TestRecordEvaluation(t *testing.T) {
	reg := NewRegistry()
	reg.RecordEvaluation("Reliability", "ok", 3, time.Millisecond)
	reg.RecordEvaluation("Reliability", "cycle", 3, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.EvaluationsTotal.WithLabelValues("Reliability", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.EvaluationsTotal.WithLabelValues("Reliability", "cycle")))
	assert.Equal(t, 1, testutil.CollectAndCount(reg.ReductionDuration))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := NewRegistry()
	reg.CacheHits.Inc()

	w := httptest.NewRecorder()
	reg.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rbd_cache_hits_total 1")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
