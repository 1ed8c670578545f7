package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `ramen_http_request_duration_seconds_count{method="GET",route="/ping/:id",status="200"} 1`))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(FollowTransitions.WithLabelValues("requested"))
	FollowTransitions.WithLabelValues("requested").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(FollowTransitions.WithLabelValues("requested")))
}
