package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// FollowTransitions 关注关系状态变更次数
	// transition: requested | approved | denied | unfollowed
	FollowTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ramen",
		Name:      "follow_transitions_total",
		Help:      "Follow relationship state transitions",
	}, []string{"transition"})

	// IkitaiUpdates イキタイ状态变更次数
	// result: created | updated | cleared
	IkitaiUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ramen",
		Name:      "ikitai_updates_total",
		Help:      "Ikitai status changes",
	}, []string{"result"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ramen",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.ExponentialBucketsRange(0.001, 10, 15),
	}, []string{"method", "route", "status"})
)

// Middleware 记录HTTP请求耗时，route使用路由模板避免高基数
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics 处理函数
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
