package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumesync",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API 请求耗时分布（秒），按路由模板与状态码分类。",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route", "code"},
	)

	httpActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "resumesync",
			Subsystem: "api",
			Name:      "active_requests",
			Help:      "正在处理中的 API 请求数。",
		},
	)

	sectionWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumesync",
			Subsystem: "api",
			Name:      "section_writes_total",
			Help:      "服务端接收的分区写入次数，按分区与结果分类。",
		},
		[]string{"section", "result"},
	)
)

// GinMiddleware 按路由模板记录 API 请求耗时；未匹配的路由统一记为 "unmatched"，避免标签基数随 URL 膨胀。
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpActive.Inc()
		defer httpActive.Dec()
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpLatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// SectionWrite counts one section or header write handled by the API.
// result is "ok", "invalid", "missing" or "error".
func SectionWrite(section, result string) {
	sectionWrites.WithLabelValues(section, result).Inc()
}
