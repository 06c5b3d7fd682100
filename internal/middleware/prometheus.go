package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/batchmates/batchmates/internal/metrics"
)

const metricsPath = "/metrics"

// PrometheusMiddleware counts requests by route template and records their
// latency. Scrapes of the metrics endpoint are not counted. WebSocket
// upgrades are counted but kept out of the latency histogram since the
// handler returns only when the stream closes.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == metricsPath {
			c.Next()

			return
		}

		upgrade := c.IsWebsocket()
		start := time.Now()

		c.Next()

		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if upgrade {
			return
		}

		metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
