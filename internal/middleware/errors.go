package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/batchmates/batchmates/internal/httputil"
	"github.com/batchmates/batchmates/internal/metrics"
)

// reject aborts a request the middleware chain refuses to serve and counts
// it under its error code.
func reject(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}
