package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is the gin context key for the request ID.
	RequestIDKey = "request_id"

	// RequestIDHeader is the HTTP header used to propagate the request ID.
	RequestIDHeader = "X-Request-ID"

	// LoggerKey is the gin context key for the request-scoped log entry.
	LoggerKey = "request_logger"
)

// RequestID assigns every request a UUID and echoes it in X-Request-ID.
// A client-supplied ID is kept only when it parses as a UUID, which lets a
// frontend tie a seed request to the expands that follow it. Anything else
// is replaced.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()

		if raw := c.GetHeader(RequestIDHeader); raw != "" {
			if parsed, err := uuid.Parse(raw); err == nil {
				id = parsed.String()
			} else {
				log.WithField("client_request_id", raw).Debug("discarding malformed request ID")
			}
		}

		c.Set(RequestIDKey, id)
		c.Set(LoggerKey, log.WithField("request_id", id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Logger returns the entry RequestID stored on the context, or a bare entry
// on fallback when the middleware did not run.
func Logger(c *gin.Context, fallback *logrus.Logger) *logrus.Entry {
	if v, ok := c.Get(LoggerKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}

	return logrus.NewEntry(fallback)
}
