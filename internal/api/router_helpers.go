package api

import (
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/middleware"
)

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if sid := c.Param("sid"); sid != "" {
			fields["session_id"] = sid
		}
		middleware.Logger(c, log).WithFields(fields).Info("request")
	}
}

// parseLimit reads the limit query parameter. A missing value yields 0 so the
// service applies its default; range checks happen in the service.
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, 400, ErrCodeInvalidRequest, "limit must be an integer")

		return 0, false
	}

	if v == 0 {
		respondError(c, 400, ErrCodeValidationError, "limit must be between 1 and 100")

		return 0, false
	}

	return v, true
}

// originHosts converts CORS origins into the host patterns the WebSocket
// handshake matches against the Origin header.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))

	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			hosts = append(hosts, o)

			continue
		}

		hosts = append(hosts, u.Host)
	}

	return hosts
}
