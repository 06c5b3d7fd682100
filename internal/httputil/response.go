// Package httputil provides shared HTTP response helpers.
package httputil

import "github.com/gin-gonic/gin"

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Envelope wraps lookup results as {"status": <http status>, "data": ...}.
type Envelope struct {
	Status int `json:"status"`
	Data   any `json:"data"`
}

// RespondError writes a standardized JSON error response and aborts the request.
func RespondError(c *gin.Context, status int, code, message string) {
	body := ErrorBody{Code: code, Message: message}

	if rid, exists := c.Get("request_id"); exists {
		if s, ok := rid.(string); ok {
			body.RequestID = s
		}
	}

	c.AbortWithStatusJSON(status, body)
}

// RespondData writes data inside a status envelope.
func RespondData(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Status: status, Data: data})
}
