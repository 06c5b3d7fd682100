package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/explore"
	"github.com/batchmates/batchmates/internal/httputil"
	"github.com/batchmates/batchmates/internal/metrics"
	"github.com/batchmates/batchmates/internal/middleware"
	"github.com/batchmates/batchmates/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeInternalError   = "internal_error"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodeValidationError = "validation_error"
	ErrCodeConflict        = "conflict"
	ErrCodeFetchFailed     = "fetch_failed"
	ErrCodeUnavailable     = "unavailable"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondServiceError maps a service error onto the API error contract.
// Not-found checks run before the fetch failure check so a lookup of an
// unknown person reports 404 rather than 502.
func respondServiceError(c *gin.Context, log *logrus.Logger, err error, op string) {
	switch {
	case models.IsValidation(err), errors.Is(err, models.ErrKindMismatch):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
	case errors.Is(err, models.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "session not found")
	case errors.Is(err, models.ErrNodeNotFound),
		errors.Is(err, models.ErrPersonNotFound),
		errors.Is(err, models.ErrInterestNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, models.ErrStaleSession):
		respondError(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, explore.ErrFetchFailure):
		middleware.Logger(c, log).WithError(err).Warn(op)
		respondError(c, http.StatusBadGateway, ErrCodeFetchFailed, "neighbor lookup failed")
	case errors.Is(err, models.ErrProfilesUnavailable):
		respondError(c, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
	default:
		middleware.Logger(c, log).WithError(err).Error(op)
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
