package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/httputil"
)

// ProfileHandler serves the profile listing endpoint.
type ProfileHandler struct {
	svc ProfileService
	log *logrus.Logger
}

// NewProfileHandler creates a ProfileHandler with the given service and logger.
func NewProfileHandler(svc ProfileService, log *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, log: log}
}

// List handles GET /api/v1/profiles.
func (h *ProfileHandler) List(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	profiles, err := h.svc.ListProfiles(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, h.log, err, "listing profiles")

		return
	}

	httputil.RespondData(c, http.StatusOK, profiles)
}
