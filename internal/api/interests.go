package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/httputil"
	"github.com/batchmates/batchmates/internal/models"
)

// maxQueryLength caps the interest search string.
const maxQueryLength = 100

// InterestHandler serves interest catalogue and neighbor lookup endpoints.
type InterestHandler struct {
	svc NeighborService
	log *logrus.Logger
}

// NewInterestHandler creates an InterestHandler with the given service and logger.
func NewInterestHandler(svc NeighborService, log *logrus.Logger) *InterestHandler {
	return &InterestHandler{svc: svc, log: log}
}

// List handles GET /api/v1/interests.
func (h *InterestHandler) List(c *gin.Context) {
	query := c.Query("q")
	if len(query) > maxQueryLength {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, models.ErrFieldTooLong("q", maxQueryLength).Error())

		return
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	interests, err := h.svc.ListInterests(c.Request.Context(), query, limit)
	if err != nil {
		respondServiceError(c, h.log, err, "listing interests")

		return
	}

	httputil.RespondData(c, http.StatusOK, interests)
}

// PersonInterests handles GET /api/v1/person/:person/interests.
func (h *InterestHandler) PersonInterests(c *gin.Context) {
	person, err := models.NormalizePersonName(c.Param("person"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	interests, err := h.svc.InterestsForPerson(c.Request.Context(), person)
	if err != nil {
		respondServiceError(c, h.log, err, "looking up person interests")

		return
	}

	httputil.RespondData(c, http.StatusOK, models.PersonInterests{ID: person, Interests: interests})
}

// InterestPeople handles GET /api/v1/interest/:interest/people.
func (h *InterestHandler) InterestPeople(c *gin.Context) {
	interest, err := models.NormalizeInterestName(c.Param("interest"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	people, err := h.svc.PeopleForInterest(c.Request.Context(), interest)
	if err != nil {
		respondServiceError(c, h.log, err, "looking up interest people")

		return
	}

	httputil.RespondData(c, http.StatusOK, models.InterestPeople{ID: interest, People: people})
}
