package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/models"
	"github.com/batchmates/batchmates/internal/ws"
)

// ExploreHandler serves exploration session endpoints and their WebSocket stream.
type ExploreHandler struct {
	svc     ExploreService
	hub     *ws.Hub
	origins []string
	log     *logrus.Logger
}

// NewExploreHandler creates an ExploreHandler. origins are the CORS origins
// allowed to open the WebSocket stream.
func NewExploreHandler(svc ExploreService, hub *ws.Hub, origins []string, log *logrus.Logger) *ExploreHandler {
	return &ExploreHandler{svc: svc, hub: hub, origins: originHosts(origins), log: log}
}

// Create handles POST /api/v1/explore/sessions. The seed body is optional.
func (h *ExploreHandler) Create(c *gin.Context) {
	var req models.SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	sess, err := h.svc.CreateSession(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.log, err, "creating session")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "session.create", "session_id": sess.ID, "nodes": len(sess.Graph.Nodes)}).Info("audit")

	c.JSON(http.StatusCreated, sess)
}

// Get handles GET /api/v1/explore/sessions/:sid.
func (h *ExploreHandler) Get(c *gin.Context) {
	sess, err := h.svc.GetSession(c.Request.Context(), c.Param("sid"))
	if err != nil {
		respondServiceError(c, h.log, err, "getting session")

		return
	}

	c.JSON(http.StatusOK, sess)
}

// Expand handles POST /api/v1/explore/sessions/:sid/expand.
func (h *ExploreHandler) Expand(c *gin.Context) {
	var req models.ExpandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	res, err := h.svc.Expand(c.Request.Context(), c.Param("sid"), req)
	if err != nil {
		respondServiceError(c, h.log, err, "expanding node")

		return
	}

	c.JSON(http.StatusOK, res)
}

// Reset handles POST /api/v1/explore/sessions/:sid/reset.
func (h *ExploreHandler) Reset(c *gin.Context) {
	sess, err := h.svc.Reset(c.Request.Context(), c.Param("sid"))
	if err != nil {
		respondServiceError(c, h.log, err, "resetting session")

		return
	}

	c.JSON(http.StatusOK, sess)
}

// Delete handles DELETE /api/v1/explore/sessions/:sid.
func (h *ExploreHandler) Delete(c *gin.Context) {
	sid := c.Param("sid")

	if err := h.svc.DeleteSession(c.Request.Context(), sid); err != nil {
		respondServiceError(c, h.log, err, "deleting session")

		return
	}

	h.log.WithFields(logrus.Fields{"action": "session.delete", "session_id": sid}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Stream returns the handler for GET /api/v1/explore/sessions/:sid/ws. The
// session's current graph is sent first, then every later change.
func (h *ExploreHandler) Stream(appCtx context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.Param("sid")

		if _, err := h.svc.GetSession(c.Request.Context(), sid); err != nil {
			respondServiceError(c, h.log, err, "opening session stream")

			return
		}

		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns:       h.origins,
			CompressionMode:      websocket.CompressionContextTakeover,
			CompressionThreshold: 128,
		})
		if err != nil {
			h.log.WithError(err).Error("websocket accept failed")

			return
		}

		client := ws.NewClient(h.hub, conn, sid, func() (models.Graph, error) {
			sess, err := h.svc.GetSession(appCtx, sid)
			if err != nil {
				return models.Graph{}, err
			}

			return sess.Graph, nil
		})
		client.Serve(appCtx, c.Request.Context().Done())
	}
}
