package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/batchmates/batchmates/internal/middleware"
	"github.com/batchmates/batchmates/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	DB          HealthChecker
	Hub         *ws.Hub
	Profiles    ProfileService
	Neighbors   NeighborService
	Explore     ExploreService
	CORSOrigins []string
	Version     string
	RateLimit   float64
	RateBurst   int
}

// maxBodySize caps request bodies (64 KB); no endpoint accepts more than a
// seed or expand request.
const maxBodySize = 64 << 10

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, deps.RateLimit, deps.RateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.DB, deps.Profiles, log, deps.Version)
	profiles := NewProfileHandler(deps.Profiles, log)
	interests := NewInterestHandler(deps.Neighbors, log)
	explore := NewExploreHandler(deps.Explore, deps.Hub, deps.CORSOrigins, log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Profiles and lookups.
	api.GET("/profiles", profiles.List)
	api.GET("/interests", interests.List)
	api.GET("/person/:person/interests", interests.PersonInterests)
	api.GET("/interest/:interest/people", interests.InterestPeople)

	// Exploration sessions.
	api.POST("/explore/sessions", explore.Create)
	api.GET("/explore/sessions/:sid", explore.Get)
	api.POST("/explore/sessions/:sid/expand", explore.Expand)
	api.POST("/explore/sessions/:sid/reset", explore.Reset)
	api.DELETE("/explore/sessions/:sid", explore.Delete)
	api.GET("/explore/sessions/:sid/ws", explore.Stream(ctx))
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
