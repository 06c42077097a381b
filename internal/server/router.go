package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scalara/backend/internal/auth"
	"github.com/scalara/backend/internal/config"
	"github.com/scalara/backend/internal/http/handlers"
	"github.com/scalara/backend/internal/http/middleware"
	"github.com/scalara/backend/internal/version"
	"github.com/scalara/backend/internal/ws"
)

const maxRequestBodyBytes = 1 << 20

type Dependencies struct {
	Pingers        map[string]handlers.Pinger
	ProcessHandler *handlers.ProcessHandler
	MetricsHandler *handlers.MetricsHandler
	WSHandler      *ws.Handler
	JWTManager     *auth.JWTManager
	Gatherer       prometheus.Gatherer
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Next()
	})
	r.Use(middleware.RequestBodyLimit(maxRequestBodyBytes))

	health := handlers.NewHealthHandler(deps.Pingers)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/v1/meta", meta.GetMeta)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	read := r.Group("/v1")
	trigger := r.Group("/v1")
	if cfg.AuthEnabled && deps.JWTManager != nil {
		read.Use(middleware.RequireAuth(deps.JWTManager), middleware.RequireRole(auth.RoleOperator, auth.RoleReader))
		trigger.Use(middleware.RequireAuth(deps.JWTManager), middleware.RequireRole(auth.RoleOperator))
	}

	if deps.ProcessHandler != nil {
		trigger.POST("/process", deps.ProcessHandler.Trigger)
		read.GET("/process/last", deps.ProcessHandler.LastCheckpoint)
	}
	if deps.MetricsHandler != nil {
		read.GET("/metrics/people/:id/net-worth", deps.MetricsHandler.NetWorth)
		read.GET("/metrics/people/:id/borrowable", deps.MetricsHandler.Borrowable)
	}
	if deps.WSHandler != nil {
		read.GET("/ws", deps.WSHandler.HandleWebSocket)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	return r
}
