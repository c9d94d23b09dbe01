package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "github.com/johnquangdev/acta-generator/docs"
	"github.com/johnquangdev/acta-generator/pkg/config"
)

const healthTimeout = 3 * time.Second

// HealthCheck reports whether a backing service answers
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouteGuards are the optional middlewares of the acta routes
type RouteGuards struct {
	RateLimit echo.MiddlewareFunc // generation routes
	Operator  echo.MiddlewareFunc // run history routes, not mounted when nil
}

// Router holds all handlers
type Router struct {
	cfg         *config.Config
	actaHandler *Acta
	guards      RouteGuards
	checks      []HealthCheck
	logger      *zap.Logger
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, actaHandler *Acta, guards RouteGuards, checks ...HealthCheck) *Router {
	logger := actaHandler.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		cfg:         cfg,
		actaHandler: actaHandler,
		guards:      guards,
		checks:      checks,
		logger:      logger,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/", rt.actaHandler.Index(rt.cfg.Acta.Organization))

	// API v1 group
	v1 := e.Group("/v1")

	v1.GET("/templates", rt.actaHandler.Templates)
	rt.setupActaRoutes(v1)
}

// setupActaRoutes configures generation and run history routes
func (rt *Router) setupActaRoutes(g *echo.Group) {
	actaGroup := g.Group("/actas")

	var generation []echo.MiddlewareFunc
	if rt.guards.RateLimit != nil {
		generation = append(generation, rt.guards.RateLimit)
	}
	actaGroup.POST("", rt.actaHandler.Generate, generation...)
	actaGroup.POST("/extract", rt.actaHandler.Extract, generation...)

	// Run history exposes author names and archived documents
	if rt.guards.Operator == nil {
		return
	}
	runs := actaGroup.Group("/runs", rt.guards.Operator)
	runs.GET("", rt.actaHandler.ListRuns)
	runs.GET("/:id", rt.actaHandler.GetRun)
	runs.GET("/:id/download", rt.actaHandler.DownloadRun)
}

// healthCheck returns health status, 503 when a backing service is down
func (rt *Router) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]string, len(rt.checks))
		healthy = true
	)
	for _, hc := range rt.checks {
		wg.Add(1)
		go func(hc HealthCheck) {
			defer wg.Done()
			err := hc.Check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				healthy = false
				results[hc.Name] = "unavailable"
				rt.logger.Warn("health check failed", zap.String("check", hc.Name), zap.Error(err))
				return
			}
			results[hc.Name] = "ok"
		}(hc)
	}
	wg.Wait()

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	resp := map[string]interface{}{
		"status":      status,
		"environment": rt.cfg.Server.Environment,
		"provider":    rt.cfg.LLM.Provider,
	}
	if len(results) > 0 {
		resp["checks"] = results
	}
	return c.JSON(code, resp)
}
