// Package router assembles the gin engine from the application modules.
package router

import (
	"context"
	"net/http"
	"time"

	apphttp "intake_backend/internal/http"
	"intake_backend/internal/http/middleware"
	"intake_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	healthPingTimeout = 2 * time.Second

	// 10 health probes per minute per IP.
	healthRate  = rate.Limit(10.0 / 60.0)
	healthBurst = 10

	// 5 form posts per minute per IP.
	submissionRate  = rate.Limit(5.0 / 60.0)
	submissionBurst = 5
)

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

// New builds the engine: shared middleware, health and metrics endpoints,
// the /api, /api/v1 and /api/v1/admin groups, and every module's routes.
func New(app *apphttp.App) *gin.Engine {
	cfg := app.Config
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(httpkit.Recovery(app.Logger))
	engine.Use(httpkit.AssignRequestID())
	engine.Use(httpkit.ExposeErrors(cfg.IsDevelopment()))
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	if app.Metrics != nil {
		engine.Use(middleware.RequestTimer(app.Metrics))
	}
	engine.Use(cors.New(corsConfig(cfg)))

	healthLimiter := httpkit.NewIPRateLimiter(healthRate, healthBurst, app.Logger)
	engine.GET("/api/health", healthLimiter.RateLimit(), healthHandler(app))

	if app.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(app.Metrics.Handler()))
	}

	api := engine.Group("/api")
	v1 := api.Group("/v1")
	auth := httpkit.AuthRequired(cfg)
	admin := v1.Group("/admin", auth, httpkit.RequireRole("admin"))

	routerCtx := &apphttp.RouterContext{
		Engine:                engine,
		API:                   api,
		V1:                    v1,
		Admin:                 admin,
		Config:                cfg,
		AuthMiddleware:        auth,
		SubmissionRateLimiter: httpkit.NewIPRateLimiter(submissionRate, submissionBurst, app.Logger),
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(routerCtx)
		app.Logger.Debug("module routes registered", "module", module.Name())
	}

	return engine
}

func healthHandler(app *apphttp.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:      "healthy",
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Environment: app.Config.GetEnv(),
		}
		if app.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
			defer cancel()
			if err := app.Health.Ping(ctx); err != nil {
				app.Logger.WithContext(c.Request.Context()).Warn("health check failed", "error", err.Error())
				resp.Status = "unhealthy"
				c.JSON(http.StatusServiceUnavailable, resp)
				return
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", httpkit.HeaderRequestID},
		ExposeHeaders:    []string{httpkit.HeaderRequestID},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.GetCORSOrigins()
	}
	return corsCfg
}
