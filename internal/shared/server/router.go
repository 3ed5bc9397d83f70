package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cv-generator/internal/generations"
	"cv-generator/internal/services/health"
	"cv-generator/internal/shared/config"
	"cv-generator/internal/shared/metrics"
	"cv-generator/internal/shared/server/middleware"
	"cv-generator/internal/shared/server/respond"
	"cv-generator/internal/web"
)

const generateGroup = "GENERATE"

// RouterDeps holds handlers and configuration for routing.
type RouterDeps struct {
	Config            config.Config
	WebHandler        *web.Handler
	GenerationHandler *generations.Handler
	RateLimiter       *middleware.RateLimiter
	Health            *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Session(middleware.SessionOptions{
			Secure: deps.Config.Env == "production",
		}),
	)

	limitGenerate := middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			generateGroup: middleware.PerMinute(deps.Config.GenerateRatePerMin, deps.Config.GenerateBurst),
		},
		DefaultGroup: generateGroup,
		Limiter:      deps.RateLimiter,
	})

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		status := deps.Health.Status()
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	if deps.GenerationHandler != nil {
		deps.GenerationHandler.RegisterRoutes(api, limitGenerate)
	}

	r.GET("/metrics", metrics.Handler())
	if deps.WebHandler != nil {
		deps.WebHandler.RegisterRoutes(r, limitGenerate)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
