package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cv-generator/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		generationID, _ := c.Get("generationId")
		stage := c.GetString("failedStage")

		telemetry.Info("request.complete", map[string]any{
			"request_id":    RequestIDFromContext(c),
			"session_id":    SessionIDFromContext(c),
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"route":         c.FullPath(),
			"status":        c.Writer.Status(),
			"duration_ms":   float64(latency.Microseconds()) / 1000.0,
			"generation_id": generationID,
			"failed_stage":  stage,
			"client_ip":     c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
		})
	}
}
