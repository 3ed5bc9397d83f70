package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"cv-generator/internal/shared/server/respond"
	"cv-generator/internal/shared/telemetry"
)

// Recovery turns panics into a 500: an error page for browsers, the JSON error body otherwise.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("panic", map[string]any{
					"request_id": RequestIDFromContext(c),
					"session_id": SessionIDFromContext(c),
					"error":      rec,
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				if respond.WantsHTML(c) {
					respond.HTMLMessage(c, http.StatusInternalServerError, "internal", "Erro inesperado. Tente novamente.")
					return
				}
				respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
			}
		}()
		c.Next()
	}
}
