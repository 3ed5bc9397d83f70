package respond

import (
	"html"
	"strings"

	"github.com/gin-gonic/gin"

	"cv-generator/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	logError(c, status, code, message)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// HTMLError renders an HTML template for browser-facing failures and logs like Error.
func HTMLError(c *gin.Context, status int, code, message, templateName string, data gin.H) {
	logError(c, status, code, message)
	c.HTML(status, templateName, data)
	c.Abort()
}

// HTMLMessage renders a bare HTML page for failures that happen before a page template can be filled.
func HTMLMessage(c *gin.Context, status int, code, message string) {
	logError(c, status, code, message)
	body := `<!DOCTYPE html><html lang="pt-BR"><head><meta charset="utf-8"><title>Erro</title></head>` +
		`<body><div role="alert">` + html.EscapeString(message) + `</div><p><a href="/">Voltar</a></p></body></html>`
	c.Data(status, "text/html; charset=utf-8", []byte(body))
	c.Abort()
}

// WantsHTML reports whether the caller is a browser page request rather than an API client.
func WantsHTML(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return false
	}
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}

func logError(c *gin.Context, status int, code, message string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if sessionID := c.GetString("sessionId"); sessionID != "" {
		fields["session_id"] = sessionID
	}
	telemetry.Error("http.error", fields)
}
