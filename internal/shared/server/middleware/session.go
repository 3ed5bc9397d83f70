package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionIDKey = "sessionId"

	// SessionCookie names the cookie carrying the browser session id.
	SessionCookie = "cv_session"
)

// SessionOptions configures the session cookie.
type SessionOptions struct {
	Secure bool
	MaxAge int
}

// Session reads the session cookie, issuing a fresh UUID when it is missing or malformed,
// and stores the id in context.
func Session(opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		id := ""
		if raw, err := c.Cookie(SessionCookie); err == nil {
			if parsed, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
				id = parsed.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, opts.MaxAge, "/", "", opts.Secure, true)
		}

		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// SessionIDFromContext fetches the session ID stored by the Session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(sessionIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
