package respond

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// File streams r as a private download named fileName. A size of zero or less omits Content-Length.
func File(c *gin.Context, fileName, contentType string, size int64, r io.Reader) {
	if size <= 0 {
		size = -1
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Cache-Control", "private, no-store")
	c.DataFromReader(http.StatusOK, size, contentType, r, map[string]string{
		"Content-Disposition": disposition,
	})
}
