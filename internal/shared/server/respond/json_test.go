package respond

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFileSetsDownloadHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/pdf", func(c *gin.Context) {
		File(c, "Dev Ana.pdf", "application/pdf", 8, strings.NewReader("%PDF-1.4"))
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/pdf", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Disposition"); got != `attachment; filename="Dev Ana.pdf"` {
		t.Fatalf("unexpected Content-Disposition %q", got)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected Content-Type %q", got)
	}
	if got := resp.Header().Get("Cache-Control"); got != "private, no-store" {
		t.Fatalf("unexpected Cache-Control %q", got)
	}
	if resp.Body.String() != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}
