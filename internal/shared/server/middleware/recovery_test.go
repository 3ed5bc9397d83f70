package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"cv-generator/internal/shared/telemetry"
)

func TestRecoveryReturnsStandardError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) {
		panic("template exploded")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"code":"internal"`) {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
	if !strings.Contains(buf.String(), "template exploded") {
		t.Fatalf("panic value must be logged")
	}
}

func TestRecoveryRendersPageForBrowsers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := telemetry.SetOutput(&bytes.Buffer{})
	defer restore()

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.POST("/generate", func(c *gin.Context) {
		panic("filler exploded")
	})

	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}
	if !strings.Contains(resp.Body.String(), `role="alert"`) {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestRecoveryKeepsJSONForAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	restore := telemetry.SetOutput(&bytes.Buffer{})
	defer restore()

	router := gin.New()
	router.Use(Recovery())
	router.GET("/api/v1/generations", func(c *gin.Context) {
		panic("repo exploded")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/generations", nil)
	req.Header.Set("Accept", "text/html")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if !strings.Contains(resp.Body.String(), `"code":"internal"`) {
		t.Fatalf("expected JSON error body, got %s", resp.Body.String())
	}
}
