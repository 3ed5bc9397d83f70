package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"cv-generator/internal/shared/telemetry"
)

func TestErrorWritesBodyAndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	restore := telemetry.SetOutput(&logs)
	defer restore()

	r := gin.New()
	r.POST("/generate", func(c *gin.Context) {
		c.Set("requestId", "req-1")
		c.Set("sessionId", "sess-1")
		Error(c, http.StatusBadGateway, "conversion_timeout", "conversion timed out", gin.H{"timeoutSeconds": 300})
	})

	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "conversion_timeout" || body.Error.Message != "conversion timed out" {
		t.Fatalf("unexpected body: %+v", body)
	}

	line := strings.TrimSpace(logs.String())
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if payload["msg"] != "http.error" || payload["session_id"] != "sess-1" || payload["request_id"] != "req-1" {
		t.Fatalf("unexpected log payload: %v", payload)
	}
}
