package middleware

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

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	router := gin.New()
	router.Use(RequestID(), Session(SessionOptions{}), Logging())
	router.POST("/generate", func(c *gin.Context) {
		c.Set("generationId", "01J0000000000000000000000")
		c.Set("failedStage", "convert")
		c.JSON(http.StatusBadGateway, gin.H{"ok": false})
	})

	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	req.Header.Set("X-Request-Id", "req-42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}

	required := []string{"request_id", "session_id", "generation_id", "failed_stage", "duration_ms", "status", "route"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["request_id"] != "req-42" {
		t.Fatalf("unexpected request_id: %v", payload["request_id"])
	}
	if payload["status"] != float64(http.StatusBadGateway) {
		t.Fatalf("unexpected status: %v", payload["status"])
	}
	if payload["failed_stage"] != "convert" {
		t.Fatalf("unexpected failed_stage: %v", payload["failed_stage"])
	}
	if payload["session_id"] == "" {
		t.Fatalf("expected session id to be logged")
	}
}
