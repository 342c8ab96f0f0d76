package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNew_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "production")
	l.Info("logout", "refresh_token", "eyJhbGciOi", "user_id", "u1")

	out := buf.String()
	if strings.Contains(out, "eyJhbGciOi") {
		t.Fatalf("token leaked into log: %s", out)
	}
	if !strings.Contains(out, `"user_id":"u1"`) {
		t.Fatalf("expected regular attrs to pass through: %s", out)
	}
}

func TestNew_DebugOnlyInLocalAndDev(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "production").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug must be off in production")
	}
	NewWithWriter(&buf, "dev").Debug("shown")
	if buf.Len() == 0 {
		t.Fatalf("debug must be on in dev")
	}
}

func TestFrom_FallsBackToDefault(t *testing.T) {
	if From(context.Background()) == nil {
		t.Fatalf("expected default logger")
	}
}

func TestMiddleware_PropagatesRequestIDAndEnrichment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "production")

	r := gin.New()
	r.Use(Middleware(l))
	r.GET("/x", func(c *gin.Context) {
		Enrich(c, "user_id", "u-42")
		From(c.Request.Context()).Info("inside")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "rid-1")
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-Id") != "rid-1" {
		t.Fatalf("expected request id echoed")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	for _, line := range lines {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid json log line: %v", err)
		}
		if rec["request_id"] != "rid-1" || rec["user_id"] != "u-42" {
			t.Fatalf("expected request_id and user_id on every line: %v", rec)
		}
	}
}
