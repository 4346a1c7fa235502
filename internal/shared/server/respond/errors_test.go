package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"docsearch-backend/internal/shared/telemetry"
)

func TestErrorEnvelopeAndLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	telemetry.SetLogger(zap.New(core))
	t.Cleanup(func() { telemetry.SetLogger(nil) })

	router := gin.New()
	router.GET("/documents/:id", func(c *gin.Context) {
		c.Set("username", "alice")
		Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/documents/x", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "not_found" || body.Error.Message != "document not found" {
		t.Fatalf("unexpected body: %+v", body)
	}

	entries := logs.FilterMessage("http.error").All()
	if len(entries) != 1 {
		t.Fatalf("expected one http.error entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for 4xx, got %s", entries[0].Level)
	}
	if entries[0].ContextMap()["username"] != "alice" {
		t.Fatalf("expected username field")
	}
}
