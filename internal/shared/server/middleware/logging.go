package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docsearch-backend/internal/shared/telemetry"
)

// DocumentIDKey is set by handlers that act on a single document.
const DocumentIDKey = "documentId"

// Logging emits one structured line per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		}
		if username := UsernameFromContext(c); username != "" {
			fields["username"] = username
			fields["role"] = c.GetString(roleKey)
		}
		if docID := c.GetString(DocumentIDKey); docID != "" {
			fields["document_id"] = docID
		}
		telemetry.Info("request.complete", fields)
	}
}
