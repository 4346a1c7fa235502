package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docsearch-backend/internal/shared/server/respond"
	"docsearch-backend/internal/shared/telemetry"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service reports liveness and database reachability.
type Service struct {
	DB Pinger
}

// NewService constructs a health service. db may be nil when the catalog is in memory.
func NewService(db Pinger) *Service {
	return &Service{DB: db}
}

type Status struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
}

// Status pings the database when one is configured.
func (s *Service) Status(ctx context.Context) Status {
	if s.DB == nil {
		return Status{OK: true, Database: "memory"}
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		telemetry.Warn("health.db_unreachable", map[string]any{"error": err.Error()})
		return Status{OK: false, Database: "down"}
	}
	return Status{OK: true, Database: "up"}
}

func (s *Service) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		status := s.Status(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
}
