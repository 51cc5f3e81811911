package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// HealthResult is the liveness report
type HealthResult struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}

// HealthService implements the health service
type HealthService struct {
	name string
	ping func(ctx context.Context) error
	log  zerolog.Logger
}

// NewHealthService creates a new health service. ping may be nil when the
// service runs without a database.
func NewHealthService(name string, ping func(ctx context.Context) error, log zerolog.Logger) *HealthService {
	return &HealthService{name: name, ping: ping, log: log}
}

// Check reports "degraded" rather than failing when the database is down,
// since intake keeps working without it.
func (s *HealthService) Check(ctx context.Context) *HealthResult {
	res := &HealthResult{Status: "healthy", Service: s.name, Database: "ok"}
	if s.ping == nil {
		res.Status, res.Database = "degraded", "unreachable"
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.ping(ctx); err != nil {
		s.log.Warn().Err(err).Msg("health check: database unreachable")
		res.Status, res.Database = "degraded", "unreachable"
	}
	return res
}
