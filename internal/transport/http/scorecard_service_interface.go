package http

import (
	"context"

	"scorecard/internal/scorecard"
	"scorecard/internal/services"
)

// ScorecardServiceInterface is what the scorecard and dashboard handlers
// need from the service layer.
type ScorecardServiceInterface interface {
	InputPath() string
	Bundle(ctx context.Context) (*scorecard.Bundle, error)
	View(ctx context.Context, f scorecard.Filter) (*scorecard.View, error)
	Invalidate(ctx context.Context, reason string) int
	CacheStats() (scorecard.CacheStats, bool)
}

// HealthServiceInterface is what the health handler needs.
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

var (
	_ ScorecardServiceInterface = (*services.ScorecardService)(nil)
	_ HealthServiceInterface    = (*services.HealthService)(nil)
)
