// Package services implements the business logic between the transports
// (HTTP handlers, CLI) and the scorecard core.
//
// ScorecardService owns the load path: read the input, look the content
// digest up in the bundle cache, parse on a miss with concurrent callers
// coalesced, and record metrics and a trace span for every load. It also
// builds filtered views and turns file changes into cache invalidations and
// dashboard refresh broadcasts.
//
// HealthService reports liveness, readiness (the input file must be
// readable) and build information.
//
// Services take their collaborators through constructors and functional
// options, so tests can run them with nothing but a temp directory:
//
//	svc := services.NewScorecardService(path, loader, logger,
//		services.WithCache(scorecard.NewCache(0, 4)))
//	view, err := svc.View(ctx, scorecard.Filter{Status: scorecard.StatusAbsent})
package services
