// Package app wires the dashboard together and manages its lifecycle.
//
// # Initialization Flow
//
// New performs, in order:
//
//	1. Resolve file system paths and create the export and log directories
//	2. Initialize OpenTelemetry and the scorecard instruments
//	3. Create the websocket hub, scorecard service, health service and assets
//	4. Create the file watcher when live reload is enabled
//	5. Build the chi router and the HTTP server
//
// # Routing
//
// /ws and /metrics sit outside the main middleware group: the websocket
// upgrade needs the unwrapped connection, and scrapes should not be traced
// or rate limited. Everything else runs through tracing, request logging,
// panic recovery, security headers, CORS, rate limiting and compression.
//
// # Usage
//
//	a, err := app.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// Run returns nil after ctx is cancelled and the server has drained. It never
// calls os.Exit; the caller owns the process.
package app
