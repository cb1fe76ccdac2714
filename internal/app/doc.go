// Package app wires the upload service together and manages its lifecycle.
//
// NewApplication builds every component from a config.Config:
//
//  1. OpenTelemetry providers and business metrics
//  2. Services (reports, charts, receipts, health)
//  3. The chi router with its middleware chain and API routes
//  4. The http.Server
//
// Run serves until the context is cancelled or the process receives
// SIGINT/SIGTERM, then shuts the server and telemetry down within the
// configured shutdown timeout.
//
//	app, err := app.NewApplication(cfg, logger, uiFS)
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
package app
