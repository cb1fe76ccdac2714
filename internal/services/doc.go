// Package services implements the business logic behind the HTTP handlers.
//
// # Available Services
//
//	- ReportService: validates an upload, normalizes the first worksheet and
//	  aggregates the recognized fields
//	- ChartService: derives a series from records and renders it as a PNG
//	- ReceiptService: renders PDF receipts and CSV exports
//	- HealthService: health, readiness and liveness checks
//
// Every operation takes the request context, opens an OpenTelemetry span and
// records its outcome in the business metrics when they are configured.
//
// # Error Handling
//
// Services return errors that handlers turn into problem responses:
//
//	- validation errors from the validation package for rejected uploads
//	- PARSING AppErrors when a workbook cannot be read
//	- RENDERING AppErrors when a chart or receipt cannot be drawn
//	- ErrEmptySeries when a chart request has nothing to plot
package services
