// Package http implements the HTTP handlers of the ledgerlens web service.
// Handlers stay thin: they decode the request, call a service and format
// the response.
//
// # Endpoints
//
//	POST /api/upload       multipart workbook upload, returns records and statistics
//	POST /api/chart        renders a PNG chart from records or explicit series
//	POST /api/receipt      renders a PDF receipt
//	POST /api/export/csv   returns the records as CSV
//	GET  /api/health       health, readiness, liveness and version
//	GET  /                 embedded upload page
//
// # Error Handling
//
// Every failure is written by errors.ErrorHandler as an RFC 7807 problem
// that also carries "success": false and an "error" message:
//
//	{
//	    "type": "/errors/upload/no-file",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "No file uploaded",
//	    "error": "No file uploaded",
//	    "success": false
//	}
//
// Internal causes, such as why a workbook could not be parsed, are logged
// and never returned to the caller.
package http
