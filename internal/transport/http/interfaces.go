package http

import (
	"context"

	"ledgerlens/internal/dataprocessing"
	"ledgerlens/internal/services"
)

// ReportProcessor turns an uploaded workbook into records and statistics.
type ReportProcessor interface {
	Process(ctx context.Context, up services.Upload) (*services.Report, error)
}

// ChartRenderer draws a chart as PNG bytes.
type ChartRenderer interface {
	Render(ctx context.Context, in services.ChartInput) ([]byte, error)
}

// ReceiptGenerator renders PDF receipts and CSV exports.
type ReceiptGenerator interface {
	Generate(ctx context.Context, in services.ReceiptInput) ([]byte, error)
	ExportCSV(ctx context.Context, records []dataprocessing.Record, columns []string) ([]byte, error)
}

// RequestValidator checks a decoded request body.
type RequestValidator interface {
	ValidateStruct(v interface{}) error
}
