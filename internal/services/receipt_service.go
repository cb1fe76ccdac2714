package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"ledgerlens/internal/dataprocessing"
	apperrors "ledgerlens/internal/errors"
	"ledgerlens/internal/exporter"
	"ledgerlens/internal/infrastructure"
)

// ReceiptInput is the data printed on a receipt.
type ReceiptInput struct {
	Data         []dataprocessing.Record
	Calculations dataprocessing.StatisticsMap
	Company      exporter.CompanyInfo
}

// ReceiptService produces PDF receipts and CSV exports of record data
type ReceiptService struct {
	writer  *exporter.ReceiptWriter
	csv     *exporter.CSVWriter
	metrics *infrastructure.BusinessMetrics
	now     func() time.Time
	logger  *slog.Logger
}

// NewReceiptService creates a receipt service. metrics may be nil.
func NewReceiptService(writer *exporter.ReceiptWriter, csv *exporter.CSVWriter, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ReceiptService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReceiptService{
		writer:  writer,
		csv:     csv,
		metrics: metrics,
		now:     time.Now,
		logger:  logger.With(slog.String("service", "receipt")),
	}
}

// Generate renders a PDF receipt. When the caller sends no calculations they
// are computed from the data.
func (s *ReceiptService) Generate(ctx context.Context, in ReceiptInput) (pdf []byte, err error) {
	start := time.Now()
	number := exporter.NewReceiptNumber()

	ctx, span := startSpan(ctx, "receipt.generate",
		attribute.String("receipt.number", number),
		attribute.Int("receipt.records", len(in.Data)))
	defer func() { endSpan(span, err) }()

	calc := in.Calculations
	if len(calc) == 0 {
		calc = dataprocessing.Aggregate(in.Data)
	}

	pdf, err = s.writer.Write(ctx, exporter.Receipt{
		Number:       number,
		IssuedAt:     s.now(),
		Company:      in.Company,
		Records:      in.Data,
		Calculations: calc,
	})
	s.metrics.RecordReceipt(ctx, time.Since(start), err)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Receipt generation failed",
			slog.String("receipt_number", number),
			slog.String("error", err.Error()))
		return nil, apperrors.NewRenderingError("failed to render receipt", err).
			WithContext("receipt_number", number)
	}

	s.logger.InfoContext(ctx, "Receipt generated",
		slog.String("receipt_number", number),
		slog.Int("records", len(in.Data)),
		slog.Int("bytes", len(pdf)),
		slog.Duration("duration", time.Since(start)))
	return pdf, nil
}

// ExportCSV writes the records as CSV with a UTF-8 BOM. Columns default to
// every key in first-seen order.
func (s *ReceiptService) ExportCSV(ctx context.Context, records []dataprocessing.Record, columns []string) (data []byte, err error) {
	ctx, span := startSpan(ctx, "records.export_csv",
		attribute.Int("records", len(records)))
	defer func() { endSpan(span, err) }()

	data, err = s.csv.Bytes(ctx, records, exporter.WriteOptions{
		Headers:   columns,
		BOMPrefix: true,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "CSV export failed", slog.String("error", err.Error()))
		return nil, err
	}
	return data, nil
}
