package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"ledgerlens/internal/dataprocessing"
	"ledgerlens/internal/infrastructure"
	"ledgerlens/internal/validation"
)

// Upload is one spreadsheet received from a client.
type Upload struct {
	Name string
	Size int64 // -1 when unknown
	Body io.Reader
}

// Report is the result of processing an upload.
type Report struct {
	Sheet        string
	Records      []dataprocessing.Record
	Calculations dataprocessing.StatisticsMap
}

// ReportService turns uploaded workbooks into records and statistics
type ReportService struct {
	normalizer *dataprocessing.Normalizer
	validator  *validation.FileValidator
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
}

// NewReportService creates a report service. metrics may be nil.
func NewReportService(normalizer *dataprocessing.Normalizer, validator *validation.FileValidator, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		normalizer: normalizer,
		validator:  validator,
		metrics:    metrics,
		logger:     logger.With(slog.String("service", "report")),
	}
}

// Process validates the upload, normalizes its first worksheet and
// aggregates the recognized fields. A workbook that cannot be read returns a
// PARSING AppError; nothing is returned alongside an error.
func (s *ReportService) Process(ctx context.Context, up Upload) (report *Report, err error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "report.process",
		attribute.String("file.name", up.Name),
		attribute.Int64("file.size", up.Size))
	defer func() { endSpan(span, err) }()

	if err := s.validator.ValidateUpload(up.Name, up.Size); err != nil {
		return nil, err
	}

	data, err := s.read(up.Body)
	if err != nil {
		return nil, err
	}

	table, err := s.normalizer.Parse(ctx, bytes.NewReader(data))
	if err != nil {
		s.metrics.RecordUpload(ctx, int64(len(data)), 0, time.Since(start), err)
		s.logger.ErrorContext(ctx, "Failed to parse upload",
			slog.String("file", up.Name),
			slog.Int("bytes", len(data)),
			slog.String("error", err.Error()))
		return nil, err
	}

	calc := dataprocessing.Aggregate(table.Records)
	s.metrics.RecordUpload(ctx, int64(len(data)), len(table.Records), time.Since(start), nil)

	span.SetAttributes(
		attribute.String("sheet.name", table.Sheet),
		attribute.Int("records", len(table.Records)),
		attribute.Int("fields", len(calc)))

	s.logger.InfoContext(ctx, "Upload processed",
		slog.String("file", up.Name),
		slog.String("sheet", table.Sheet),
		slog.Int("records", len(table.Records)),
		slog.Int("fields", len(calc)),
		slog.Duration("duration", time.Since(start)))

	return &Report{
		Sheet:        table.Sheet,
		Records:      table.Records,
		Calculations: calc,
	}, nil
}

// read loads the whole body, enforcing the size limit when the declared
// size was missing or wrong.
func (s *ReportService) read(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, fmt.Errorf("%w: upload has no body", ErrInvalidInput)
	}

	limit := s.validator.MaxSize()
	if limit > 0 {
		body = io.LimitReader(body, limit+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", validation.ErrFileTooLarge, limit)
	}
	return data, nil
}
