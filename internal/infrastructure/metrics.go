package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics holds the HTTP and report pipeline instruments
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Upload pipeline
	UploadsTotal   metric.Int64Counter
	UploadBytes    metric.Int64Histogram
	RecordsParsed  metric.Int64Counter
	ParseFailures  metric.Int64Counter
	UploadDuration metric.Float64Histogram

	// Exports
	ChartsRendered    metric.Int64Counter
	ChartDuration     metric.Float64Histogram
	ReceiptsGenerated metric.Int64Counter
	ReceiptDuration   metric.Float64Histogram
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	m := &BusinessMetrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.UploadsTotal, err = meter.Int64Counter(
		"uploads_total",
		metric.WithDescription("Total number of spreadsheet uploads by outcome"),
	); err != nil {
		return nil, err
	}

	if m.UploadBytes, err = meter.Int64Histogram(
		"upload_size_bytes",
		metric.WithDescription("Size of uploaded spreadsheets"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}

	if m.RecordsParsed, err = meter.Int64Counter(
		"records_parsed_total",
		metric.WithDescription("Total number of records produced from uploaded worksheets"),
	); err != nil {
		return nil, err
	}

	if m.ParseFailures, err = meter.Int64Counter(
		"parse_failures_total",
		metric.WithDescription("Total number of uploads that could not be read as workbooks"),
	); err != nil {
		return nil, err
	}

	if m.UploadDuration, err = meter.Float64Histogram(
		"upload_processing_duration_seconds",
		metric.WithDescription("Time spent normalizing and aggregating an upload"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.ChartsRendered, err = meter.Int64Counter(
		"charts_rendered_total",
		metric.WithDescription("Total number of chart render attempts by type and outcome"),
	); err != nil {
		return nil, err
	}

	if m.ChartDuration, err = meter.Float64Histogram(
		"chart_render_duration_seconds",
		metric.WithDescription("Chart render duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.ReceiptsGenerated, err = meter.Int64Counter(
		"receipts_generated_total",
		metric.WithDescription("Total number of receipt PDF attempts by outcome"),
	); err != nil {
		return nil, err
	}

	if m.ReceiptDuration, err = meter.Float64Histogram(
		"receipt_render_duration_seconds",
		metric.WithDescription("Receipt PDF render duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func outcome(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("status", "failure")
	}
	return attribute.String("status", "success")
}

// RecordUpload records one processed upload. Safe on a nil receiver.
func (m *BusinessMetrics) RecordUpload(ctx context.Context, size int64, records int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(outcome(err))
	m.UploadsTotal.Add(ctx, 1, attrs)
	m.UploadBytes.Record(ctx, size, attrs)
	m.UploadDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.ParseFailures.Add(ctx, 1)
		return
	}
	m.RecordsParsed.Add(ctx, int64(records))
}

// RecordChart records one chart render. Safe on a nil receiver.
func (m *BusinessMetrics) RecordChart(ctx context.Context, chartType string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("chart.type", chartType), outcome(err))
	m.ChartsRendered.Add(ctx, 1, attrs)
	m.ChartDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordReceipt records one receipt render. Safe on a nil receiver.
func (m *BusinessMetrics) RecordReceipt(ctx context.Context, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(outcome(err))
	m.ReceiptsGenerated.Add(ctx, 1, attrs)
	m.ReceiptDuration.Record(ctx, duration.Seconds(), attrs)
}
