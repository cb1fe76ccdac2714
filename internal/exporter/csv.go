package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"ledgerlens/internal/dataprocessing"
)

// utf8BOM helps Excel recognise UTF-8 CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string // column order; derived from the records when empty
	BOMPrefix bool
}

// CSVWriter exports normalized records as CSV
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// Bytes writes records to an in-memory CSV document.
func (w *CSVWriter) Bytes(ctx context.Context, records []dataprocessing.Record, options WriteOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := w.WriteCSV(ctx, &buf, records, options); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV writes a header row and one row per record to out. Cells a record
// does not have are left empty.
func (w *CSVWriter) WriteCSV(ctx context.Context, out io.Writer, records []dataprocessing.Record, options WriteOptions) error {
	headers := options.Headers
	if len(headers) == 0 {
		headers = Columns(records)
	}

	w.logger.DebugContext(ctx, "Writing CSV",
		slog.Int("record_count", len(records)),
		slog.Int("column_count", len(headers)))

	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	row := make([]string, len(headers))
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		for j, h := range headers {
			row[j] = record.String(h)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Columns returns every key used by records, in first-seen order.
func Columns(records []dataprocessing.Record) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, r := range records {
		for _, k := range r.Keys() {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	return columns
}
