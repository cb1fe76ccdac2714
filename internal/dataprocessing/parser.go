package dataprocessing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "ledgerlens/internal/errors"
)

// emptyHeader names a column whose header cell is blank.
const emptyHeader = "__EMPTY"

// Table is the normalized content of a workbook's first worksheet.
type Table struct {
	Sheet   string
	Headers []string
	Records []Record
}

// Normalizer turns workbook bytes into ordered Records.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer that logs through logger.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger.With(slog.String("component", "normalizer"))}
}

// Normalize returns one Record per row below the header of the first
// worksheet. It fails with a parsing AppError when data is not a workbook or
// has no worksheets.
func (n *Normalizer) Normalize(ctx context.Context, data []byte) ([]Record, error) {
	table, err := n.Parse(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return table.Records, nil
}

// NormalizeReader is Normalize for a workbook read from r.
func (n *Normalizer) NormalizeReader(ctx context.Context, r io.Reader) ([]Record, error) {
	table, err := n.Parse(ctx, r)
	if err != nil {
		return nil, err
	}
	return table.Records, nil
}

// Parse reads the first worksheet of the workbook in r.
func (n *Normalizer) Parse(ctx context.Context, r io.Reader) (*Table, error) {
	start := time.Now()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("unrecognized workbook format", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook contains no worksheets", nil)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read worksheet %q", sheet), err).
			WithContext("sheet", sheet)
	}

	// The header is the first row holding any value, as in a sheet's used range.
	headerIdx := 0
	for headerIdx < len(rows) && rowIsEmpty(rows[headerIdx]) {
		headerIdx++
	}

	table := &Table{Sheet: sheet, Records: []Record{}}
	if headerIdx == len(rows) {
		n.logger.InfoContext(ctx, "worksheet is empty",
			slog.String("sheet", sheet),
			slog.Int("sheet_count", len(sheets)))
		return table, nil
	}

	width := 0
	for _, row := range rows[headerIdx:] {
		if len(row) > width {
			width = len(row)
		}
	}
	table.Headers = headerKeys(rows[headerIdx], width)

	body := rows[headerIdx+1:]
	table.Records = make([]Record, 0, len(body))
	for i, row := range body {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rowNum := headerIdx + i + 2 // 1-based sheet row
		table.Records = append(table.Records, n.buildRecord(f, sheet, table.Headers, row, rowNum))
	}

	n.logger.InfoContext(ctx, "worksheet normalized",
		slog.String("sheet", sheet),
		slog.Int("sheet_count", len(sheets)),
		slog.Int("columns", len(table.Headers)),
		slog.Int("records", len(table.Records)),
		slog.Duration("duration", time.Since(start)))

	return table, nil
}

func (n *Normalizer) buildRecord(f *excelize.File, sheet string, headers []string, row []string, rowNum int) Record {
	rec := Record{
		keys:   make([]string, 0, len(row)),
		values: make(map[string]Value, len(row)),
	}
	for col, raw := range row {
		if raw == "" || col >= len(headers) {
			continue
		}
		rec.set(headers[col], cellValue(f, sheet, col+1, rowNum, raw))
	}
	return rec
}

// cellValue types a raw cell string using the cell's stored type.
func cellValue(f *excelize.File, sheet string, col, row int, raw string) Value {
	cellType := excelize.CellTypeUnset
	if name, err := excelize.CoordinatesToCellName(col, row); err == nil {
		if t, err := f.GetCellType(sheet, name); err == nil {
			cellType = t
		}
	}

	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		if num, err := strconv.ParseFloat(raw, 64); err == nil {
			return Number(num)
		}
		return Text(raw)
	case excelize.CellTypeBool:
		switch strings.ToUpper(raw) {
		case "1", "TRUE":
			return Text("TRUE")
		case "0", "FALSE":
			return Text("FALSE")
		}
		return Text(raw)
	default:
		return Text(raw)
	}
}

// headerKeys derives a distinct key for each of width columns. Blank headers
// become __EMPTY, __EMPTY_1, ...; repeated names get a _1, _2 suffix.
func headerKeys(header []string, width int) []string {
	keys := make([]string, width)
	used := make(map[string]bool, width)
	counts := make(map[string]int, width)

	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = emptyHeader
		}

		key := name
		if used[key] {
			n := counts[name]
			for {
				n++
				key = fmt.Sprintf("%s_%d", name, n)
				if !used[key] {
					break
				}
			}
			counts[name] = n
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
