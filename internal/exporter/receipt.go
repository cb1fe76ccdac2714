package exporter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"ledgerlens/internal/charting"
	"ledgerlens/internal/config"
	"ledgerlens/internal/dataprocessing"
)

const (
	fontRegular = "GoRegular"
	fontBold    = "GoBold"

	pageWidth    = 595.0
	pageHeight   = 842.0
	marginLeft   = 40.0
	marginRight  = pageWidth - 40.0
	rowHeight    = 18.0
	pageBottom   = 780.0
	continuedTop = 50.0
)

// CompanyInfo is printed in the receipt header.
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
}

// Receipt is everything needed to lay out one PDF receipt.
type Receipt struct {
	Number       string
	IssuedAt     time.Time
	Company      CompanyInfo
	Records      []dataprocessing.Record
	Calculations dataprocessing.StatisticsMap
}

// ReceiptWriter renders receipts as A4 PDF documents.
type ReceiptWriter struct {
	maxRows  int
	currency string
	defaults CompanyInfo
	logger   *slog.Logger
}

// NewReceiptWriter creates a writer using the layout limits and company
// defaults in cfg.
func NewReceiptWriter(cfg config.ReceiptConfig, logger *slog.Logger) *ReceiptWriter {
	if logger == nil {
		logger = slog.Default()
	}
	maxRows := cfg.MaxRows
	if maxRows <= 0 {
		maxRows = config.DefaultReceiptRows
	}
	return &ReceiptWriter{
		maxRows:  maxRows,
		currency: cfg.Currency,
		defaults: CompanyInfo{
			Name:    cfg.CompanyName,
			Address: cfg.CompanyAddress,
			Phone:   cfg.CompanyPhone,
		},
		logger: logger.With(slog.String("component", "receipt_writer")),
	}
}

// NewReceiptNumber returns a short unique receipt identifier.
func NewReceiptNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RCP-" + strings.ToUpper(id[:10])
}

// Write renders r and returns the PDF bytes. Blank company fields fall back
// to the configured defaults; a missing number or date is generated.
func (w *ReceiptWriter) Write(ctx context.Context, r Receipt) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.Company = w.withDefaults(r.Company)
	if r.Number == "" {
		r.Number = NewReceiptNumber()
	}
	if r.IssuedAt.IsZero() {
		r.IssuedAt = time.Now()
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	if err := pdf.AddTTFFontData(fontRegular, goregular.TTF); err != nil {
		return nil, fmt.Errorf("load regular font: %w", err)
	}
	if err := pdf.AddTTFFontData(fontBold, gobold.TTF); err != nil {
		return nil, fmt.Errorf("load bold font: %w", err)
	}
	pdf.AddPage()

	p := &page{pdf: pdf}
	y := w.drawHeader(p, r)
	y, err := w.drawItems(ctx, p, r.Records, y)
	if err != nil {
		return nil, err
	}
	w.drawSummary(p, r.Calculations, y)
	w.drawFooter(p, r)
	if p.err != nil {
		return nil, fmt.Errorf("lay out receipt: %w", p.err)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write receipt: %w", err)
	}

	w.logger.DebugContext(ctx, "receipt rendered",
		slog.String("receipt_number", r.Number),
		slog.Int("records", len(r.Records)),
		slog.Int("fields", len(r.Calculations)),
		slog.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

func (w *ReceiptWriter) withDefaults(c CompanyInfo) CompanyInfo {
	if strings.TrimSpace(c.Name) == "" {
		c.Name = w.defaults.Name
	}
	if strings.TrimSpace(c.Address) == "" {
		c.Address = w.defaults.Address
	}
	if strings.TrimSpace(c.Phone) == "" {
		c.Phone = w.defaults.Phone
	}
	return c
}

func (w *ReceiptWriter) drawHeader(p *page, r Receipt) float64 {
	p.pdf.SetFillColor(79, 70, 229)
	p.pdf.RectFromUpperLeftWithStyle(0, 0, pageWidth, 110, "F")

	p.pdf.SetTextColor(255, 255, 255)
	p.font(fontBold, 22)
	p.text(marginLeft, 28, truncate(r.Company.Name, 32))
	p.font(fontRegular, 11)
	p.text(marginLeft, 62, truncate(r.Company.Address, 48))
	p.text(marginLeft, 80, truncate(r.Company.Phone, 48))

	p.font(fontBold, 20)
	p.textRight(marginRight, 28, "RECEIPT")
	p.font(fontRegular, 10)
	p.textRight(marginRight, 62, "No. "+r.Number)
	p.textRight(marginRight, 80, r.IssuedAt.Format("02 Jan 2006 15:04"))

	p.pdf.SetTextColor(31, 41, 55)
	return 135
}

func (w *ReceiptWriter) drawItems(ctx context.Context, p *page, records []dataprocessing.Record, y float64) (float64, error) {
	p.font(fontBold, 14)
	p.text(marginLeft, y, "Line items")
	y += 24

	if len(records) == 0 {
		p.font(fontRegular, 11)
		p.text(marginLeft, y, "No records")
		return y + 30, nil
	}

	shown := records
	if len(shown) > w.maxRows {
		shown = shown[:w.maxRows]
	}
	labels, values := charting.DeriveSeries(shown, nil, nil)

	y = w.drawTableHeader(p, y)
	p.font(fontRegular, 10)
	for i, rec := range shown {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if y+rowHeight > pageBottom {
			p.pdf.AddPage()
			y = w.drawTableHeader(p, continuedTop)
			p.font(fontRegular, 10)
		}

		p.text(marginLeft+4, y+4, formatCount(i+1))
		p.text(marginLeft+34, y+4, truncate(labels[i], 34))
		p.text(marginLeft+250, y+4, truncate(rec.String("category"), 24))
		p.textRight(marginRight-4, y+4, formatMoney(values[i], w.currency))

		p.pdf.SetStrokeColor(229, 231, 235)
		p.pdf.SetLineWidth(0.5)
		p.pdf.Line(marginLeft, y+rowHeight, marginRight, y+rowHeight)
		y += rowHeight
	}

	if hidden := len(records) - len(shown); hidden > 0 {
		p.pdf.SetTextColor(107, 114, 128)
		p.text(marginLeft+4, y+6, fmt.Sprintf("+%s more rows", formatCount(hidden)))
		p.pdf.SetTextColor(31, 41, 55)
		y += rowHeight
	}
	return y + 24, nil
}

func (w *ReceiptWriter) drawTableHeader(p *page, y float64) float64 {
	p.pdf.SetFillColor(243, 244, 246)
	p.pdf.RectFromUpperLeftWithStyle(marginLeft, y, marginRight-marginLeft, rowHeight+2, "F")
	p.font(fontBold, 10)
	p.text(marginLeft+4, y+5, "#")
	p.text(marginLeft+34, y+5, "Description")
	p.text(marginLeft+250, y+5, "Category")
	p.textRight(marginRight-4, y+5, "Amount")
	return y + rowHeight + 4
}

func (w *ReceiptWriter) drawSummary(p *page, calc dataprocessing.StatisticsMap, y float64) {
	needed := 40 + float64(len(calc))*rowHeight
	if y+needed > pageBottom {
		p.pdf.AddPage()
		y = continuedTop
	}

	p.font(fontBold, 14)
	p.text(marginLeft, y, "Summary")
	y += 24

	if len(calc) == 0 {
		p.font(fontRegular, 11)
		p.text(marginLeft, y, "No numeric fields found")
		return
	}

	columns := []struct {
		title string
		x     float64
	}{
		{"Sum", 220}, {"Average", 310}, {"Min", 400}, {"Max", 480}, {"Count", marginRight - 4},
	}

	p.font(fontBold, 10)
	p.text(marginLeft+4, y, "Field")
	for _, c := range columns {
		p.textRight(c.x, y, c.title)
	}
	y += rowHeight

	p.font(fontRegular, 10)
	for _, field := range dataprocessing.RecognizedFields {
		s, ok := calc[field]
		if !ok {
			continue
		}
		p.text(marginLeft+4, y, fieldTitle(field))
		p.textRight(columns[0].x, y, formatMoney(s.Sum, w.currency))
		p.textRight(columns[1].x, y, formatMoney(s.Average, w.currency))
		p.textRight(columns[2].x, y, formatMoney(s.Min, w.currency))
		p.textRight(columns[3].x, y, formatMoney(s.Max, w.currency))
		p.textRight(columns[4].x, y, formatCount(s.Count))
		y += rowHeight
	}
}

func (w *ReceiptWriter) drawFooter(p *page, r Receipt) {
	p.pdf.SetTextColor(107, 114, 128)
	p.font(fontRegular, 9)
	p.text(marginLeft, pageHeight-36, fmt.Sprintf("%s  |  %s  |  %s", r.Company.Name, r.Number, config.AppName))
}

func fieldTitle(f dataprocessing.FieldName) string {
	s := string(f)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// page wraps gopdf calls and keeps the first layout error.
type page struct {
	pdf *gopdf.GoPdf
	err error
}

func (p *page) font(family string, size float64) {
	if p.err != nil {
		return
	}
	p.err = p.pdf.SetFont(family, "", size)
}

func (p *page) text(x, y float64, s string) {
	s = printable(s)
	if p.err != nil || s == "" {
		return
	}
	p.pdf.SetX(x)
	p.pdf.SetY(y)
	p.err = p.pdf.Cell(nil, s)
}

func (p *page) textRight(right, y float64, s string) {
	s = printable(s)
	if p.err != nil || s == "" {
		return
	}
	width, err := p.pdf.MeasureTextWidth(s)
	if err != nil {
		p.err = err
		return
	}
	p.text(right-width, y, s)
}
