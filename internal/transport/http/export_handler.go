package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	apierrors "ledgerlens/internal/errors"
	"ledgerlens/internal/exporter"
	"ledgerlens/internal/services"
	api "ledgerlens/pkg/contracts/api/v1"
)

// File names offered to the browser
const (
	ChartFileName   = "chart.png"
	ReceiptFileName = "accounting-receipt.pdf"
	CSVFileName     = "records.csv"
)

// ExportHandler serves the chart, receipt and CSV downloads
type ExportHandler struct {
	charts       ChartRenderer
	receipts     ReceiptGenerator
	validator    RequestValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(charts ChartRenderer, receipts ReceiptGenerator, validator RequestValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		charts:       charts,
		receipts:     receipts,
		validator:    validator,
		logger:       logger.With(slog.String("handler", "export")),
		errorHandler: errorHandler,
	}
}

// Chart handles POST /api/chart
func (h *ExportHandler) Chart(w http.ResponseWriter, r *http.Request) {
	var req api.ChartRequest
	if !h.decode(w, r, &req) {
		return
	}

	records, err := recordsFromRows(req.Data)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	png, err := h.charts.Render(r.Context(), services.ChartInput{
		Data:   records,
		Type:   req.ChartType,
		Labels: req.Labels,
		Values: req.Values,
		Title:  req.Title,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptySeries):
			err = apierrors.ErrEmptySeries
		case apierrors.IsType(err, apierrors.ErrTypeRendering):
			err = fmt.Errorf("%w: %w", apierrors.ErrChartGeneration, err)
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	writeAttachment(w, "image/png", ChartFileName, png)
}

// Receipt handles POST /api/receipt
func (h *ExportHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	var req api.ReceiptRequest
	if !h.decode(w, r, &req) {
		return
	}

	records, err := recordsFromRows(req.Data)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	pdf, err := h.receipts.Generate(r.Context(), services.ReceiptInput{
		Data:         records,
		Calculations: statisticsFromCalculations(req.Calculations),
		Company: exporter.CompanyInfo{
			Name:    req.CompanyInfo.Name,
			Address: req.CompanyInfo.Address,
			Phone:   req.CompanyInfo.Phone,
		},
	})
	if err != nil {
		if apierrors.IsType(err, apierrors.ErrTypeRendering) {
			err = fmt.Errorf("%w: %w", apierrors.ErrReceiptGeneration, err)
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	writeAttachment(w, "application/pdf", ReceiptFileName, pdf)
}

// CSV handles POST /api/export/csv
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	if !h.decode(w, r, &req) {
		return
	}

	records, err := recordsFromRows(req.Data)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	data, err := h.receipts.ExportCSV(r.Context(), records, req.Columns)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	writeAttachment(w, "text/csv; charset=utf-8", CSVFileName, data)
}

// decode reads and validates a JSON body, writing the error response itself
// when it returns false.
func (h *ExportHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid request body",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		var maxErr *http.MaxBytesError
		if !errors.As(err, &maxErr) {
			err = apierrors.InvalidRequestWithError(err)
		}
		h.errorHandler.HandleError(w, r, err)
		return false
	}
	if h.validator != nil {
		if err := h.validator.ValidateStruct(v); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return false
		}
	}
	return true
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
