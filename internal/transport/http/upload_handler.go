package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"ledgerlens/internal/config"
	apierrors "ledgerlens/internal/errors"
	"ledgerlens/internal/services"
	"ledgerlens/internal/validation"
	api "ledgerlens/pkg/contracts/api/v1"
)

// multipartOverhead is the body allowance for multipart framing on top of
// the file size limit.
const multipartOverhead = 1 << 20

// UploadHandler handles workbook uploads
type UploadHandler struct {
	service      ReportProcessor
	field        string
	maxFileSize  int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(service ReportProcessor, cfg config.UploadConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *UploadHandler {
	field := cfg.FormField
	if field == "" {
		field = "file"
	}
	return &UploadHandler{
		service:      service,
		field:        field,
		maxFileSize:  cfg.MaxFileSize,
		logger:       logger.With(slog.String("handler", "upload")),
		errorHandler: errorHandler,
	}
}

// Upload handles POST /api/upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)
	}

	file, header, err := r.FormFile(h.field)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.formError(err))
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	h.logger.DebugContext(ctx, "Upload received",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	report, err := h.service.Process(ctx, services.Upload{
		Name: header.Filename,
		Size: header.Size,
		Body: file,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, h.processError(err))
		return
	}

	rows, err := rowsFromRecords(report.Records)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.NewUploadResponse(rows, calculationsFromStatistics(report.Calculations)))
}

// formError maps a failure to read the multipart form.
func (h *UploadHandler) formError(err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return apierrors.ErrNoFileUploaded
	case errors.As(err, &maxErr), strings.Contains(err.Error(), "request body too large"):
		return apierrors.PayloadTooLarge(h.maxFileSize)
	default:
		return apierrors.InvalidRequestWithError(err)
	}
}

// processError maps service errors onto API errors. Anything unmapped,
// including parse failures and unreadable uploads, goes to the error handler
// unchanged and becomes the generic 500.
func (h *UploadHandler) processError(err error) error {
	switch {
	case errors.Is(err, validation.ErrFileTooLarge):
		return apierrors.PayloadTooLarge(h.maxFileSize)
	case errors.Is(err, validation.ErrMissingFileName),
		errors.Is(err, services.ErrInvalidInput):
		return apierrors.ErrNoFileUploaded
	default:
		return err
	}
}
