package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"ledgerlens/internal/infrastructure"
)

// Problem types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeServiceDown      = "/errors/service-unavailable"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeUnsupportedMedia = "/errors/unsupported-media-type"
)

// Domain-specific problem types
const (
	TypeNoFile           = "/errors/upload/no-file"
	TypeFileProcessing   = "/errors/upload/processing-failed"
	TypeChartGeneration  = "/errors/chart/generation-failed"
	TypeReceiptRendering = "/errors/receipt/generation-failed"
)

const genericDetail = "An unexpected error occurred while processing your request"

// ErrorHandler converts errors into RFC 7807 responses. Every response also
// carries "success": false and an "error" message for the browser client.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err with its full cause and writes the problem response.
// The response never includes the cause of an internal failure.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	traceID := requestTraceID(r)
	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", traceID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)

	problem.WithExtension("trace_id", traceID)
	if h.includeStack {
		problem.WithExtension("stack", getStackTrace())
	}

	WriteProblem(w, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newProblem(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", r)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErrorToProblem(apiErr, r)
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return apiErrorToProblem(PayloadTooLarge(maxBytesErr.Limit), r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrTypeParsing:
			return apiErrorToProblem(ErrFileProcessing, r)
		case ErrTypeValidation:
			return apiErrorToProblem(New(http.StatusBadRequest, "VALIDATION_FAILED", appErr.Message), r)
		case ErrTypeNotFound:
			return apiErrorToProblem(New(http.StatusNotFound, "NOT_FOUND", appErr.Message), r)
		}
	}

	if strings.Contains(err.Error(), "request body too large") {
		return apiErrorToProblem(ErrPayloadTooLarge, r)
	}

	return newProblem(http.StatusInternalServerError, TypeInternal, "Internal Server Error", genericDetail, r)
}

func apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "VALIDATION_FAILED", "INVALID_REQUEST", "EMPTY_SERIES":
		problemType = TypeValidation
	case "NO_FILE_UPLOADED":
		problemType = TypeNoFile
	case "FILE_PROCESSING_FAILED":
		problemType = TypeFileProcessing
	case "CHART_GENERATION_FAILED":
		problemType = TypeChartGeneration
	case "RECEIPT_GENERATION_FAILED":
		problemType = TypeReceiptRendering
	case "NOT_FOUND":
		problemType = TypeNotFound
	case "PAYLOAD_TOO_LARGE":
		problemType = TypePayloadTooLarge
	case "UNSUPPORTED_MEDIA_TYPE":
		problemType = TypeUnsupportedMedia
	case "RATE_LIMIT_EXCEEDED":
		problemType = TypeRateLimit
	case "SERVICE_UNAVAILABLE":
		problemType = TypeServiceDown
	case "REQUEST_TIMEOUT":
		problemType = TypeTimeout
	}

	problem := newProblem(apiErr.StatusCode, problemType, http.StatusText(apiErr.StatusCode), apiErr.Message, r).
		WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

// HandlePanic writes a 500 problem for a recovered panic
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	traceID := requestTraceID(r)

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", traceID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := newProblem(http.StatusInternalServerError, TypeInternal, "Internal Server Error",
		"An unexpected error occurred", r).
		WithExtension("trace_id", traceID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	WriteProblem(w, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := newProblem(http.StatusNotFound, TypeNotFound, "Not Found",
		"The requested resource was not found", r).
		WithExtension("trace_id", requestTraceID(r))

	WriteProblem(w, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := newProblem(http.StatusMethodNotAllowed, TypeMethodNotAllowed, "Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r).
		WithExtension("trace_id", requestTraceID(r))

	WriteProblem(w, problem)
}

func newProblem(status int, problemType, title, detail string, r *http.Request) *ProblemDetails {
	return NewProblemDetails(status, problemType, title, detail, r.URL.Path).
		WithExtension("success", false).
		WithExtension("error", detail)
}

func requestTraceID(r *http.Request) string {
	if traceID := infrastructure.GetTraceID(r.Context()); traceID != "" {
		return traceID
	}
	return middleware.GetReqID(r.Context())
}

func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
