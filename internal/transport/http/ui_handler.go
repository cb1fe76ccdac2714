package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
)

// PageData is passed to the index template.
type PageData struct {
	AppName     string
	Version     string
	FormField   string
	MaxUploadMB int64
}

// UIHandler serves the single-page upload client from an embedded filesystem
type UIHandler struct {
	tmpl   *template.Template
	data   PageData
	logger *slog.Logger
}

// NewUIHandler parses index.html from files.
func NewUIHandler(files fs.FS, data PageData, logger *slog.Logger) (*UIHandler, error) {
	tmpl, err := template.ParseFS(files, "index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse UI template: %w", err)
	}
	return &UIHandler{
		tmpl:   tmpl,
		data:   data,
		logger: logger.With(slog.String("handler", "ui")),
	}, nil
}

// ServeIndex handles GET /
func (h *UIHandler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, h.data); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render page",
			slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}
