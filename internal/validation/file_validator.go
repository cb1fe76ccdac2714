package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"ledgerlens/internal/config"
	apperrors "ledgerlens/internal/errors"
)

var (
	ErrMissingFileName      = errors.New("file name is required")
	ErrEmptyFile            = errors.New("file is empty")
	ErrFileTooLarge         = errors.New("file exceeds the size limit")
	ErrUnsupportedExtension = errors.New("file type is not supported")
	ErrTemporaryFile        = errors.New("file is a temporary Excel file")
)

// FileValidator checks uploaded files before they are parsed
type FileValidator struct {
	maxSize    int64
	extensions map[string]bool
	logger     *slog.Logger
}

// NewFileValidator creates a validator enforcing the limits in cfg
func NewFileValidator(cfg config.UploadConfig, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	exts := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		exts[normalizeExtension(ext)] = true
	}
	return &FileValidator{
		maxSize:    cfg.MaxFileSize,
		extensions: exts,
		logger:     logger.With(slog.String("component", "file_validator")),
	}
}

// MaxSize returns the largest accepted upload in bytes; 0 means unlimited.
func (v *FileValidator) MaxSize() int64 { return v.maxSize }

// ValidateUpload checks the name and size reported for an uploaded file.
// Content is not inspected; a file with an accepted name may still fail to
// parse. An empty file, an Office lock file or an unsupported extension cannot
// be a readable workbook and is reported as a PARSING AppError wrapping the
// matching sentinel. Only an oversized upload is a plain error.
func (v *FileValidator) ValidateUpload(name string, size int64) error {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if strings.TrimSpace(name) == "" || base == "." || base == "/" {
		v.logger.Warn("Upload has no file name")
		return ErrMissingFileName
	}

	if size == 0 {
		v.logger.Warn("Upload is empty",
			slog.String("file", base))
		return unreadable(fmt.Errorf("%w: %s", ErrEmptyFile, base))
	}

	if v.maxSize > 0 && size > v.maxSize {
		v.logger.Warn("Upload exceeds size limit",
			slog.String("file", base),
			slog.Int64("size", size),
			slog.Int64("max_size", v.maxSize))
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, size, v.maxSize)
	}

	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary Excel file",
			slog.String("file", base))
		return unreadable(fmt.Errorf("%w: %s", ErrTemporaryFile, base))
	}

	if err := v.ValidateExtension(base); err != nil {
		return unreadable(err)
	}

	v.logger.Debug("Upload validated",
		slog.String("file", base),
		slog.Int64("size", size))
	return nil
}

// ValidateExtension checks that name ends in an accepted spreadsheet
// extension. An empty allow list accepts everything.
func (v *FileValidator) ValidateExtension(name string) error {
	if len(v.extensions) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !v.extensions[ext] {
		v.logger.Warn("File is not a supported spreadsheet",
			slog.String("file", name),
			slog.String("extension", ext))
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
	return nil
}

// AllowedExtensions lists the accepted extensions for error messages.
func (v *FileValidator) AllowedExtensions() []string {
	exts := make([]string, 0, len(v.extensions))
	for ext := range v.extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func unreadable(cause error) error {
	return apperrors.NewParsingError("upload is not a readable workbook", cause)
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
