package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"ledgerlens/internal/charting"
	"ledgerlens/internal/config"
	"ledgerlens/internal/dataprocessing"
	apperrors "ledgerlens/internal/errors"
	"ledgerlens/internal/infrastructure"
)

// ChartInput describes a chart request. Labels and Values are derived from
// Data when empty.
type ChartInput struct {
	Data   []dataprocessing.Record
	Type   string
	Labels []string
	Values []float64
	Title  string
}

// ChartService renders chart images from record data
type ChartService struct {
	renderer    func() *charting.Renderer
	defaultType string
	metrics     *infrastructure.BusinessMetrics
	logger      *slog.Logger
}

// NewChartService creates a chart service. The renderer is created on the
// first request; the default canvas size uses the shared renderer.
func NewChartService(cfg config.ChartConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ChartService {
	if logger == nil {
		logger = slog.Default()
	}

	renderer := charting.Default
	if (cfg.Width > 0 && cfg.Width != config.DefaultChartWidth) ||
		(cfg.Height > 0 && cfg.Height != config.DefaultChartHeight) {
		width, height := cfg.Width, cfg.Height
		renderer = sync.OnceValue(func() *charting.Renderer {
			return charting.New(width, height)
		})
	}

	defaultType := strings.TrimSpace(cfg.DefaultType)
	if defaultType == "" {
		defaultType = string(charting.TypeBar)
	}

	return &ChartService{
		renderer:    renderer,
		defaultType: defaultType,
		metrics:     metrics,
		logger:      logger.With(slog.String("service", "chart")),
	}
}

// Render derives the series and draws it as a PNG. An empty series returns
// ErrEmptySeries; renderer failures, including an unknown chart type, return
// a RENDERING AppError.
func (s *ChartService) Render(ctx context.Context, in ChartInput) (png []byte, err error) {
	start := time.Now()
	chartType := in.Type
	if chartType == "" {
		chartType = s.defaultType
	}

	ctx, span := startSpan(ctx, "chart.render",
		attribute.String("chart.type", chartType),
		attribute.Int("chart.records", len(in.Data)))
	defer func() { endSpan(span, err) }()

	spec, ok := chartSpec(in, chartType)
	if !ok {
		return nil, ErrEmptySeries
	}

	png, err = s.renderer().Render(ctx, spec)
	s.metrics.RecordChart(ctx, chartType, time.Since(start), err)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Chart render failed",
			slog.String("chart_type", chartType),
			slog.Int("points", len(spec.Values)),
			slog.String("error", err.Error()))
		return nil, apperrors.NewRenderingError("failed to render chart", err).
			WithContext("chart_type", chartType)
	}

	s.logger.DebugContext(ctx, "Chart rendered",
		slog.String("chart_type", chartType),
		slog.Int("points", len(spec.Values)),
		slog.Int("bytes", len(png)),
		slog.Duration("duration", time.Since(start)))
	return png, nil
}

// chartSpec derives the series for in. The title doubles as the series
// label; the renderer falls back to its defaults for both.
func chartSpec(in ChartInput, chartType string) (charting.Spec, bool) {
	labels, values := charting.DeriveSeries(in.Data, in.Labels, in.Values)
	if len(values) == 0 {
		return charting.Spec{}, false
	}
	return charting.Spec{
		Type:   charting.ChartType(chartType),
		Title:  in.Title,
		Label:  in.Title,
		Labels: labels,
		Values: values,
	}, true
}
