package charting

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"ledgerlens/internal/config"
)

// ChartType selects how a series is drawn.
type ChartType string

const (
	TypeBar      ChartType = "bar"
	TypeLine     ChartType = "line"
	TypePie      ChartType = "pie"
	TypeDoughnut ChartType = "doughnut"
)

const (
	DefaultTitle = "Chart"
	DefaultLabel = "Values"

	fillAlpha = 51 // 0.2 opacity
)

var (
	ErrUnsupportedType = errors.New("unsupported chart type")
	ErrEmptySeries     = errors.New("chart series is empty")
	ErrNoPositiveValue = errors.New("pie charts need at least one positive value")
)

// palette is cycled across bars, slices and lines.
var palette = []drawing.Color{
	{R: 255, G: 99, B: 132, A: 255},
	{R: 54, G: 162, B: 235, A: 255},
	{R: 255, G: 205, B: 86, A: 255},
	{R: 75, G: 192, B: 192, A: 255},
	{R: 153, G: 102, B: 255, A: 255},
	{R: 255, G: 159, B: 64, A: 255},
}

// Spec describes one chart to render.
type Spec struct {
	Type   ChartType
	Title  string
	Label  string
	Labels []string
	Values []float64
}

// Renderer draws PNG charts on a fixed-size canvas. It holds no mutable
// state and is safe for concurrent use.
type Renderer struct {
	width  int
	height int
}

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
)

// Default returns the process-wide renderer, creating it on first use.
func Default() *Renderer {
	defaultOnce.Do(func() {
		defaultRenderer = New(config.DefaultChartWidth, config.DefaultChartHeight)
	})
	return defaultRenderer
}

// New creates a renderer for the given canvas size.
func New(width, height int) *Renderer {
	if width <= 0 {
		width = config.DefaultChartWidth
	}
	if height <= 0 {
		height = config.DefaultChartHeight
	}
	return &Renderer{width: width, height: height}
}

// Size returns the canvas dimensions in pixels.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Render draws spec and returns PNG bytes.
func (r *Renderer) Render(ctx context.Context, spec Spec) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(spec.Values) == 0 {
		return nil, ErrEmptySeries
	}
	if spec.Title == "" {
		spec.Title = DefaultTitle
	}
	if spec.Label == "" {
		spec.Label = DefaultLabel
	}

	var buf bytes.Buffer
	var err error
	switch spec.Type {
	case TypeBar, "":
		err = r.bar(spec).Render(chart.PNG, &buf)
	case TypeLine:
		err = r.line(spec).Render(chart.PNG, &buf)
	case TypePie:
		var pie chart.PieChart
		if pie, err = r.pie(spec); err == nil {
			err = pie.Render(chart.PNG, &buf)
		}
	case TypeDoughnut:
		var donut chart.DonutChart
		if donut, err = r.donut(spec); err == nil {
			err = donut.Render(chart.PNG, &buf)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, spec.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s chart: %w", typeName(spec.Type), err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) bar(spec Spec) chart.BarChart {
	n := len(spec.Values)
	bars := make([]chart.Value, n)
	for i, v := range spec.Values {
		c := palette[i%len(palette)]
		bars[i] = chart.Value{
			Label: labelAt(spec.Labels, i),
			Value: v,
			Style: chart.Style{
				FillColor:   c.WithAlpha(fillAlpha),
				StrokeColor: c,
				StrokeWidth: 1,
			},
		}
	}

	// Leave room for the y axis labels and canvas padding.
	slot := (r.width - 120) / n
	if slot < 2 {
		slot = 2
	}
	barWidth := slot * 2 / 3
	if barWidth < 1 {
		barWidth = 1
	}
	spacing := slot - barWidth
	if spacing < 1 {
		spacing = 1
	}

	return chart.BarChart{
		Title:        spec.Title,
		Width:        r.width,
		Height:       r.height,
		BarWidth:     barWidth,
		BarSpacing:   spacing,
		UseBaseValue: true,
		BaseValue:    0,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		YAxis: chart.YAxis{Range: valueRange(spec.Values)},
		Bars:  bars,
	}
}

func (r *Renderer) line(spec Spec) chart.Chart {
	n := len(spec.Values)
	xs := make([]float64, n)
	ticks := make([]chart.Tick, n)
	for i := range spec.Values {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: labelAt(spec.Labels, i)}
	}

	// The x range comes from the ticks and must not be empty.
	maxX := float64(n - 1)
	if n == 1 {
		maxX = 1
		ticks = append(ticks, chart.Tick{Value: maxX})
	}

	c := palette[0]
	graph := chart.Chart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxX},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{Range: valueRange(spec.Values)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.Label,
				XValues: xs,
				YValues: spec.Values,
				Style: chart.Style{
					StrokeColor: c,
					StrokeWidth: 2,
					FillColor:   c.WithAlpha(fillAlpha),
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

func (r *Renderer) pie(spec Spec) (chart.PieChart, error) {
	slices, err := sliceValues(spec)
	if err != nil {
		return chart.PieChart{}, err
	}
	return chart.PieChart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		Values: slices,
	}, nil
}

func (r *Renderer) donut(spec Spec) (chart.DonutChart, error) {
	slices, err := sliceValues(spec)
	if err != nil {
		return chart.DonutChart{}, err
	}
	return chart.DonutChart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		Values: slices,
	}, nil
}

// sliceValues keeps the positive values; a slice cannot show zero or a
// negative share.
func sliceValues(spec Spec) ([]chart.Value, error) {
	slices := make([]chart.Value, 0, len(spec.Values))
	for i, v := range spec.Values {
		if !(v > 0) || math.IsInf(v, 0) {
			continue
		}
		slices = append(slices, chart.Value{
			Label: labelAt(spec.Labels, i),
			Value: v,
			Style: chart.Style{
				FillColor:   palette[i%len(palette)],
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}
	if len(slices) == 0 {
		return nil, ErrNoPositiveValue
	}
	return slices, nil
}

// valueRange always includes zero and never collapses to an empty range.
func valueRange(values []float64) *chart.ContinuousRange {
	lo, hi := 0.0, 1.0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return ""
}

func typeName(t ChartType) string {
	if t == "" {
		return string(TypeBar)
	}
	return string(t)
}
