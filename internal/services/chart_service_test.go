package services

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerlens/internal/charting"
	"ledgerlens/internal/config"
	dp "ledgerlens/internal/dataprocessing"
	apperrors "ledgerlens/internal/errors"
)

func chartRecords() []dp.Record {
	return []dp.Record{
		dp.NewRecord(dp.Cell{Column: "name", Value: dp.Text("Widget")}, dp.Cell{Column: "amount", Value: dp.Number(10)}),
		dp.NewRecord(dp.Cell{Column: "category", Value: dp.Text("Tools")}, dp.Cell{Column: "total", Value: dp.Text("25")}),
	}
}

func TestChartService_Render(t *testing.T) {
	svc := NewChartService(config.Default().Chart, testMetrics(t), discardLogger())

	tests := []struct {
		name  string
		input ChartInput
	}{
		{name: "derived series default type", input: ChartInput{Data: chartRecords(), Title: "Financial Data Visualization"}},
		{name: "pie", input: ChartInput{Data: chartRecords(), Type: "pie"}},
		{name: "line", input: ChartInput{Data: chartRecords(), Type: "line"}},
		{name: "explicit series", input: ChartInput{Type: "bar", Labels: []string{"q1", "q2"}, Values: []float64{3, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := svc.Render(context.Background(), tt.input)
			require.NoError(t, err)

			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, config.DefaultChartWidth, cfg.Width)
			assert.Equal(t, config.DefaultChartHeight, cfg.Height)
		})
	}
}

func TestChartService_RenderErrors(t *testing.T) {
	svc := NewChartService(config.Default().Chart, nil, discardLogger())

	t.Run("empty series", func(t *testing.T) {
		_, err := svc.Render(context.Background(), ChartInput{Type: "bar"})
		assert.ErrorIs(t, err, ErrEmptySeries)
	})

	t.Run("unsupported type is a rendering error", func(t *testing.T) {
		_, err := svc.Render(context.Background(), ChartInput{Data: chartRecords(), Type: "radar"})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRendering))
		assert.ErrorIs(t, err, charting.ErrUnsupportedType)
	})

	t.Run("cancelled context passes through", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := svc.Render(ctx, ChartInput{Data: chartRecords()})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, apperrors.IsType(err, apperrors.ErrTypeRendering))
	})
}

func TestChartService_CustomSize(t *testing.T) {
	svc := NewChartService(config.ChartConfig{Width: 320, Height: 200, DefaultType: "line"}, nil, nil)
	assert.Equal(t, "line", svc.defaultType)
	assert.NotSame(t, charting.Default(), svc.renderer())
	assert.Same(t, svc.renderer(), svc.renderer())

	data, err := svc.Render(context.Background(), ChartInput{Values: []float64{1, 2, 3}})
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestChartService_DefaultSizeUsesSharedRenderer(t *testing.T) {
	svc := NewChartService(config.ChartConfig{}, nil, nil)
	assert.Same(t, charting.Default(), svc.renderer())
	assert.Equal(t, "bar", svc.defaultType)
}

func TestChartSpec_LabelFollowsTitle(t *testing.T) {
	spec, ok := chartSpec(ChartInput{Data: chartRecords(), Title: "Quarterly Sales"}, "line")
	require.True(t, ok)
	assert.Equal(t, "Quarterly Sales", spec.Title)
	assert.Equal(t, "Quarterly Sales", spec.Label)
	assert.Equal(t, []float64{10, 25}, spec.Values)

	untitled, ok := chartSpec(ChartInput{Data: chartRecords()}, "line")
	require.True(t, ok)
	assert.Empty(t, untitled.Label, "renderer supplies the default label")

	_, ok = chartSpec(ChartInput{}, "bar")
	assert.False(t, ok)
}
