package charting

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderer_Render(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{name: "default type is bar", spec: Spec{Labels: []string{"a", "b"}, Values: []float64{10, 20}}},
		{name: "bar", spec: Spec{Type: TypeBar, Title: "Sales", Labels: []string{"a", "b", "c"}, Values: []float64{1, 2, 3}}},
		{name: "bar with negatives", spec: Spec{Type: TypeBar, Labels: []string{"a", "b"}, Values: []float64{-5, 0}}},
		{name: "bar all zero", spec: Spec{Type: TypeBar, Labels: []string{"a", "b"}, Values: []float64{0, 0}}},
		{name: "bar without labels", spec: Spec{Type: TypeBar, Values: []float64{4, 2}}},
		{name: "many bars", spec: Spec{Type: TypeBar, Values: make40()}},
		{name: "line", spec: Spec{Type: TypeLine, Labels: []string{"jan", "feb", "mar"}, Values: []float64{3, 1, 2}}},
		{name: "line single point", spec: Spec{Type: TypeLine, Labels: []string{"only"}, Values: []float64{7}}},
		{name: "pie", spec: Spec{Type: TypePie, Labels: []string{"a", "b"}, Values: []float64{30, 70}}},
		{name: "pie skips non-positive slices", spec: Spec{Type: TypePie, Labels: []string{"a", "b", "c"}, Values: []float64{0, -3, 5}}},
		{name: "doughnut", spec: Spec{Type: TypeDoughnut, Labels: []string{"a", "b"}, Values: []float64{1, 1}}},
	}

	r := New(800, 400)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := r.Render(context.Background(), tt.spec)
			require.NoError(t, err)
			require.True(t, bytes.HasPrefix(data, pngMagic), "output is not a PNG")

			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, 800, cfg.Width)
			assert.Equal(t, 400, cfg.Height)
		})
	}
}

func make40() []float64 {
	values := make([]float64, 40)
	for i := range values {
		values[i] = float64(i * 3)
	}
	return values
}

func TestRenderer_RenderErrors(t *testing.T) {
	r := New(800, 400)

	tests := []struct {
		name    string
		spec    Spec
		wantErr error
	}{
		{name: "unsupported type", spec: Spec{Type: "radar", Values: []float64{1}}, wantErr: ErrUnsupportedType},
		{name: "empty series", spec: Spec{Type: TypeBar}, wantErr: ErrEmptySeries},
		{name: "pie without positive values", spec: Spec{Type: TypePie, Values: []float64{0, -1}}, wantErr: ErrNoPositiveValue},
		{name: "doughnut without positive values", spec: Spec{Type: TypeDoughnut, Values: []float64{0}}, wantErr: ErrNoPositiveValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := r.Render(context.Background(), tt.spec)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, data)
		})
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(0, 0).Render(ctx, Spec{Values: []float64{1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefault(t *testing.T) {
	a := Default()
	b := Default()
	assert.Same(t, a, b)

	w, h := a.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 400, h)
}

func TestNew_FallsBackToDefaultSize(t *testing.T) {
	w, h := New(-1, 0).Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 400, h)

	w, h = New(640, 320).Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 320, h)
}

func TestValueRange(t *testing.T) {
	r := valueRange([]float64{0, 0})
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 1.0, r.Max)

	r = valueRange([]float64{-4, 12})
	assert.Equal(t, -4.0, r.Min)
	assert.Equal(t, 12.0, r.Max)

	r = valueRange([]float64{5, 9})
	assert.Equal(t, 0.0, r.Min, "axis starts at zero")
}

func TestRenderer_LineSeriesName(t *testing.T) {
	graph := New(800, 400).line(Spec{Type: TypeLine, Label: "Revenue", Values: []float64{1, 2}})
	require.Len(t, graph.Series, 1)
	assert.Equal(t, "Revenue", graph.Series[0].GetName())
}
