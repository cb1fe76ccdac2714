package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestInitializeOTel_Prometheus(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "ledgerlens-test",
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
	}, testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.PrometheusHTTP)
	require.NotNil(t, providers.Meter)
	require.NotNil(t, providers.Tracer)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordUpload(context.Background(), 2048, 3, 10*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "records_parsed_total")
}

func TestInitializeOTel_Twice(t *testing.T) {
	cfg := &OTelConfig{ServiceName: "x", MetricExporter: "prometheus", TraceExporter: "none"}

	first, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)
	defer first.Shutdown(context.Background())

	second, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)
	defer second.Shutdown(context.Background())
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{TraceExporter: "none", MetricExporter: "none"}, testLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)

	_, err = CreateBusinessMetrics(providers.Meter)
	assert.NoError(t, err)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_StdoutTracing(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{TraceExporter: "stdout", MetricExporter: "none", SampleRatio: 1}, testLogger())
	require.NoError(t, err)
	assert.NotNil(t, providers.TracerProvider)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{TraceExporter: "jaeger"}, testLogger())
	assert.Error(t, err)

	_, err = InitializeOTel(&OTelConfig{TraceExporter: "none", MetricExporter: "statsd"}, testLogger())
	assert.Error(t, err)
}

func TestBusinessMetrics_NilSafe(t *testing.T) {
	var m *BusinessMetrics
	assert.NotPanics(t, func() {
		m.RecordUpload(context.Background(), 1, 1, time.Millisecond, nil)
		m.RecordChart(context.Background(), "bar", time.Millisecond, nil)
		m.RecordReceipt(context.Background(), time.Millisecond, nil)
	})
}
