package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerlens/internal/config"
	dp "ledgerlens/internal/dataprocessing"
	"ledgerlens/internal/exporter"
)

func newTestReceiptService(t *testing.T) *ReceiptService {
	t.Helper()
	logger := discardLogger()
	svc := NewReceiptService(
		exporter.NewReceiptWriter(config.Default().Receipt, logger),
		exporter.NewCSVWriter(logger),
		testMetrics(t),
		logger,
	)
	svc.now = func() time.Time { return time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestReceiptService_Generate(t *testing.T) {
	svc := newTestReceiptService(t)
	records := chartRecords()

	tests := []struct {
		name  string
		input ReceiptInput
	}{
		{
			name: "with calculations",
			input: ReceiptInput{
				Data:         records,
				Calculations: dp.Aggregate(records),
				Company:      exporter.CompanyInfo{Name: "Acme Ltd"},
			},
		},
		{
			name:  "calculations derived from data",
			input: ReceiptInput{Data: records},
		},
		{
			name:  "no data",
			input: ReceiptInput{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdf, err := svc.Generate(context.Background(), tt.input)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
		})
	}
}

func TestReceiptService_GenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestReceiptService(t).Generate(ctx, ReceiptInput{Data: chartRecords()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReceiptService_ExportCSV(t *testing.T) {
	svc := newTestReceiptService(t)

	data, err := svc.ExportCSV(context.Background(), chartRecords(), nil)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	assert.Equal(t, "name,amount,category,total\nWidget,10,,\n,,Tools,25\n", string(data[3:]))

	data, err = svc.ExportCSV(context.Background(), chartRecords(), []string{"name", "total"})
	require.NoError(t, err)
	assert.Equal(t, "name,total\nWidget,\n,25\n", string(data[3:]))
}
