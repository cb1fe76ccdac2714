package exporter

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerlens/internal/config"
	"ledgerlens/internal/dataprocessing"
)

func testReceiptWriter(maxRows int) *ReceiptWriter {
	cfg := config.Default().Receipt
	cfg.MaxRows = maxRows
	return NewReceiptWriter(cfg, nil)
}

func manyRecords(n int) []dataprocessing.Record {
	records := make([]dataprocessing.Record, n)
	for i := range records {
		records[i] = dataprocessing.NewRecord(
			dataprocessing.Cell{Column: "name", Value: dataprocessing.Text("Item")},
			dataprocessing.Cell{Column: "amount", Value: dataprocessing.Number(float64(i) * 1.5)},
		)
	}
	return records
}

func TestReceiptWriter_Write(t *testing.T) {
	records := sampleRecords()

	tests := []struct {
		name    string
		receipt Receipt
	}{
		{
			name: "full receipt",
			receipt: Receipt{
				Number:       "RCP-TEST",
				IssuedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
				Company:      CompanyInfo{Name: "Acme Ltd", Address: "1 Main Road", Phone: "555-0100"},
				Records:      records,
				Calculations: dataprocessing.Aggregate(records),
			},
		},
		{
			name:    "defaults only",
			receipt: Receipt{},
		},
		{
			name: "rows beyond limit and page breaks",
			receipt: Receipt{
				Records:      manyRecords(120),
				Calculations: dataprocessing.Aggregate(manyRecords(120)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testReceiptWriter(60)
			data, err := w.Write(context.Background(), tt.receipt)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output is not a PDF")
		})
	}
}

func TestReceiptWriter_CompanyDefaults(t *testing.T) {
	w := testReceiptWriter(25)

	got := w.withDefaults(CompanyInfo{Name: "  ", Phone: "123"})
	assert.Equal(t, "Your Company", got.Name)
	assert.Equal(t, "123 Business St", got.Address)
	assert.Equal(t, "123", got.Phone)
}

func TestReceiptWriter_MaxRowsDefault(t *testing.T) {
	w := NewReceiptWriter(config.ReceiptConfig{}, nil)
	assert.Equal(t, config.DefaultReceiptRows, w.maxRows)
}

func TestReceiptWriter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testReceiptWriter(25).Write(ctx, Receipt{Records: sampleRecords()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewReceiptNumber(t *testing.T) {
	a := NewReceiptNumber()
	b := NewReceiptNumber()

	assert.True(t, strings.HasPrefix(a, "RCP-"))
	assert.Len(t, a, len("RCP-")+10)
	assert.NotEqual(t, a, b)
}

func TestFieldTitle(t *testing.T) {
	assert.Equal(t, "Amount", fieldTitle(dataprocessing.FieldAmount))
	assert.Equal(t, "Quantity", fieldTitle(dataprocessing.FieldQuantity))
}
