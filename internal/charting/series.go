package charting

import "ledgerlens/internal/dataprocessing"

// FallbackLabel names a data point whose record has no name or category.
const FallbackLabel = "Item"

var (
	labelKeys = []string{"name", "category"}
	valueKeys = []string{"amount", "value", "total"}
)

// DeriveSeries fills in whichever of labels and values the caller left
// empty, guessing from common column names in data. Labels come from name,
// then category, then FallbackLabel. Values come from the first of amount,
// value and total that parses as a number, else 0.
//
// Supplied slices are returned unchanged. When only one side is derived it is
// sized to the other's length so a point never lacks a label.
func DeriveSeries(data []dataprocessing.Record, labels []string, values []float64) ([]string, []float64) {
	if len(values) == 0 {
		values = make([]float64, len(data))
		for i, r := range data {
			values[i] = recordValue(r)
		}
	}

	if len(labels) == 0 {
		labels = make([]string, len(values))
		for i := range labels {
			if i < len(data) {
				labels[i] = recordLabel(data[i])
			} else {
				labels[i] = FallbackLabel
			}
		}
	}

	return labels, values
}

func recordLabel(r dataprocessing.Record) string {
	for _, key := range labelKeys {
		if s := r.String(key); s != "" {
			return s
		}
	}
	return FallbackLabel
}

func recordValue(r dataprocessing.Record) float64 {
	for _, key := range valueKeys {
		if f, ok := r.Number(key); ok {
			return f
		}
	}
	return 0
}
