package dataprocessing

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/montanaflynn/stats"
)

// FieldName is one of the numeric columns the aggregator understands.
type FieldName string

const (
	FieldAmount   FieldName = "amount"
	FieldPrice    FieldName = "price"
	FieldQuantity FieldName = "quantity"
	FieldTotal    FieldName = "total"
)

// RecognizedFields lists the aggregated fields in their fixed order.
var RecognizedFields = []FieldName{FieldAmount, FieldPrice, FieldQuantity, FieldTotal}

// FieldStatistics summarises the valid numeric values of one field.
type FieldStatistics struct {
	Sum     float64 `json:"sum"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
}

// StatisticsMap holds statistics only for fields that had at least one
// valid value.
type StatisticsMap map[FieldName]FieldStatistics

// MarshalJSON writes recognized fields first, in their fixed order, then any
// other keys sorted by name.
func (m StatisticsMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}

	order := make([]FieldName, 0, len(m))
	known := make(map[FieldName]bool, len(RecognizedFields))
	for _, f := range RecognizedFields {
		known[f] = true
		if _, ok := m[f]; ok {
			order = append(order, f)
		}
	}
	var extra []FieldName
	for f := range m {
		if !known[f] {
			extra = append(extra, f)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	order = append(order, extra...)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(string(f))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m[f])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Aggregate computes statistics for every recognized field across records.
// Values that do not parse as finite numbers are skipped, not counted as
// zero. It never fails; no records gives an empty map.
func Aggregate(records []Record) StatisticsMap {
	result := make(StatisticsMap, len(RecognizedFields))

	for _, field := range RecognizedFields {
		values := collect(records, field)
		if len(values) == 0 {
			continue
		}
		if fs, ok := summarize(values); ok {
			result[field] = fs
		}
	}

	return result
}

func collect(records []Record, field FieldName) stats.Float64Data {
	values := make(stats.Float64Data, 0, len(records))
	for _, r := range records {
		if f, ok := r.Number(string(field)); ok {
			values = append(values, f)
		}
	}
	return values
}

func summarize(values stats.Float64Data) (FieldStatistics, bool) {
	sum, err := stats.Sum(values)
	if err != nil {
		return FieldStatistics{}, false
	}
	minimum, err := stats.Min(values)
	if err != nil {
		return FieldStatistics{}, false
	}
	maximum, err := stats.Max(values)
	if err != nil {
		return FieldStatistics{}, false
	}

	return FieldStatistics{
		Sum:     sum,
		Average: sum / float64(len(values)),
		Min:     minimum,
		Max:     maximum,
		Count:   len(values),
	}, true
}
