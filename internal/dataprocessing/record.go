package dataprocessing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ValueKind tells whether a cell held text or a number.
type ValueKind int

const (
	KindText ValueKind = iota
	KindNumber
)

// Value is a single non-empty cell value. Numbers keep their float64 form and
// text keeps the original characters; neither is coerced at ingestion.
type Value struct {
	kind ValueKind
	text string
	num  float64
}

// Text returns a text Value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Kind reports the value's kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsNumber reports whether the cell held a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// String renders the value the way it would appear in a text cell.
func (v Value) String() string {
	if v.kind == KindNumber {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.text
}

// Float returns the value as a finite float64. Text is trimmed and may group
// thousands with ','. Empty, non-numeric, NaN and infinite values
// report false; there is no zero fallback.
func (v Value) Float() (float64, bool) {
	if v.kind == KindNumber {
		return finite(v.num)
	}
	return ParseNumber(v.text)
}

// thousandsGrouped matches a number whose integer part is grouped in threes,
// e.g. "1,234" or "-12,345,678.90".
var thousandsGrouped = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// ParseNumber applies the numeric coercion rule used by the aggregator to a
// raw string. Commas are accepted only as thousands separators, so "1,5" and
// ",,7" are not numbers.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if thousandsGrouped.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// MarshalJSON encodes numbers as JSON numbers and text as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber {
		if _, ok := finite(v.num); !ok {
			return json.Marshal(v.String())
		}
		return []byte(strconv.FormatFloat(v.num, 'g', -1, 64)), nil
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON accepts any JSON scalar. Booleans become text; objects and
// arrays are kept as their raw JSON text.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Text(strconv.FormatBool(b))
	case '{', '[', 'n':
		*v = Text(string(data))
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid JSON number %q: %w", data, err)
		}
		*v = Number(f)
	}
	return nil
}

// Cell pairs a column name with a value when building a Record.
type Cell struct {
	Column string
	Value  Value
}

// Record is one worksheet row keyed by column name. Keys keep the header
// order. Records are not modified after construction.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord builds a Record from cells in column order. A repeated column
// keeps its first position and its last value.
func NewRecord(cells ...Cell) Record {
	r := Record{
		keys:   make([]string, 0, len(cells)),
		values: make(map[string]Value, len(cells)),
	}
	for _, c := range cells {
		r.set(c.Column, c.Value)
	}
	return r
}

func (r *Record) set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value stored under key.
func (r Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the record's column names in header order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of non-empty cells in the record.
func (r Record) Len() int { return len(r.keys) }

// Number returns the value under key as a finite float64.
func (r Record) Number(key string) (float64, bool) {
	v, ok := r.values[key]
	if !ok {
		return 0, false
	}
	return v.Float()
}

// String returns the value under key as text, or "" when absent.
func (r Record) String(key string) string {
	if v, ok := r.values[key]; ok {
		return v.String()
	}
	return ""
}

// Amount returns the record's amount field as a number.
func (r Record) Amount() (float64, bool) { return r.Number(string(FieldAmount)) }

// Price returns the record's price field as a number.
func (r Record) Price() (float64, bool) { return r.Number(string(FieldPrice)) }

// Quantity returns the record's quantity field as a number.
func (r Record) Quantity() (float64, bool) { return r.Number(string(FieldQuantity)) }

// Total returns the record's total field as a number.
func (r Record) Total() (float64, bool) { return r.Number(string(FieldTotal)) }

// MarshalJSON writes the record as a JSON object in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := r.values[key].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving member order. Null members
// are treated as empty cells and dropped.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	*r = Record{values: make(map[string]Value)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected record key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if string(bytes.TrimSpace(raw)) == "null" {
			continue
		}

		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("record field %q: %w", key, err)
		}
		r.set(key, v)
	}

	_, err = dec.Token()
	return err
}
