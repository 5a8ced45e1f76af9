package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Kind identifies the declared type of a column.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
	KindDate
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// dateLayouts are the accepted input layouts for date cells, tried in order.
// The canonical output form is always DateLayout.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
}

// DateLayout is the canonical date format used in cleaned extracts and the warehouse.
const DateLayout = "2006-01-02"

// nullTokens are raw cell spellings treated as null on ingestion.
var nullTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "null": {}, "none": {}, "nan": {},
}

// Value is a nullable typed scalar held in a dataset cell.
type Value struct {
	kind     Kind
	null     bool
	intVal   int64
	floatVal float64
	strVal   string
	dateVal  time.Time
}

// Null returns a null value. A null carries no kind and is assignable to any column.
func Null() Value {
	return Value{null: true}
}

// Int returns an integer value.
func Int(v int64) Value {
	return Value{kind: KindInt, intVal: v}
}

// Float returns a real value.
func Float(v float64) Value {
	return Value{kind: KindFloat, floatVal: v}
}

// String returns a string value.
func String(v string) Value {
	return Value{kind: KindString, strVal: v}
}

// Date returns a date value truncated to UTC midnight.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, dateVal: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.null }

// Kind returns the kind of a non-null value. The kind of a null is undefined.
func (v Value) Kind() Kind { return v.kind }

// Int64 returns the integer content. Zero for nulls and other kinds.
func (v Value) Int64() int64 { return v.intVal }

// Float64 returns the numeric content, widening integers. Zero for nulls
// and non-numeric kinds.
func (v Value) Float64() float64 {
	if v.kind == KindInt {
		return float64(v.intVal)
	}
	return v.floatVal
}

// Str returns the string content. Empty for nulls and other kinds.
func (v Value) Str() string { return v.strVal }

// Time returns the date content. Zero for nulls and other kinds.
func (v Value) Time() time.Time { return v.dateVal }

// Equal reports whether two values are identical in kind, nullness and content.
func (v Value) Equal(o Value) bool {
	if v.null || o.null {
		return v.null == o.null
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.intVal == o.intVal
	case KindFloat:
		return v.floatVal == o.floatVal
	case KindString:
		return v.strVal == o.strVal
	case KindDate:
		return v.dateVal.Equal(o.dateVal)
	}
	return false
}

// Format renders the value in its canonical textual form for tabular output.
// Nulls render as the empty string.
func (v Value) Format() string {
	if v.null {
		return ""
	}
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("%d", v.intVal)
	case KindFloat:
		return fmt.Sprintf("%g", v.floatVal)
	case KindString:
		return v.strVal
	case KindDate:
		return v.dateVal.Format(DateLayout)
	}
	return ""
}

// key renders a value for duplicate detection. Distinct from Format so that
// an empty string and a null never collide.
func (v Value) key() string {
	if v.null {
		return "\x00null"
	}
	return fmt.Sprintf("%d:%s", v.kind, v.Format())
}

// Coerce converts a raw textual cell into a typed value for the given kind.
// Recognized null spellings become Null without error. A non-null cell that
// cannot be converted returns an error; callers decide whether to absorb it.
func Coerce(raw string, kind Kind) (Value, error) {
	trimmed := strings.TrimSpace(raw)
	if _, ok := nullTokens[strings.ToLower(trimmed)]; ok {
		return Null(), nil
	}

	switch kind {
	case KindInt:
		n, err := cast.ToInt64E(trimmed)
		if err != nil {
			return Null(), fmt.Errorf("cannot convert %q to int: %w", raw, err)
		}
		return Int(n), nil
	case KindFloat:
		f, err := cast.ToFloat64E(trimmed)
		if err != nil {
			return Null(), fmt.Errorf("cannot convert %q to float: %w", raw, err)
		}
		return Float(f), nil
	case KindDate:
		t, err := ParseDate(trimmed)
		if err != nil {
			return Null(), err
		}
		return Date(t), nil
	default:
		return String(trimmed), nil
	}
}

// ParseDate parses a date-like string against the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date", s)
}
