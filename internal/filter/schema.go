// Package filter implements the filter state unit used by admin list
// screens. Filters are described by a Schema of typed fields; each field
// kind carries its own empty value, active predicate and query-string
// coercion, so no per-call type inspection of values is needed.
package filter

import (
	"fmt"
	"maps"
	"math"
	"strconv"
	"time"
)

// Pagination keys. They live in the filter values but never count as active
// filters.
const (
	KeyPage  = "page"
	KeyLimit = "limit"
)

// Kind is the scalar kind of a filter field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "other"
	}
}

// Field describes one filter key and its initial value.
type Field struct {
	Key     string
	Kind    Kind
	Initial any
}

// String declares a text filter.
func String(key, initial string) Field {
	return Field{Key: key, Kind: KindString, Initial: initial}
}

// Number declares a numeric filter. Numbers are held as float64.
func Number(key string, initial float64) Field {
	return Field{Key: key, Kind: KindNumber, Initial: initial}
}

// Bool declares a boolean filter.
func Bool(key string, initial bool) Field {
	return Field{Key: key, Kind: KindBool, Initial: initial}
}

// Other declares a filter of any other kind, such as a date or an optional
// value whose initial value is nil.
func Other(key string, initial any) Field {
	return Field{Key: key, Kind: KindOther, Initial: initial}
}

// Empty returns the value Clear resets the field to.
func (f Field) Empty() any {
	switch f.Kind {
	case KindString:
		return ""
	case KindNumber:
		return nil
	case KindBool:
		return false
	default:
		return f.Initial
	}
}

// Active reports whether v counts as an applied filter.
func (f Field) Active(v any) bool {
	switch f.Kind {
	case KindString:
		s, ok := v.(string)
		return ok && s != "" && v != f.Initial
	case KindNumber:
		n, ok := v.(float64)
		return ok && n != 0
	case KindBool:
		b, ok := v.(bool)
		return ok && b != f.Initial
	default:
		return v != nil
	}
}

// Parse coerces a query-string value to the field's kind. Values that do not
// parse report false.
func (f Field) Parse(raw string) (any, bool) {
	switch f.Kind {
	case KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) {
			return nil, false
		}
		return n, true
	case KindBool:
		return raw == "true", true
	default:
		return raw, true
	}
}

// Schema is an ordered set of filter fields.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema. Later fields replace earlier ones with the same
// key.
func NewSchema(fields ...Field) *Schema {
	s := &Schema{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if f.Kind == KindNumber {
			f.Initial = normalize(f.Initial)
		}
		if i, ok := s.index[f.Key]; ok {
			s.fields[i] = f
			continue
		}
		s.index[f.Key] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s
}

// Field returns the field for key.
func (s *Schema) Field(key string) (Field, bool) {
	i, ok := s.index[key]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Initial returns a fresh copy of the initial values.
func (s *Schema) Initial() Values {
	v := make(Values, len(s.fields))
	for _, f := range s.fields {
		v[f.Key] = f.Initial
	}
	return v
}

// fieldFor returns the schema field for key. Undeclared keys behave as Other
// fields with a nil initial value.
func (s *Schema) fieldFor(key string) Field {
	if f, ok := s.Field(key); ok {
		return f
	}
	return Other(key, nil)
}

// Values is a snapshot of filter values keyed by filter name.
type Values map[string]any

// Clone returns a shallow copy.
func (v Values) Clone() Values {
	return maps.Clone(v)
}

// Number returns the numeric value of key.
func (v Values) Number(key string) (float64, bool) {
	n, ok := v[key].(float64)
	return n, ok
}

// Int returns the numeric value of key truncated to int, or def when unset.
// Values outside the int range saturate.
func (v Values) Int(key string, def int) int {
	n, ok := v.Number(key)
	switch {
	case !ok:
		return def
	case n >= math.MaxInt:
		return math.MaxInt
	case n <= math.MinInt:
		return math.MinInt
	default:
		return int(n)
	}
}

// Map returns the values as a plain map for retrieval functions.
func (v Values) Map() map[string]any {
	return maps.Clone(map[string]any(v))
}

// normalize converts Go numeric types to float64 so that comparisons and
// serialization treat every number alike.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// format renders a value for a query string.
func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
