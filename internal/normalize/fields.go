package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// record is one decoded JSON object. Lookups take an ordered list of keys
// and return the first one present; a dotted key ("service.name") descends
// into a nested object.
type record map[string]any

func asRecord(raw any) record {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	return record(m)
}

func (r record) value(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	head, rest, nested := strings.Cut(key, ".")
	v, ok := r[head]
	if !ok || v == nil {
		return nil, false
	}
	if !nested {
		return v, true
	}
	return asRecord(v).value(rest)
}

// str returns the first value that renders to a non-blank string.
func (r record) str(keys ...string) string {
	for _, key := range keys {
		v, ok := r.value(key)
		if !ok {
			continue
		}
		if s := strings.TrimSpace(stringify(v)); s != "" {
			return s
		}
	}
	return ""
}

// int returns the first key that holds an integral number (or a string that
// parses as one).
func (r record) int(keys ...string) (int64, bool) {
	for _, key := range keys {
		v, ok := r.value(key)
		if !ok {
			continue
		}
		if n, ok := toInt64(v); ok {
			return n, true
		}
	}
	return 0, false
}

func (r record) intPtr(keys ...string) *int64 {
	n, ok := r.int(keys...)
	if !ok {
		return nil
	}
	return &n
}

// digits is like int but strips every non-digit character first, so
// "(044) 555-1234" parses.
func (r record) digits(keys ...string) string {
	for _, key := range keys {
		v, ok := r.value(key)
		if !ok {
			continue
		}
		if d := digitsOnly(stringify(v)); d != "" {
			return d
		}
	}
	return ""
}

func (r record) list(keys ...string) []any {
	for _, key := range keys {
		v, ok := r.value(key)
		if !ok {
			continue
		}
		if items, ok := v.([]any); ok {
			return items
		}
	}
	return nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return wholeNumber(t)
	case int:
		return int64(t), true
	case int64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return wholeNumber(f)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return wholeNumber(f)
	default:
		return 0, false
	}
}

func wholeNumber(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
