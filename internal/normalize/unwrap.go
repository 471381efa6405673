package normalize

import "sort"

// listKeys are the envelope fields the backend has been seen to wrap
// collections in, in lookup order.
var listKeys = []string{"data", "content", "turns", "users", "doctors", "items", "results", "rows", "list"}

// Unwrap finds the list of records inside a decoded JSON response. It never
// fails: an unknown object becomes a one-element list and anything that is
// neither an array nor an object becomes an empty list.
func Unwrap(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		for _, key := range listKeys {
			if items, ok := t[key].([]any); ok {
				return items
			}
		}
		keys := make([]string, 0, len(t))
		for key := range t {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if items, ok := t[key].([]any); ok {
				return items
			}
		}
		return []any{t}
	default:
		return []any{}
	}
}

// First returns the first record of a response, or nil. A single object
// wrapped in "data" is unwrapped first.
func First(v any) any {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["data"].(map[string]any); ok {
			return First(inner)
		}
	}
	items := Unwrap(v)
	if len(items) == 0 {
		return nil
	}
	return items[0]
}
