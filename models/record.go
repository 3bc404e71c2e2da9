package models

import (
	"errors"
	"fmt"
)

// Record is the flat field-to-value mapping persisted for every entity kind.
type Record = map[string]any

var ErrUnknownVariant = errors.New("unknown record variant")

// intField reads a numeric record field. JSON decoding yields float64 for
// numbers, while freshly flattened records carry native ints, so both are
// accepted.
func intField(rec Record, key string) (int, bool) {
	switch v := rec[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func stringField(rec Record, key string) string {
	s, _ := rec[key].(string)
	return s
}

func boolField(rec Record, key string) bool {
	b, _ := rec[key].(bool)
	return b
}

func intSliceField(rec Record, key string) []int {
	switch v := rec[key].(type) {
	case []int:
		out := make([]int, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]int, 0, len(v))
		for _, e := range v {
			switch n := e.(type) {
			case int:
				out = append(out, n)
			case int64:
				out = append(out, int(n))
			case float64:
				out = append(out, int(n))
			}
		}
		return out
	default:
		return nil
	}
}

func unknownVariant(field, tag string) error {
	if tag == "" {
		return fmt.Errorf("%w: record is missing %q", ErrUnknownVariant, field)
	}
	return fmt.Errorf("%w: %s=%q", ErrUnknownVariant, field, tag)
}
