package query

import (
	"fmt"
	"reflect"
	"strings"
)

// equalValues compares a stored field value against a predicate value.
// Numbers compare numerically regardless of Go type, since JSON decoding
// yields float64 while callers typically pass int literals.
func equalValues(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ab == bb
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two field values: nil/missing first, then numbers
// numerically, strings lexicographically, bools false before true. Values of
// differing or unhandled types fall back to their string representations so
// the sort stays total and deterministic.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs)
		}
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	default:
		return 0, false
	}
}
