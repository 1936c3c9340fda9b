package interpret

import (
	"encoding/json"
	"math"
	"strconv"
)

// asMap returns v as a string-keyed mapping, or an empty one when v is
// missing or of the wrong type. Reports loaded back from JSON and
// reports fresh from the collectors both satisfy this shape.
func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}

	return map[string]any{}
}

// toFloat reports whether v is a numeric reading and returns its
// value. Strings (including the "Unavailable" sentinel), booleans and
// other types are not numeric.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// toInt reports whether v is an integer reading. Integral floats
// count: JSON decoding hands every number back as float64.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
		return 0, false
	case float32:
		f := float64(n)
		if f == math.Trunc(f) {
			return int(f), true
		}
		return 0, false
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}

// formatNumber renders a reading the way it was measured: 92.5 stays
// "92.5", 92 stays "92".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
