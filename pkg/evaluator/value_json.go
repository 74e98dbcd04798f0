package evaluator

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValueToJSON marshals a Value to JSON bytes.
// Numbers output integers without decimal point; undefined and non-finite
// numbers become null; functions and namespaces become their string form.
func ValueToJSON(v Value) ([]byte, error) {
	raw := valueToRaw(v)
	return json.Marshal(raw)
}

func valueToRaw(v Value) any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case Undefined:
		return nil

	case Boolean:
		return val.Value

	case Number:
		if math.IsInf(val.Value, 0) || math.IsNaN(val.Value) {
			return nil
		}
		// Output integers without decimal point
		if val.Value == math.Trunc(val.Value) && math.Abs(val.Value) < 1<<53 {
			return int64(val.Value)
		}
		return val.Value

	case String:
		return val.Value

	case *Array:
		items := make([]any, len(val.Elements))
		for i, item := range val.Elements {
			items[i] = valueToRaw(item)
		}
		return items

	case *Namespace:
		members := make(map[string]any, len(val.members))
		for k, m := range val.members {
			members[k] = valueToRaw(m)
		}
		return members
	}

	return ToString(v)
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// FormatNumber formats a float64 the way the language prints numbers:
// integers without a fraction, shortest round-trip digits otherwise, and
// exponent notation for magnitudes >= 1e21 or < 1e-6.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}
	abs := math.Abs(n)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
