package erp

import (
	"encoding/json"
	"math"
	"strconv"
)

// DecodeField normalizes the upstream tagged-value format into a plain
// string. A field on the wire is either a raw scalar or an object carrying a
// "v" (value) and/or "r" (rendered) member, and either form may be absent or
// nested. The function is total: every input yields a string, empty when
// nothing usable is present, and it never panics.
func DecodeField(field any) string {
	switch v := field.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case map[string]any:
		if inner, ok := v["v"]; ok {
			if s := DecodeField(inner); s != "" {
				return s
			}
		}
		if inner, ok := v["r"]; ok {
			return DecodeField(inner)
		}
		return ""
	default:
		return ""
	}
}
