package getsafe

import (
	"fmt"
	"strconv"
)

func String(payload map[string]any, key string) string {
	if v, ok := payload[key]; ok {
		switch t := v.(type) {
		case string:
			return t
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		case nil:
			return ""
		default:
			return fmt.Sprint(t)
		}
	}
	return ""
}

// Strings flattens a decoded JSON object into string values. Nested values
// are rendered with fmt.
func Strings(payload map[string]any) map[string]string {
	out := make(map[string]string, len(payload))
	for k := range payload {
		out[k] = String(payload, k)
	}
	return out
}

func Value(payload map[string]string, key string, fallback string) string {
	if v, ok := payload[key]; ok && len(v) > 0 {
		return v
	}
	return fallback
}
