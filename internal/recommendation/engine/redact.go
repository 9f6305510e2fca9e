package engine

import "strings"

var redactedKeys = map[string]bool{
	"password": true,
	"token":    true,
	"secret":   true,
}

// Redact copies payload without any key named password, token or secret (case-insensitive) at any
// map depth. Lists are copied as-is; their elements are not inspected.
func Redact(payload map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		if redactedKeys[strings.ToLower(k)] {
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = Redact(nested)
			continue
		}
		out[k] = v
	}
	return out
}
