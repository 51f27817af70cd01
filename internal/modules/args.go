package modules

import (
	"fmt"
	"math"
)

// getString extracts a string parameter
func getString(args map[string]any, key string, required bool) (string, error) {
	val, ok := args[key]
	if !ok || val == nil {
		if required {
			return "", fmt.Errorf("%s parameter required", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be string", key)
	}

	if required && str == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}

	return str, nil
}

// getInt extracts an integer parameter. Decoders hand numbers over as
// int64, uint64 or float64 depending on the source format.
func getInt(args map[string]any, key string, defaultVal int) (int, error) {
	val, ok := args[key]
	if !ok || val == nil {
		return defaultVal, nil
	}

	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		if v > math.MaxInt32 {
			return 0, fmt.Errorf("%s out of range", key)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s must be number", key)
	}
}

// getStringMap extracts a map of strings, such as request headers
func getStringMap(args map[string]any, key string) (map[string]string, error) {
	val, ok := args[key]
	if !ok || val == nil {
		return nil, nil
	}

	m, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a mapping", key)
	}

	out := make(map[string]string, len(m))
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s.%s must be string", key, k)
		}
		out[k] = s
	}
	return out, nil
}
