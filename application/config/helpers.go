// Package config loads and validates the demo command's run configuration.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hvm-interop/hvm-go/domain/errors"
)

// Params are the values substituted into a sample template.
type Params = map[string]any

// GetInt extracts an int from params, handling int, int64, uint64 and
// integral float64 values.
func GetInt(params Params, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true //nolint:gosec // G115: sample parameters are small
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// MustGetInt extracts a required int from params or returns error.
func MustGetInt(params Params, key string) (int, error) {
	i, ok := GetInt(params, key)
	if !ok {
		return 0, &errors.ConfigError{
			Field: key,
			Err:   fmt.Errorf("required int field '%s' is missing or not a number", key),
		}
	}
	return i, nil
}

// GetIntDefault extracts an int from params or returns the default value.
func GetIntDefault(params Params, key string, defaultValue int) int {
	i, ok := GetInt(params, key)
	if !ok {
		return defaultValue
	}
	return i
}

// ParseParams turns "key=value" pairs into Params. Integer values are stored
// as int, everything else as string.
func ParseParams(pairs []string) (Params, error) {
	params := make(Params, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &errors.ConfigError{
				Field: "params",
				Err:   fmt.Errorf("expected key=value, got %q", pair),
			}
		}
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			params[key] = n
		} else {
			params[key] = value
		}
	}
	return params, nil
}

// Merge returns a copy of base with override's entries applied on top.
func Merge(base, override Params) Params {
	out := make(Params, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
