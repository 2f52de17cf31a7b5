package mcp

import (
	"fmt"
	"strconv"
	"time"
)

// defaultTimeBudget bounds searches started by a client that didn't ask for one
const defaultTimeBudget = 30 * time.Second

// Tool arguments may arrive as JSON numbers or as strings, depending on the client.

func intArg(args map[string]interface{}, name string, def int) (int, error) {
	v, ok := args[name]
	if !ok {
		return def, nil
	}
	switch v := v.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	case string:
		if v == "" {
			return def, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", name, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number or string", name)
	}
}

func floatArg(args map[string]interface{}, name string, def float64) (float64, error) {
	v, ok := args[name]
	if !ok {
		return def, nil
	}
	switch v := v.(type) {
	case int:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		if v == "" {
			return def, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid number: %w", name, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%s must be a number or string", name)
	}
}

func boolArg(args map[string]interface{}, name string, def bool) (bool, error) {
	v, ok := args[name]
	if !ok {
		return def, nil
	}
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		if v == "" {
			return def, nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%s must be true or false: %w", name, err)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%s must be a boolean or string", name)
	}
}

// durationArg accepts Go durations ("1m30s") or a number of seconds
func durationArg(args map[string]interface{}, name string, def time.Duration) (time.Duration, error) {
	v, ok := args[name]
	if !ok {
		return def, nil
	}
	switch v := v.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		if v == "" {
			return def, nil
		}
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a duration such as 30s: %w", name, err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("%s must be a duration or number of seconds", name)
	}
}
