package combination

import (
	"errors"
	"fmt"

	"github.com/lox/bank-combination-finder/internal/types"
)

var (
	// ErrInvalidAmount is returned for values that can't be converted to minor units
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrConfiguration is returned for configuration that prevents a search from starting
	ErrConfiguration = errors.New("configuration error")
)

// InvalidAmountError describes a single value that was rejected by the normalizer
type InvalidAmountError struct {
	OriginID string
	Value    string
	Reason   string
}

func (e *InvalidAmountError) Error() string {
	if e.OriginID == "" {
		return fmt.Sprintf("invalid amount %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid amount %q at %s: %s", e.Value, e.OriginID, e.Reason)
}

func (e *InvalidAmountError) Unwrap() error {
	return ErrInvalidAmount
}

// ConfigError names the configuration field that is invalid
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// ValidateConfig checks a search configuration and target before any search work
func ValidateConfig(target types.Target, cfg types.SearchConfig) error {
	if cfg.MaxCombinationSize <= 0 {
		return &ConfigError{Field: "max combination size", Reason: fmt.Sprintf("must be positive, got %d", cfg.MaxCombinationSize)}
	}
	if cfg.MaxMatches < 0 {
		return &ConfigError{Field: "max matches", Reason: fmt.Sprintf("must not be negative, got %d", cfg.MaxMatches)}
	}
	if cfg.TimeBudget < 0 {
		return &ConfigError{Field: "time budget", Reason: fmt.Sprintf("must not be negative, got %s", cfg.TimeBudget)}
	}
	if target.Tolerance < 0 {
		return &ConfigError{Field: "tolerance", Reason: fmt.Sprintf("must not be negative, got %d", target.Tolerance)}
	}
	if abs(target.Value) > MaxMinorUnits || target.Tolerance > MaxMinorUnits {
		return &ConfigError{Field: "target", Reason: "out of range"}
	}
	return nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
