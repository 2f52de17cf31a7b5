package commands

import (
	"time"

	"github.com/lox/bank-combination-finder/internal/combination"
	"github.com/lox/bank-combination-finder/internal/types"
)

// CommonConfig contains configuration common to all commands
type CommonConfig struct {
	// DataDir is the path to the data directory holding the run history
	DataDir string `help:"Path to data directory" default:"./data" env:"COMBINATION_DATA_DIR"`
	// LogLevel is the logging level to use
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error"`
}

// SearchConfig contains the flags that bound a combination search
type SearchConfig struct {
	// Target is the sum to look for, in currency units
	Target float64 `help:"Target sum in currency units" required:""`
	// Tolerance is the accepted distance from the target, in currency units
	Tolerance float64 `help:"Tolerance for matching the target" default:"0.01"`
	// MaxSize is the largest number of amounts in a combination
	MaxSize int `help:"Maximum combination size" default:"5"`
	// MaxMatches stops the search after this many matches
	MaxMatches int `help:"Stop after this many matches (0 = unlimited)" default:"50"`
	// TimeBudget bounds the wall-clock time of the search
	TimeBudget time.Duration `help:"Time budget for the search, e.g. 30s (0 = unlimited)" default:"0s"`
	// Negate also searches for the negated target
	Negate bool `help:"Also search for combinations summing to the negated target" default:"false"`
}

// Resolve validates the flags and converts them to a target and search config
func (c SearchConfig) Resolve() (types.Target, types.SearchConfig, error) {
	target, err := combination.NormalizeTarget(c.Target, c.Tolerance)
	if err != nil {
		return types.Target{}, types.SearchConfig{}, err
	}

	cfg := types.SearchConfig{
		MaxCombinationSize:  c.MaxSize,
		MaxMatches:          c.MaxMatches,
		TimeBudget:          c.TimeBudget,
		SearchNegatedTarget: c.Negate,
	}
	if err := combination.ValidateConfig(target, cfg); err != nil {
		return types.Target{}, types.SearchConfig{}, err
	}

	return target, cfg, nil
}
