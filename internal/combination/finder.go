package combination

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/bank-combination-finder/internal/types"
)

// Finder runs the full pipeline: filter and sort, search once per target
// sign, reconcile against the tolerance and cap the result
type Finder struct {
	logger   *log.Logger
	progress Progress
	now      func() time.Time
}

// FinderOption is a function that modifies a Finder
type FinderOption func(*Finder)

// WithFinderProgress reports explored nodes of every run to p
func WithFinderProgress(p Progress) FinderOption {
	return func(f *Finder) {
		f.progress = p
	}
}

// WithFinderClock replaces time.Now for the deadline and elapsed time
func WithFinderClock(now func() time.Time) FinderOption {
	return func(f *Finder) {
		f.now = now
	}
}

// NewFinder creates a new Finder
func NewFinder(logger *log.Logger, opts ...FinderOption) *Finder {
	f := &Finder{
		logger:   logger,
		progress: NewNoopProgress(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindRaw normalises raw amounts, dropping any that are invalid, and runs Find
func (f *Finder) FindRaw(ctx context.Context, raw []types.RawAmount, target types.Target, cfg types.SearchConfig) (*types.Result, error) {
	if err := ValidateConfig(target, cfg); err != nil {
		return nil, err
	}

	amounts, dropped := Normalize(raw)
	for _, err := range dropped {
		f.logger.Debug("Dropping amount", "error", err)
	}
	if len(dropped) > 0 {
		f.logger.Info("Dropped invalid amounts", "count", len(dropped), "kept", len(amounts))
	}

	return f.Find(ctx, amounts, target, cfg)
}

// Find searches amounts for combinations within tolerance of target.
//
// Configuration errors and amounts beyond MaxMinorUnits are returned before
// any search work. Timeouts, cancellation and the result cap are reported
// through Result.Status.
func (f *Finder) Find(ctx context.Context, amounts []types.Amount, target types.Target, cfg types.SearchConfig) (*types.Result, error) {
	if err := ValidateConfig(target, cfg); err != nil {
		return nil, err
	}
	for _, a := range amounts {
		if a.Value > MaxMinorUnits || a.Value < -MaxMinorUnits {
			return nil, &InvalidAmountError{OriginID: a.OriginID, Value: strconv.FormatInt(a.Value, 10), Reason: "out of range"}
		}
	}

	start := f.now()
	var deadline time.Time
	if cfg.TimeBudget > 0 {
		deadline = start.Add(cfg.TimeBudget)
	}

	targets := []types.Target{target}
	if cfg.SearchNegatedTarget && target.Value != 0 {
		targets = append(targets, target.Negated())
	}

	result := &types.Result{
		Target: target,
		Config: cfg,
		Status: types.StatusComplete,
	}

	var outcomes []SearchOutcome
	found := 0
	for i, t := range targets {
		runCfg := cfg
		if cfg.MaxMatches > 0 {
			runCfg.MaxMatches = cfg.MaxMatches - found
			if runCfg.MaxMatches <= 0 {
				break
			}
		}

		candidates := PrepareCandidates(amounts, t)
		f.logger.Debug("Prepared candidates",
			"target", t.Value,
			"candidates", candidates.Len(),
			"discarded", candidates.Discarded,
			"negative", candidates.HasNegative)
		result.Candidates += candidates.Len()

		opts := []SearchOption{
			WithDeadline(deadline),
			WithClock(f.now),
			WithProgress(f.progress),
		}
		if i > 0 {
			opts = append(opts, Negated())
		}

		outcome := Search(ctx, &candidates, t.Value, runCfg, opts...)
		f.logger.Debug("Search run finished",
			"target", t.Value,
			"matches", len(outcome.Matches),
			"status", outcome.Status,
			"explored", outcome.Explored)

		outcomes = append(outcomes, outcome)
		result.Explored += outcome.Explored
		found += len(outcome.Matches)

		if outcome.Status != types.StatusComplete {
			result.Status = outcome.Status
		}
		if outcome.Status.Truncated() {
			break
		}
	}

	result.Matches = Reconcile(outcomes, target.Tolerance)
	if cfg.MaxMatches > 0 && len(result.Matches) > cfg.MaxMatches {
		result.Matches = result.Matches[:cfg.MaxMatches]
	}
	result.Elapsed = f.now().Sub(start)

	f.logger.Info("Search finished",
		"matches", len(result.Matches),
		"status", result.Status,
		"truncated", result.Truncated(),
		"elapsed", result.Elapsed)

	return result, nil
}
