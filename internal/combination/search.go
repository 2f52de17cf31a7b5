package combination

import (
	"context"
	"time"

	"github.com/lox/bank-combination-finder/internal/types"
)

// progressStride is how many explored nodes are batched into one progress update
const progressStride = 4096

// SearchOutcome holds the exact-sum matches of a single search run
type SearchOutcome struct {
	Target   int64
	Negated  bool
	Matches  []types.Match
	Status   types.Status
	Explored int64
}

type searchOptions struct {
	deadline time.Time
	now      func() time.Time
	progress Progress
	negated  bool
}

// SearchOption is a function that modifies a search
type SearchOption func(*searchOptions)

// WithDeadline stops the search once the clock passes deadline. A zero
// deadline means no limit.
func WithDeadline(deadline time.Time) SearchOption {
	return func(opts *searchOptions) {
		opts.deadline = deadline
	}
}

// WithClock replaces time.Now for deadline checks
func WithClock(now func() time.Time) SearchOption {
	return func(opts *searchOptions) {
		opts.now = now
	}
}

// WithProgress reports explored nodes to p
func WithProgress(p Progress) SearchOption {
	return func(opts *searchOptions) {
		opts.progress = p
	}
}

// Negated tags matches from this run as satisfying a negated target
func Negated() SearchOption {
	return func(opts *searchOptions) {
		opts.negated = true
	}
}

type control int

const (
	proceed control = iota
	halt
)

type searcher struct {
	c          *Candidates
	target     int64
	maxSize    int
	maxMatches int
	negated    bool

	deadline time.Time
	now      func() time.Time
	done     <-chan struct{}
	progress Progress

	path     []int
	matches  []types.Match
	explored int64
	status   types.Status
}

// Search enumerates combinations of candidates whose sum equals target exactly.
//
// The search is a depth-first backtrack over the ascending candidate list. It
// stops early when the deadline passes, ctx is done, or cfg.MaxMatches matches
// have been found; matches found so far are always returned. TimeBudget in cfg
// is ignored here, callers convert it into a deadline with WithDeadline so that
// several runs can share one budget.
func Search(ctx context.Context, c *Candidates, target int64, cfg types.SearchConfig, opts ...SearchOption) SearchOutcome {
	options := searchOptions{
		now:      time.Now,
		progress: NewNoopProgress(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	s := &searcher{
		c:          c,
		target:     target,
		maxSize:    cfg.MaxCombinationSize,
		maxMatches: cfg.MaxMatches,
		negated:    options.negated,
		deadline:   options.deadline,
		now:        options.now,
		done:       ctx.Done(),
		progress:   options.progress,
		path:       make([]int, 0, cfg.MaxCombinationSize),
		status:     types.StatusComplete,
	}

	s.backtrack(0, 0)

	_ = s.progress.Add(int(s.explored % progressStride))

	return SearchOutcome{
		Target:   target,
		Negated:  options.negated,
		Matches:  s.matches,
		Status:   s.status,
		Explored: s.explored,
	}
}

func (s *searcher) backtrack(start int, sum int64) control {
	s.explored++
	if s.explored%progressStride == 0 {
		_ = s.progress.Add(progressStride)
	}

	if s.stopped() {
		return halt
	}

	if sum == s.target && len(s.path) > 0 {
		s.record(sum)
		return proceed
	}

	// Overshoot only prunes when nothing negative is left to pull the sum back
	n := len(s.c.Values)
	if sum > s.target && (start >= n || s.c.Values[start] >= 0) {
		return proceed
	}

	if len(s.path) >= s.maxSize {
		return proceed
	}

	var prev int64
	tried := false
	for i := start; i < n; i++ {
		value := s.c.Values[i]
		if tried && value == prev {
			continue
		}
		// Suffix only shrinks as i grows, so no later index can reach target either
		if sum+s.c.Suffix[i] < s.target {
			break
		}
		tried = true
		prev = value

		s.path = append(s.path, i)
		ctl := s.backtrack(i+1, sum+value)
		s.path = s.path[:len(s.path)-1]

		if ctl == halt {
			return halt
		}
		if s.maxMatches > 0 && len(s.matches) >= s.maxMatches {
			s.status = types.StatusCapReached
			return halt
		}
	}

	return proceed
}

// stopped polls the deadline and the context on every node
func (s *searcher) stopped() bool {
	if !s.deadline.IsZero() && s.now().After(s.deadline) {
		s.status = types.StatusTimedOut
		return true
	}
	select {
	case <-s.done:
		s.status = types.StatusCancelled
		return true
	default:
		return false
	}
}

func (s *searcher) record(sum int64) {
	items := make([]types.Amount, len(s.path))
	for i, idx := range s.path {
		items[i] = s.c.Amounts[idx]
	}
	s.matches = append(s.matches, types.Match{
		Items:   items,
		Total:   sum,
		Target:  s.target,
		Negated: s.negated,
	})
}
