package types

import "time"

// SearchConfig bounds a combination search
type SearchConfig struct {
	// MaxCombinationSize is the largest number of amounts in one match
	MaxCombinationSize int
	// MaxMatches stops the search once this many matches exist (0 = unbounded)
	MaxMatches int
	// TimeBudget is the wall-clock budget for the whole search (0 = unbounded)
	TimeBudget time.Duration
	// SearchNegatedTarget repeats the search for the negated target
	SearchNegatedTarget bool
}

// Status describes how a search ended
type Status string

const (
	StatusComplete   Status = "complete"
	StatusCapReached Status = "cap_reached"
	StatusTimedOut   Status = "timed_out"
	StatusCancelled  Status = "cancelled"
)

// Truncated reports whether the search stopped before exhausting the space
// for reasons other than the result cap
func (s Status) Truncated() bool {
	return s == StatusTimedOut || s == StatusCancelled
}

// Match is a set of amounts whose sum lies within tolerance of a target.
// Items are in ascending value order, the order used by the search.
type Match struct {
	Items []Amount
	Total int64
	// Target is the value this match satisfied, -target for negated runs
	Target  int64
	Negated bool
}

// Result is the outcome of a complete search, including any negated run
type Result struct {
	Target  Target
	Config  SearchConfig
	Matches []Match
	Status  Status
	// Candidates is the number of amounts left after filtering, summed over runs
	Candidates int
	// Explored is the number of search nodes visited, summed over runs
	Explored int64
	Elapsed  time.Duration
}

// Truncated reports whether the search was cut short by its time budget or
// by cancellation
func (r *Result) Truncated() bool {
	return r.Status.Truncated()
}
