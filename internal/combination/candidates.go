package combination

import (
	"cmp"

	"github.com/lox/bank-combination-finder/internal/types"
	"golang.org/x/exp/slices"
)

// Candidates is the sorted working set for one search run
type Candidates struct {
	// Amounts are sorted ascending by value, ties kept in input order
	Amounts []types.Amount
	// Values mirrors Amounts[i].Value
	Values []int64
	// Suffix[i] is the largest sum reachable from Values[i:], i.e. the sum of
	// the non-negative values from i onwards. Suffix has len(Values)+1 entries.
	Suffix []int64
	// HasNegative is set when any candidate value is below zero
	HasNegative bool
	// Discarded counts amounts removed by magnitude filtering
	Discarded int
}

// Len returns the number of candidates
func (c *Candidates) Len() int {
	return len(c.Values)
}

// PrepareCandidates filters and sorts amounts for a search against target.
//
// When every amount is non-negative, amounts above target.High() can't belong
// to any valid combination and are discarded. With negative amounts present
// nothing is discarded, since a large amount can be offset later.
func PrepareCandidates(amounts []types.Amount, target types.Target) Candidates {
	hasNegative := false
	for _, a := range amounts {
		if a.Value < 0 {
			hasNegative = true
			break
		}
	}

	kept := make([]types.Amount, 0, len(amounts))
	high := target.High()
	for _, a := range amounts {
		if !hasNegative && a.Value > high {
			continue
		}
		kept = append(kept, a)
	}

	slices.SortStableFunc(kept, func(a, b types.Amount) int {
		return cmp.Compare(a.Value, b.Value)
	})

	values := make([]int64, len(kept))
	for i, a := range kept {
		values[i] = a.Value
	}

	suffix := make([]int64, len(kept)+1)
	for i := len(kept) - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1] + max(values[i], 0)
	}

	return Candidates{
		Amounts:     kept,
		Values:      values,
		Suffix:      suffix,
		HasNegative: hasNegative,
		Discarded:   len(amounts) - len(kept),
	}
}
