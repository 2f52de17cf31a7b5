package combination

import "github.com/lox/bank-combination-finder/internal/types"

// Reconcile re-validates raw matches against the tolerance window around the
// target each run searched for and concatenates them in run order.
// Totals are recomputed from the items rather than trusted.
func Reconcile(outcomes []SearchOutcome, tolerance int64) []types.Match {
	var accepted []types.Match
	for _, outcome := range outcomes {
		window := types.Target{Value: outcome.Target, Tolerance: tolerance}
		for _, m := range outcome.Matches {
			var total int64
			for _, item := range m.Items {
				total += item.Value
			}
			if !window.Contains(total) || hasDuplicateOrigin(m.Items) {
				continue
			}
			m.Total = total
			m.Target = outcome.Target
			m.Negated = outcome.Negated
			accepted = append(accepted, m)
		}
	}
	return accepted
}

func hasDuplicateOrigin(items []types.Amount) bool {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.OriginID]; ok {
			return true
		}
		seen[item.OriginID] = struct{}{}
	}
	return false
}
