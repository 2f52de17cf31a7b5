package combination

import (
	"testing"

	"github.com/lox/bank-combination-finder/internal/types"
	"github.com/stretchr/testify/assert"
)

func amountsOf(values ...int64) []types.Amount {
	amounts := make([]types.Amount, len(values))
	for i, v := range values {
		amounts[i] = types.Amount{OriginID: string(rune('a' + i)), Value: v}
	}
	return amounts
}

func origins(amounts []types.Amount) []string {
	ids := make([]string, len(amounts))
	for i, a := range amounts {
		ids[i] = a.OriginID
	}
	return ids
}

func TestPrepareCandidatesDiscardsOversizedWhenNonNegative(t *testing.T) {
	c := PrepareCandidates(amountsOf(500, 2000, 300, 1001, 1000), types.Target{Value: 1000, Tolerance: 1})

	assert.Equal(t, []int64{300, 500, 1000, 1001}, c.Values)
	assert.Equal(t, []string{"c", "a", "e", "d"}, origins(c.Amounts))
	assert.Equal(t, 1, c.Discarded)
	assert.False(t, c.HasNegative)
	assert.Equal(t, []int64{2801, 2501, 2001, 1001, 0}, c.Suffix)
}

func TestPrepareCandidatesKeepsEverythingWithNegatives(t *testing.T) {
	c := PrepareCandidates(amountsOf(5000, -300, 800), types.Target{Value: 500})

	assert.Equal(t, []int64{-300, 800, 5000}, c.Values)
	assert.Equal(t, 0, c.Discarded)
	assert.True(t, c.HasNegative)
	// negative values add nothing to the reachable maximum
	assert.Equal(t, []int64{5800, 5800, 5000, 0}, c.Suffix)
}

func TestPrepareCandidatesTiesKeepInputOrder(t *testing.T) {
	c := PrepareCandidates(amountsOf(500, 100, 500, 100, 500), types.Target{Value: 10000})

	assert.Equal(t, []int64{100, 100, 500, 500, 500}, c.Values)
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, origins(c.Amounts))
}

func TestPrepareCandidatesEmpty(t *testing.T) {
	c := PrepareCandidates(amountsOf(5000, 6000), types.Target{Value: 100})

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 2, c.Discarded)
	assert.Equal(t, []int64{0}, c.Suffix)
}
