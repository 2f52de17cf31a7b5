package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/lox/bank-combination-finder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *types.Result {
	return &types.Result{
		Target: types.Target{Value: 224535, Tolerance: 1},
		Config: types.SearchConfig{MaxCombinationSize: 5},
		Matches: []types.Match{
			{
				Items: []types.Amount{
					{OriginID: "4", Value: 24535},
					{OriginID: "3", Label: "Invoice 7", Value: 200000},
				},
				Total:  224535,
				Target: 224535,
			},
			{
				Items:   []types.Amount{{OriginID: "9", Value: -224535}},
				Total:   -224535,
				Target:  -224535,
				Negated: true,
			},
		},
		Status:     types.StatusTimedOut,
		Candidates: 1200,
		Explored:   1234567,
		Elapsed:    1500 * time.Millisecond,
	}
}

func TestFormatMinorUnits(t *testing.T) {
	assert.Equal(t, "2245.35", FormatMinorUnits(224535))
	assert.Equal(t, "10.00", FormatMinorUnits(1000))
	assert.Equal(t, "-0.05", FormatMinorUnits(-5))
	assert.Equal(t, "0.00", FormatMinorUnits(0))
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleResult()))

	expected := `Found 2 matches in 1.50s:
[(4, 245.35), (3 "Invoice 7", 2000.00)] => 2245.35
[(9, -2245.35)] => -2245.35 (negated target -2245.35)

Matches: 2  Status: timed_out  Truncated: true  Candidates: 1,200  Explored: 1,234,567  Elapsed: 1.5s
`
	assert.Equal(t, expected, buf.String())
}

func TestTextNoMatches(t *testing.T) {
	var buf bytes.Buffer
	err := Text(&buf, &types.Result{
		Target: types.Target{Value: 1000, Tolerance: 1},
		Status: types.StatusComplete,
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "No combinations found that sum to ~10.00 (tol=0.01)")
	assert.Contains(t, buf.String(), "Truncated: false")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleResult()))

	var rep Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rep))

	require.Len(t, rep.Matches, 2)
	assert.Equal(t, []Item{
		{OriginID: "4", Value: "245.35"},
		{OriginID: "3", Label: "Invoice 7", Value: "2000.00"},
	}, rep.Matches[0].Items)
	assert.Equal(t, "2245.35", rep.Matches[0].Total)
	assert.True(t, rep.Matches[1].Negated)
	assert.Equal(t, Summary{
		Target:     "2245.35",
		Tolerance:  "0.01",
		Matches:    2,
		Status:     "timed_out",
		Truncated:  true,
		Candidates: 1200,
		Explored:   1234567,
		Elapsed:    1.5,
	}, rep.Summary)
}
