package combination

import (
	"math"
	"testing"

	"github.com/lox/bank-combination-finder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeString(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    int64
		expectError bool
	}{
		{name: "plain", input: "2245.35", expected: 224535},
		{name: "integer", input: "10", expected: 1000},
		{name: "negative", input: "-3.00", expected: -300},
		{name: "thousands_and_symbol", input: "$1,234.56", expected: 123456},
		{name: "negative_symbol", input: "-$5", expected: -500},
		{name: "accounting_negative", input: "(12.00)", expected: -1200},
		{name: "surrounding_space", input: "  95.35 ", expected: 9535},
		{name: "half_rounds_up", input: "0.005", expected: 1},
		{name: "half_rounds_away_from_zero", input: "-0.005", expected: -1},
		{name: "half_odd_cent", input: "0.015", expected: 2},
		{name: "below_half", input: "1.004", expected: 100},
		{name: "empty", input: "", expectError: true},
		{name: "text", input: "n/a", expectError: true},
		{name: "nan", input: "NaN", expectError: true},
		{name: "out_of_range", input: "100000000000000000", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeString(tt.input)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeFloat(t *testing.T) {
	got, err := NormalizeFloat(2245.35)
	require.NoError(t, err)
	assert.Equal(t, int64(224535), got)

	got, err = NormalizeFloat(0.125)
	require.NoError(t, err)
	assert.Equal(t, int64(13), got)

	got, err = NormalizeFloat(-0.125)
	require.NoError(t, err)
	assert.Equal(t, int64(-13), got)

	// v*100 is computed in binary, so values printed as a half cent can
	// land just below it
	for v, want := range map[float64]int64{
		1.005:  100,
		-1.005: -100,
		0.285:  28,
		2.5:    250,
		0.015:  2,
	} {
		got, err := NormalizeFloat(v)
		require.NoError(t, err)
		assert.Equal(t, want, got, "value %v", v)
	}

	_, err = NormalizeFloat(1e14)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := NormalizeFloat(v)
		assert.ErrorIs(t, err, ErrInvalidAmount, "value %v", v)
	}
}

func TestNormalizeDropsInvalidRows(t *testing.T) {
	raw := []types.RawAmount{
		{OriginID: "0", Value: "100.00", Label: "rent"},
		{OriginID: "1", Value: "oops"},
		{OriginID: "2", Value: "(5.50)"},
	}

	amounts, dropped := Normalize(raw)

	assert.Equal(t, []types.Amount{
		{OriginID: "0", Label: "rent", Value: 10000},
		{OriginID: "2", Value: -550},
	}, amounts)
	require.Len(t, dropped, 1)

	var invalid *InvalidAmountError
	require.ErrorAs(t, dropped[0], &invalid)
	assert.Equal(t, "1", invalid.OriginID)
	assert.Contains(t, dropped[0].Error(), "oops")
}

func TestNormalizeTarget(t *testing.T) {
	target, err := NormalizeTarget(2245.35, 0.01)
	require.NoError(t, err)
	assert.Equal(t, types.Target{Value: 224535, Tolerance: 1}, target)

	_, err = NormalizeTarget(10, -0.01)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NormalizeTarget(math.NaN(), 0)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestValidateConfig(t *testing.T) {
	valid := types.SearchConfig{MaxCombinationSize: 5}
	target := types.Target{Value: 1000, Tolerance: 1}

	require.NoError(t, ValidateConfig(target, valid))

	tests := []struct {
		name   string
		target types.Target
		cfg    types.SearchConfig
		field  string
	}{
		{name: "zero_size", target: target, cfg: types.SearchConfig{}, field: "max combination size"},
		{name: "negative_matches", target: target, cfg: types.SearchConfig{MaxCombinationSize: 1, MaxMatches: -1}, field: "max matches"},
		{name: "negative_budget", target: target, cfg: types.SearchConfig{MaxCombinationSize: 1, TimeBudget: -1}, field: "time budget"},
		{name: "negative_tolerance", target: types.Target{Value: 1, Tolerance: -1}, cfg: valid, field: "tolerance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.target, tt.cfg)
			require.ErrorIs(t, err, ErrConfiguration)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
