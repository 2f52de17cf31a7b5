package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/lox/bank-combination-finder/internal/combination"
	"github.com/lox/bank-combination-finder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCLI struct {
	CommonConfig
	SearchConfig
}

func parse(t *testing.T, profile string, args ...string) testCLI {
	t.Helper()

	resolver, err := YAMLProfile(strings.NewReader(profile))
	require.NoError(t, err)

	var cli testCLI
	parser, err := kong.New(&cli, kong.Resolvers(resolver))
	require.NoError(t, err)

	_, err = parser.Parse(args)
	require.NoError(t, err)
	return cli
}

func TestSearchConfigDefaults(t *testing.T) {
	cli := parse(t, "", "--target=2245.35")

	target, cfg, err := cli.SearchConfig.Resolve()
	require.NoError(t, err)

	assert.Equal(t, types.Target{Value: 224535, Tolerance: 1}, target)
	assert.Equal(t, types.SearchConfig{MaxCombinationSize: 5, MaxMatches: 50}, cfg)
	assert.Equal(t, "warn", cli.LogLevel)
	assert.Equal(t, "./data", cli.DataDir)
}

func TestYAMLProfile(t *testing.T) {
	profile := `
tolerance: 0.5
max_size: 3
time-budget: 2s
negate: true
log-level: debug
`
	cli := parse(t, profile, "--target=10", "--max-size=4")

	target, cfg, err := cli.SearchConfig.Resolve()
	require.NoError(t, err)

	assert.Equal(t, int64(50), target.Tolerance)
	assert.Equal(t, 4, cfg.MaxCombinationSize)
	assert.Equal(t, 2*time.Second, cfg.TimeBudget)
	assert.True(t, cfg.SearchNegatedTarget)
	assert.Equal(t, "debug", cli.LogLevel)
}

func TestYAMLProfileInvalid(t *testing.T) {
	_, err := YAMLProfile(strings.NewReader("tolerance: [unclosed"))
	assert.Error(t, err)
}

func TestSearchConfigResolveErrors(t *testing.T) {
	_, _, err := SearchConfig{Target: 10, MaxSize: 0}.Resolve()
	assert.ErrorIs(t, err, combination.ErrConfiguration)

	_, _, err = SearchConfig{Target: 10, Tolerance: -1, MaxSize: 2}.Resolve()
	assert.ErrorIs(t, err, combination.ErrConfiguration)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLogger(&buf, "info", "")
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())

	logger.Info("hello", "matches", 2)
	assert.Contains(t, buf.String(), "hello")

	_, err = NewLogger(&buf, "loud", "")
	assert.Error(t, err)
}
