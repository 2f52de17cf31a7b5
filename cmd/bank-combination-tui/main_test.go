package main

import (
	"context"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/bank-combination-finder/internal/db"
	"github.com/lox/bank-combination-finder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupModel(t *testing.T) (model, string) {
	t.Helper()

	logger := log.New(io.Discard)
	database, err := db.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	id, err := database.SaveRun(context.Background(), "statement.csv", &types.Result{
		Target: types.Target{Value: 224535, Tolerance: 1},
		Config: types.SearchConfig{MaxCombinationSize: 5},
		Matches: []types.Match{{
			Items:  []types.Amount{{OriginID: "4", Value: 24535}, {OriginID: "3", Value: 200000}},
			Total:  224535,
			Target: 224535,
		}},
		Status: types.StatusComplete,
	})
	require.NoError(t, err)

	return initialModel(database, logger), id
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func TestModelListAndDetail(t *testing.T) {
	m, id := setupModel(t)

	m, _ = update(t, m, m.Init()())
	require.True(t, m.ready)
	require.Len(t, m.runs, 1)
	assert.Contains(t, m.View(), "statement.csv")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.NotNil(t, m.selected)
	assert.Equal(t, id, m.selected.ID)
	assert.Contains(t, m.View(), "[(4, 245.35), (3, 2000.00)] => 2245.35")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.selected)
}

func TestModelOriginFilter(t *testing.T) {
	m, _ := setupModel(t)
	m, _ = update(t, m, m.Init()())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	require.True(t, m.filterActive)

	m.filterInput.SetValue("99")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Equal(t, "99", m.origin)
	assert.Empty(t, m.runs)
	assert.Contains(t, m.View(), "No runs found.")

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	assert.Empty(t, m.origin)
	assert.Len(t, m.runs, 1)
}
