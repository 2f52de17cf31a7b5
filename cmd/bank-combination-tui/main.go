package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/lox/bank-combination-finder/internal/commands"
	"github.com/lox/bank-combination-finder/internal/db"
	"github.com/lox/bank-combination-finder/internal/report"
)

const itemsPerPage = 15

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedLine = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageDown key.Binding
	PageUp   key.Binding
	Open     key.Binding
	Back     key.Binding
	Filter   key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+f"), key.WithHelp("pgdn/ctrl+f", "page down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+b"), key.WithHelp("pgup/ctrl+b", "page up")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "show matches")),
		Back:     key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "runs using origin")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Back, k.Filter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Open, k.Back, k.Filter, k.Quit},
	}
}

type model struct {
	runs     []db.RunSummary
	cursor   int
	width    int
	height   int
	quitting bool
	err      error
	ready    bool
	db       *db.DB
	help     help.Model
	keys     keyMap
	logger   *log.Logger

	// Detail state
	selected *db.Run

	// Origin filter state
	filterActive bool
	origin       string
	filterInput  textinput.Model
}

type runsMsg struct {
	runs []db.RunSummary
}

type runMsg struct {
	run *db.Run
}

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

func initialModel(dbConn *db.DB, logger *log.Logger) model {
	ti := textinput.New()
	ti.Placeholder = "Origin ID, e.g. 12 or statement.csv:12"
	ti.CharLimit = 256
	ti.Width = 40
	return model{
		db:          dbConn,
		help:        help.New(),
		keys:        newKeyMap(),
		width:       80,
		height:      24,
		filterInput: ti,
		logger:      logger,
	}
}

func (m model) Init() tea.Cmd {
	return m.fetchRunsCmd("")
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filterInput.Width = m.width - 2
	case tea.KeyMsg:
		if m.filterActive {
			switch msg.String() {
			case "enter":
				m.filterActive = false
				m.origin = strings.TrimSpace(m.filterInput.Value())
				return m, m.fetchRunsCmd(m.origin)
			case "esc":
				m.filterActive = false
				return m, nil
			}
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			if m.selected != nil {
				m.selected = nil
			} else if m.origin != "" {
				m.origin = ""
				return m, m.fetchRunsCmd("")
			}
		case m.selected != nil:
			// the detail view only responds to back and quit
		case key.Matches(msg, m.keys.Filter):
			m.filterActive = true
			m.filterInput.SetValue("")
			m.filterInput.Focus()
		case key.Matches(msg, m.keys.Open):
			if len(m.runs) > 0 {
				return m, m.fetchRunCmd(m.runs[m.cursor].ID)
			}
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.runs)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.PageDown):
			m.cursor = min(m.cursor+itemsPerPage, max(len(m.runs)-1, 0))
		case key.Matches(msg, m.keys.PageUp):
			m.cursor = max(m.cursor-itemsPerPage, 0)
		}
	case runsMsg:
		m.ready = true
		m.err = nil
		m.runs = msg.runs
		m.cursor = 0
	case runMsg:
		m.err = nil
		m.selected = msg.run
	case errorMsg:
		m.err = msg.err
	}
	return m, nil
}

func (m model) fetchRunsCmd(origin string) tea.Cmd {
	return func() tea.Msg {
		if m.db == nil {
			return errorMsg{fmt.Errorf("database not initialized")}
		}
		ctx := context.Background()

		runs, err := m.db.ListRuns(ctx, 0)
		if err != nil {
			return errorMsg{fmt.Errorf("failed to list runs: %w", err)}
		}
		if origin == "" {
			return runsMsg{runs: runs}
		}

		ids, err := m.db.RunsForOrigin(ctx, origin)
		if err != nil {
			return errorMsg{fmt.Errorf("failed to find runs for %s: %w", origin, err)}
		}
		keep := make(map[string]bool, len(ids))
		for _, id := range ids {
			keep[id] = true
		}
		var filtered []db.RunSummary
		for _, r := range runs {
			if keep[r.ID] {
				filtered = append(filtered, r)
			}
		}
		return runsMsg{runs: filtered}
	}
}

func (m model) fetchRunCmd(id string) tea.Cmd {
	return func() tea.Msg {
		run, err := m.db.GetRun(context.Background(), id)
		if err != nil {
			return errorMsg{fmt.Errorf("failed to get run: %w", err)}
		}
		if run == nil {
			return errorMsg{fmt.Errorf("run %s not found", id)}
		}
		return runMsg{run: run}
	}
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		return fmt.Sprintf("\nAn error occurred: %v\n\nPress q to quit.", m.err)
	}
	if !m.ready {
		return "\nLoading runs...\n\nPress q to quit."
	}

	var header, body string
	if m.selected != nil {
		header, body = m.detailView()
	} else {
		header, body = m.listView()
	}

	lines := []string{headerStyle.Render(header), "", body}
	if m.filterActive {
		lines = append(lines, "/"+m.filterInput.View())
	}
	lines = append(lines, m.help.View(m.keys))
	output := strings.Join(lines, "\n")

	lineCount := strings.Count(output, "\n") + 1
	if lineCount < m.height {
		output += strings.Repeat("\n", m.height-lineCount)
	}

	return output
}

func (m model) listView() (string, string) {
	var b strings.Builder

	header := fmt.Sprintf("Run %d of %d", m.cursor+1, len(m.runs))
	if m.origin != "" {
		header = fmt.Sprintf("Runs using %s: %d", m.origin, len(m.runs))
	}
	if len(m.runs) == 0 {
		b.WriteString("No runs found.")
		return header, b.String()
	}

	// Determine the window of runs to display
	start := max(m.cursor-itemsPerPage/2, 0)
	end := min(start+itemsPerPage, len(m.runs))
	start = max(end-itemsPerPage, 0)

	for i := start; i < end; i++ {
		r := m.runs[i]
		line := fmt.Sprintf("%-14s | %12s | %3d matches | %-11s | %s",
			humanize.Time(r.CreatedAt),
			report.FormatMinorUnits(r.Target.Value),
			r.Matches,
			r.Status,
			r.Source)
		if len(line) > m.width-2 && m.width > 20 {
			line = line[:m.width-5] + "..."
		}
		if i == m.cursor {
			b.WriteString(selectedLine.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return header, b.String()
}

func (m model) detailView() (string, string) {
	var b strings.Builder
	run := m.selected
	rep := report.Build(run.Result)

	header := fmt.Sprintf("Run %s: ~%s (tol=%s) from %s",
		run.ID, rep.Summary.Target, rep.Summary.Tolerance, run.Source)

	if len(rep.Matches) == 0 {
		b.WriteString("No combinations found.\n")
	}
	for i, match := range rep.Matches {
		if i >= m.height-6 && m.height > 6 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("... %d more", len(rep.Matches)-i)))
			b.WriteString("\n")
			break
		}
		b.WriteString(report.MatchLine(match))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Status: %s  Candidates: %s  Explored: %s  Elapsed: %s",
		rep.Summary.Status,
		humanize.Comma(int64(rep.Summary.Candidates)),
		humanize.Comma(rep.Summary.Explored),
		run.Result.Elapsed)))
	return header, b.String()
}

func main() {
	type CLI struct {
		commands.CommonConfig
	}

	var cli CLI
	kong.Parse(&cli,
		kong.Name("bank-combination-tui"),
		kong.Description("A TUI for browsing saved combination searches."),
		kong.UsageOnError(),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:  log.InfoLevel,
		Prefix: "tui",
	})

	parsedLevel, err := log.ParseLevel(cli.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level specified, defaulting to info", "error", err, "specifiedLevel", cli.LogLevel)
		parsedLevel = log.InfoLevel
	}
	logger.SetLevel(parsedLevel)

	logger.Info("Loading database", "data_dir", cli.DataDir)

	dbConn, err := commands.SetupDatabase(cli.CommonConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	p := tea.NewProgram(initialModel(dbConn, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Fatal("Error running TUI", "error", err)
	}
}
