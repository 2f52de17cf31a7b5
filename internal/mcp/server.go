package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/lox/bank-combination-finder/internal/combination"
	"github.com/lox/bank-combination-finder/internal/db"
	"github.com/lox/bank-combination-finder/internal/report"
	"github.com/lox/bank-combination-finder/internal/source"
	"github.com/lox/bank-combination-finder/internal/types"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type Server struct {
	db       *db.DB
	finder   *combination.Finder
	registry *source.Registry
	logger   *log.Logger
}

func New(db *db.DB, finder *combination.Finder, registry *source.Registry, logger *log.Logger) *Server {
	return &Server{
		db:       db,
		finder:   finder,
		registry: registry,
		logger:   logger,
	}
}

func (s *Server) Run() error {
	mcpServer := server.NewMCPServer(
		"Bank Combination Finder",
		"1.0.0",
	)

	mcpServer.AddTool(mcp.NewTool("find_combinations",
		mcp.WithDescription("Find combinations of amounts that add up to a target sum, e.g. which transactions make up a payment"),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Target sum in currency units, e.g. 2245.35"),
		),
		mcp.WithString("amounts",
			mcp.Description("Amounts separated by whitespace or semicolons. Either amounts or file is required"),
		),
		mcp.WithString("file",
			mcp.Description("Path to a CSV or QIF file to read amounts from"),
		),
		mcp.WithString("format",
			mcp.Description("Format of the file (csv, qif). Default: csv"),
		),
		mcp.WithString("column",
			mcp.Description("Header of the amount column in a CSV file. Default: Amount"),
		),
		mcp.WithString("label_column",
			mcp.Description("Header of a CSV column to show next to each amount"),
		),
		mcp.WithString("tolerance",
			mcp.Description("Accepted distance from the target (default: 0.01)"),
		),
		mcp.WithString("max_size",
			mcp.Description("Maximum number of amounts in a combination (default: 5)"),
		),
		mcp.WithString("max_matches",
			mcp.Description("Stop after this many matches, 0 for unlimited (default: 50)"),
		),
		mcp.WithString("time_budget",
			mcp.Description("Time budget such as 10s (default: 30s)"),
		),
		mcp.WithString("negate",
			mcp.Description("Also search for the negated target (true/false)"),
		),
		mcp.WithString("save",
			mcp.Description("Save the run to history (true/false)"),
		),
	), s.findCombinationsHandler)

	mcpServer.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List saved combination searches, newest first"),
		mcp.WithString("limit",
			mcp.Description("Maximum number of runs to return (default: 20)"),
		),
	), s.listRunsHandler)

	mcpServer.AddTool(mcp.NewTool("get_run",
		mcp.WithDescription("Show the matches of a saved combination search"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Run ID as shown by list_runs"),
		),
	), s.getRunHandler)

	mcpServer.AddTool(mcp.NewTool("find_origin_runs",
		mcp.WithDescription("List saved runs where an amount appears in a match"),
		mcp.WithString("origin_id",
			mcp.Required(),
			mcp.Description("Origin ID of the amount, e.g. 12 or statement.csv:12"),
		),
	), s.findOriginRunsHandler)

	// Start the stdio server
	if err := server.ServeStdio(mcpServer); err != nil {
		return err
	}

	return nil
}

func (s *Server) findCombinationsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments

	if _, ok := args["target"]; !ok {
		return nil, errors.New("target is required")
	}
	targetValue, err := floatArg(args, "target", 0)
	if err != nil {
		return nil, err
	}
	tolerance, err := floatArg(args, "tolerance", 0.01)
	if err != nil {
		return nil, err
	}
	maxSize, err := intArg(args, "max_size", 5)
	if err != nil {
		return nil, err
	}
	maxMatches, err := intArg(args, "max_matches", 50)
	if err != nil {
		return nil, err
	}
	budget, err := durationArg(args, "time_budget", defaultTimeBudget)
	if err != nil {
		return nil, err
	}
	negate, err := boolArg(args, "negate", false)
	if err != nil {
		return nil, err
	}
	save, err := boolArg(args, "save", false)
	if err != nil {
		return nil, err
	}

	target, err := combination.NormalizeTarget(targetValue, tolerance)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg := types.SearchConfig{
		MaxCombinationSize:  maxSize,
		MaxMatches:          maxMatches,
		TimeBudget:          budget,
		SearchNegatedTarget: negate,
	}

	raw, origin, err := s.loadAmounts(ctx, args)
	if errors.Is(err, combination.ErrConfiguration) {
		return mcp.NewToolResultError(err.Error()), nil
	} else if err != nil {
		return nil, err
	}

	result, err := s.finder.FindRaw(ctx, raw, target, cfg)
	if errors.Is(err, combination.ErrConfiguration) {
		return mcp.NewToolResultError(err.Error()), nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to find combinations: %w", err)
	}

	var buf bytes.Buffer
	if err := report.Text(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to format result: %w", err)
	}

	if save {
		if s.db == nil {
			return nil, errors.New("run history is not available")
		}
		id, err := s.db.SaveRun(ctx, origin, result)
		if err != nil {
			return nil, fmt.Errorf("failed to save run: %w", err)
		}
		fmt.Fprintf(&buf, "\nSaved as run %s\n", id)
	}

	return mcp.NewToolResultText(buf.String()), nil
}

// loadAmounts reads raw amounts from either the amounts list or a file,
// returning them with a description of where they came from
func (s *Server) loadAmounts(ctx context.Context, args map[string]interface{}) ([]types.RawAmount, string, error) {
	list, _ := args["amounts"].(string)
	path, _ := args["file"].(string)

	switch {
	case list != "" && path != "":
		return nil, "", errors.New("only one of amounts or file may be given")
	case list != "":
		return source.ParseList(list), "list", nil
	case path == "":
		return nil, "", errors.New("one of amounts or file is required")
	}

	formatName, _ := args["format"].(string)
	if formatName == "" {
		formatName = "csv"
	}
	format, ok := s.registry.Get(formatName)
	if !ok {
		return nil, "", fmt.Errorf("unknown format %q, available formats: %s",
			formatName, strings.Join(s.registry.List(), ", "))
	}

	opts := source.Options{Column: source.DefaultColumn}
	if column, _ := args["column"].(string); column != "" {
		opts.Column = column
	}
	opts.LabelColumn, _ = args["label_column"].(string)

	raw, err := source.LoadFiles(ctx, format, []string{path}, opts)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load %s: %w", path, err)
	}
	return raw, path, nil
}

func (s *Server) listRunsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.db == nil {
		return nil, errors.New("run history is not available")
	}

	limit, err := intArg(request.Params.Arguments, "limit", 20)
	if err != nil {
		return nil, err
	}

	runs, err := s.db.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		return mcp.NewToolResultText("No saved runs\n"), nil
	}

	var result strings.Builder
	for _, r := range runs {
		fmt.Fprintf(&result, "%s: %s (tol=%s) from %s\n",
			r.ID, report.FormatMinorUnits(r.Target.Value), report.FormatMinorUnits(r.Target.Tolerance), r.Source)
		fmt.Fprintf(&result, "  Saved: %s\n", humanize.Time(r.CreatedAt))
		fmt.Fprintf(&result, "  Matches: %d  Status: %s  Explored: %s\n",
			r.Matches, r.Status, humanize.Comma(r.Explored))
		result.WriteString("\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (s *Server) getRunHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.db == nil {
		return nil, errors.New("run history is not available")
	}

	id, ok := request.Params.Arguments["id"].(string)
	if !ok || id == "" {
		return nil, errors.New("id must be a string")
	}

	run, err := s.db.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %s not found", id)), nil
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Run %s from %s, saved %s\n\n", run.ID, run.Source, humanize.Time(run.CreatedAt))
	if err := report.Text(&buf, run.Result); err != nil {
		return nil, fmt.Errorf("failed to format run: %w", err)
	}

	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) findOriginRunsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.db == nil {
		return nil, errors.New("run history is not available")
	}

	originID, ok := request.Params.Arguments["origin_id"].(string)
	if !ok || originID == "" {
		return nil, errors.New("origin_id must be a string")
	}

	ids, err := s.db.RunsForOrigin(ctx, originID)
	if err != nil {
		return nil, fmt.Errorf("failed to find runs: %w", err)
	}

	if len(ids) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No saved runs use %s\n", originID)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Runs using %s:\n%s\n", originID, strings.Join(ids, "\n"))), nil
}
