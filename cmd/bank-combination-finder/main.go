package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lox/bank-combination-finder/internal/combination"
	"github.com/lox/bank-combination-finder/internal/commands"
	"github.com/lox/bank-combination-finder/internal/report"
	"github.com/lox/bank-combination-finder/internal/source"
)

type CLI struct {
	commands.CommonConfig
	commands.SearchConfig

	Files       []string `arg:"" help:"CSV or QIF files to read amounts from" type:"existingfile"`
	Format      string   `help:"Input format" default:"csv" enum:"csv,qif"`
	Column      string   `help:"Header of the amount column" default:"Amount"`
	LabelCol    string   `help:"Header of a column to show next to each amount" name:"label-col"`
	Delimiter   string   `help:"Field delimiter for CSV input" default:","`
	Output      string   `help:"Output format" default:"text" enum:"text,json"`
	Save        bool     `help:"Save the run to the history database" default:"false"`
	NoProgress  bool     `help:"Disable progress spinner" default:"false"`
	Concurrency int      `help:"Number of files to read at once" default:"4"`
}

func (c *CLI) Run() error {
	logger, err := commands.NewLogger(os.Stderr, c.LogLevel, "")
	if err != nil {
		return err
	}

	// Configuration errors are reported before any input is read
	target, cfg, err := c.SearchConfig.Resolve()
	if err != nil {
		return err
	}

	delimiter := []rune(c.Delimiter)
	if len(delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}

	registry := source.DefaultRegistry()
	format, ok := registry.Get(c.Format)
	if !ok {
		logger.Fatal("Unknown format", "format", c.Format, "available", registry.List())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	raw, err := source.LoadFiles(ctx, format, c.Files, source.Options{
		Column:      c.Column,
		LabelColumn: c.LabelCol,
		Delimiter:   delimiter[0],
		Concurrency: c.Concurrency,
	})
	if err != nil {
		return err
	}
	logger.Info("Loaded amounts", "count", len(raw), "files", len(c.Files))

	var progress combination.Progress = combination.NewNoopProgress()
	if !c.NoProgress && c.Output == "text" {
		progress = combination.NewSpinnerProgress()
	}

	finder := combination.NewFinder(logger, combination.WithFinderProgress(progress))
	result, err := finder.FindRaw(ctx, raw, target, cfg)
	progress.Close()
	if err != nil {
		return err
	}

	if c.Output == "json" {
		err = report.JSON(os.Stdout, result)
	} else {
		err = report.Text(os.Stdout, result)
	}
	if err != nil {
		return err
	}

	if c.Save {
		database, err := commands.SetupDatabase(c.CommonConfig, logger)
		if err != nil {
			return err
		}
		defer database.Close()

		// Saving happens after an interrupted search too, so use a fresh context
		id, err := database.SaveRun(context.Background(), strings.Join(c.Files, ","), result)
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		logger.Info("Saved run", "id", id)
		fmt.Fprintf(os.Stderr, "Saved as run %s\n", id)
	}

	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bank-combination-finder"),
		kong.Description("Find combinations of amounts that add up to a target sum"),
		kong.UsageOnError(),
		kong.Configuration(commands.YAMLProfile, commands.ProfilePaths...),
	)

	err := ctx.Run()
	if errors.Is(err, combination.ErrConfiguration) {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
