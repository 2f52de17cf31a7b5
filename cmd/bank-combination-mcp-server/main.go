package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lox/bank-combination-finder/internal/combination"
	"github.com/lox/bank-combination-finder/internal/commands"
	"github.com/lox/bank-combination-finder/internal/mcp"
	"github.com/lox/bank-combination-finder/internal/source"
)

type CLI struct {
	commands.CommonConfig
}

func (c *CLI) Run() error {
	// stdout carries the protocol, so logs go to stderr
	logger, err := commands.NewLogger(os.Stderr, c.LogLevel, "mcp")
	if err != nil {
		return err
	}

	database, err := commands.SetupDatabase(c.CommonConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer database.Close()

	s := mcp.New(database, combination.NewFinder(logger), source.DefaultRegistry(), logger)
	logger.Info("Starting MCP server", "data_dir", c.DataDir)
	return s.Run()
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bank-combination-mcp-server"),
		kong.Description("MCP server for finding combinations of amounts that add up to a target"),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
