package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/bank-combination-finder/internal/db"
)

// NewLogger creates a logger writing to w at the given level
func NewLogger(w io.Writer, level string, prefix string) (*log.Logger, error) {
	logger := log.NewWithOptions(w, log.Options{
		Level:  log.WarnLevel,
		Prefix: prefix,
	})

	parsed, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(parsed)

	return logger, nil
}

// SetupDatabase opens the run history in the configured data directory
func SetupDatabase(config CommonConfig, logger *log.Logger) (*db.DB, error) {
	database, err := db.New(config.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return database, nil
}
