package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

// Migration is a schema change applied once, inside its own transaction
type Migration struct {
	ID   int
	Name string
	Up   func(ctx context.Context, tx *sql.Tx) error
}

// migrations are applied in order. IDs must never be reused; append new
// entries rather than editing applied ones.
var migrations = []Migration{
	{
		ID:   1,
		Name: "index match items by origin",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_match_items_origin ON match_items(origin_id)`)
			return err
		},
	},
	{
		ID:   2,
		Name: "index runs by status",
		Up: func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status, created_at)`)
			return err
		},
	},
}

// ApplyMigrations applies all pending migrations to the database
func ApplyMigrations(ctx context.Context, db *sql.DB, logger *log.Logger) error {
	return applyMigrations(ctx, db, migrations, logger)
}

func applyMigrations(ctx context.Context, db *sql.DB, pending []Migration, logger *log.Logger) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range pending {
		if applied[m.ID] {
			continue
		}
		logger.Info("Applying migration", "id", m.ID, "name", m.Name)
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.ID, m.Name, err)
		}
	}

	return nil
}

func appliedMigrations(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT id FROM migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		applied[id] = true
	}
	return applied, rows.Err()
}

// applyMigration runs m and records it atomically, so a failed migration
// leaves neither its changes nor its row behind
func applyMigration(ctx context.Context, db *sql.DB, m Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.Up(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO migrations (id, name) VALUES (?, ?)`, m.ID, m.Name); err != nil {
		return err
	}
	return tx.Commit()
}
