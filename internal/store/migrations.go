package store

import (
	"database/sql"
	"fmt"

	"github.com/hyperengineering/lexicon/migrations"
	"github.com/pressly/goose/v3"
)

// gooseTable is the bookkeeping table goose keeps inside the image.
const gooseTable = "goose_db_version"

// RunMigrations applies all pending migrations from the embedded FS.
func RunMigrations(db *sql.DB) error {
	// Disable goose's default logging to avoid stdout noise
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(gooseTable)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
