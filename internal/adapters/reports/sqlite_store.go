package reports

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS scam_reports (
		id TEXT PRIMARY KEY,
		identifier TEXT NOT NULL,
		category TEXT NOT NULL,
		amount_lost REAL,
		description TEXT NOT NULL DEFAULT '',
		reported_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scam_reports_identifier ON scam_reports(identifier)`,
}

// NewSQLiteStore opens (or creates) a SQLite report store at dbPath
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store, err := newSQLStore(db, "sqlite", sqliteSchema, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
