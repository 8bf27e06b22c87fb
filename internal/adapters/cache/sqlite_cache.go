package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS oracle_cache (
			cache_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			last_seen INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_oracle_cache_expires_at ON oracle_cache(expires_at)`,
	},
	upsert: `INSERT OR REPLACE INTO oracle_cache (cache_key, payload, last_seen, expires_at) VALUES (?, ?, ?, ?)`,
}

// NewSQLiteCache opens (or creates) a SQLite cache at dbPath
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	cache, err := newSQLCache(db, sqliteDialect, logger, cleanupFreq)
	if err != nil {
		db.Close()
		return nil, err
	}
	return cache, nil
}
