package reports

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS scam_reports (
		id CHAR(36) PRIMARY KEY,
		identifier VARCHAR(255) NOT NULL,
		category VARCHAR(64) NOT NULL,
		amount_lost DOUBLE NULL,
		description TEXT NOT NULL,
		reported_at BIGINT NOT NULL,
		INDEX idx_scam_reports_identifier (identifier)
	)`,
}

// NewMySQLStore connects to MySQL and ensures the report table exists
func NewMySQLStore(dsn string, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	store, err := newSQLStore(db, "mysql", mysqlSchema, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
