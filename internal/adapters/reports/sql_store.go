package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/upi-risk-engine/internal/core"
	"go.uber.org/zap"
)

const (
	insertReportQuery  = `INSERT INTO scam_reports (id, identifier, category, amount_lost, description, reported_at) VALUES (?, ?, ?, ?, ?, ?)`
	selectReportsQuery = `SELECT id, identifier, category, amount_lost, description, reported_at FROM scam_reports WHERE identifier = ? ORDER BY reported_at, id`
	topCategoryQuery   = `SELECT category, COUNT(*) AS c FROM scam_reports WHERE identifier = ? GROUP BY category ORDER BY c DESC, category ASC LIMIT 1`
)

// SQLStore keeps scam reports in a SQL table
type SQLStore struct {
	db     *sql.DB
	name   string
	logger *zap.Logger
}

func newSQLStore(db *sql.DB, name string, schema []string, logger *zap.Logger) (*SQLStore, error) {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create %s report schema: %w", name, err)
		}
	}
	return &SQLStore{db: db, name: name, logger: logger}, nil
}

// SaveReport inserts a report
func (s *SQLStore) SaveReport(ctx context.Context, report *core.ScamReport) error {
	var amount sql.NullFloat64
	if report.AmountLost != nil {
		amount = sql.NullFloat64{Float64: *report.AmountLost, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, insertReportQuery,
		report.ID, report.Identifier, report.Category, amount, report.Description, report.Timestamp.Unix())
	if err != nil {
		return fmt.Errorf("%w: failed to insert report: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

// GetReportsByIdentifier returns the reports for identifier, oldest first
func (s *SQLStore) GetReportsByIdentifier(ctx context.Context, identifier string) ([]core.ScamReport, error) {
	rows, err := s.db.QueryContext(ctx, selectReportsQuery, identifier)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query reports: %v", core.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := []core.ScamReport{}
	for rows.Next() {
		var r core.ScamReport
		var amount sql.NullFloat64
		var reportedAt int64
		if err := rows.Scan(&r.ID, &r.Identifier, &r.Category, &amount, &r.Description, &reportedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan report: %v", core.ErrStoreUnavailable, err)
		}
		if amount.Valid {
			v := amount.Float64
			r.AmountLost = &v
		}
		r.Timestamp = time.Unix(reportedAt, 0).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return out, nil
}

// GetMostCommonCategory returns the most reported category, or "" if none
func (s *SQLStore) GetMostCommonCategory(ctx context.Context, identifier string) (string, error) {
	var category string
	var count int
	err := s.db.QueryRowContext(ctx, topCategoryQuery, identifier).Scan(&category, &count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("%w: failed to query categories: %v", core.ErrStoreUnavailable, err)
	}
	return category, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close report database", zap.String("backend", s.name), zap.Error(err))
		return err
	}
	return nil
}
