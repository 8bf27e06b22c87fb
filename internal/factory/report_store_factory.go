package factory

import (
	"fmt"

	"github.com/mikey/upi-risk-engine/internal/adapters/reports"
	"github.com/mikey/upi-risk-engine/internal/config"
	"github.com/mikey/upi-risk-engine/internal/core"
	"go.uber.org/zap"
)

// ReportStoreFactory creates the scam report store
type ReportStoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewReportStoreFactory creates a new report store factory
func NewReportStoreFactory(cfg *config.Config, logger *zap.Logger) *ReportStoreFactory {
	return &ReportStoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateReportRepository creates a report store based on the configuration
func (f *ReportStoreFactory) CreateReportRepository() (core.ReportRepository, error) {
	rc := f.cfg.GetReports()

	switch rc.Type {
	case "", "memory":
		f.logger.Info("Using in-memory report store")
		return reports.NewMemoryStore(), nil
	case "sqlite":
		if err := ensureDir(rc.SQLitePath); err != nil {
			return nil, err
		}
		return reports.NewSQLiteStore(rc.SQLitePath, f.logger)
	case "mysql":
		return reports.NewMySQLStore(rc.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported report store type: %s", rc.Type)
	}
}
