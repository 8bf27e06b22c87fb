package core

import (
	"context"
)

// ReportStore is the read side of the scam report store
type ReportStore interface {
	// GetReportsByIdentifier returns all reports filed against an identifier
	GetReportsByIdentifier(ctx context.Context, identifier string) ([]ScamReport, error)

	// GetMostCommonCategory returns the most frequent category, or "" when there are no reports
	GetMostCommonCategory(ctx context.Context, identifier string) (string, error)
}

// ReportRepository adds writes to ReportStore
type ReportRepository interface {
	ReportStore

	// SaveReport persists a report
	SaveReport(ctx context.Context, report *ScamReport) error
}

// ContextOracle defines the interface for an AI service judging free text
type ContextOracle interface {
	// AssessContext returns a risk opinion on the request
	AssessContext(ctx context.Context, req ContextRequest) (*ContextAssessment, error)
}

// CacheRepository defines the interface for caching oracle assessments
type CacheRepository interface {
	// Get retrieves an unexpired entry, or ErrNotFound
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
