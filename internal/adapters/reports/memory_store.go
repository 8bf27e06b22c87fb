package reports

import (
	"context"
	"sort"
	"sync"

	"github.com/mikey/upi-risk-engine/internal/core"
)

// MemoryStore keeps scam reports in memory
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string][]core.ScamReport
}

// NewMemoryStore creates an empty in-memory report store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports: make(map[string][]core.ScamReport),
	}
}

// SaveReport stores a report
func (s *MemoryStore) SaveReport(ctx context.Context, report *core.ScamReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *report
	if r.AmountLost != nil {
		amount := *r.AmountLost
		r.AmountLost = &amount
	}
	s.reports[r.Identifier] = append(s.reports[r.Identifier], r)
	return nil
}

// GetReportsByIdentifier returns the reports for identifier, oldest first
func (s *MemoryStore) GetReportsByIdentifier(ctx context.Context, identifier string) ([]core.ScamReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.ScamReport, len(s.reports[identifier]))
	copy(out, s.reports[identifier])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// GetMostCommonCategory returns the most reported category. Ties go to the
// alphabetically first category.
func (s *MemoryStore) GetMostCommonCategory(ctx context.Context, identifier string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, r := range s.reports[identifier] {
		counts[r.Category]++
	}

	best, bestCount := "", 0
	for cat, n := range counts {
		if n > bestCount || (n == bestCount && cat < best) {
			best, bestCount = cat, n
		}
	}
	return best, nil
}
