package qr

import (
	"context"

	"github.com/mikey/upi-risk-engine/internal/core"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds parallel analyses in AnalyzeBatch
const DefaultBatchConcurrency = 8

// AnalyzeBatch analyzes payloads concurrently, keeping input order. It only
// fails if ctx is cancelled before every payload is analyzed.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, texts []string, concurrency int) ([]*core.QRAnalysisResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	results := make([]*core.QRAnalysisResult, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.Analyze(gctx, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
