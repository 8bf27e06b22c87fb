// Package oracle wraps the optional AI context oracle so callers only ever see
// an assessment or Unavailable, never an error.
package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

var errInvalidScore = errors.New("oracle returned a non-finite risk score")

// Options tune the oracle call
type Options struct {
	Timeout    time.Duration
	MaxRetries uint64
	Backoff    time.Duration
	CacheTTL   time.Duration
}

// Advisor calls the oracle with a bounded timeout, retries and a TTL cache
type Advisor struct {
	oracle core.ContextOracle
	cache  core.CacheRepository
	opts   Options
	logger *zap.Logger
}

// NewAdvisor creates an advisor. oracle and cache may both be nil.
func NewAdvisor(oracle core.ContextOracle, cache core.CacheRepository, opts Options, logger *zap.Logger) *Advisor {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 200 * time.Millisecond
	}
	return &Advisor{
		oracle: oracle,
		cache:  cache,
		opts:   opts,
		logger: logger,
	}
}

// Available reports whether an oracle is configured
func (a *Advisor) Available() bool {
	return a != nil && a.oracle != nil
}

// Assess asks the oracle about req. Timeouts, errors, bad replies and a
// missing oracle all yield Unavailable.
func (a *Advisor) Assess(ctx context.Context, req core.ContextRequest) core.OracleResult {
	if !a.Available() {
		return core.OracleUnavailable(fmt.Errorf("%w: not configured", core.ErrOracleUnavailable))
	}
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.Counterparty) == "" {
		return core.OracleUnavailable(fmt.Errorf("%w: nothing to assess", core.ErrOracleUnavailable))
	}

	key := cacheKey(req)
	if a.cache != nil {
		if entry, err := a.cache.Get(ctx, key); err == nil {
			a.logger.Debug("Oracle cache hit", zap.String("key", key))
			assessment := entry.Assessment
			return core.OracleOk(&assessment)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	var assessment *core.ContextAssessment
	backoff := retry.WithMaxRetries(a.opts.MaxRetries, retry.NewExponential(a.opts.Backoff))
	err := retry.Do(callCtx, backoff, func(ctx context.Context) error {
		res, err := a.oracle.AssessContext(ctx, req)
		if err != nil {
			a.logger.Debug("Oracle call failed, will retry", zap.Error(err))
			return retry.RetryableError(err)
		}
		if res == nil || math.IsNaN(res.RiskScore) || math.IsInf(res.RiskScore, 0) {
			return errInvalidScore
		}
		assessment = res
		return nil
	})
	if err != nil {
		a.logger.Warn("AI oracle unavailable, continuing without it", zap.Error(err))
		return core.OracleUnavailable(fmt.Errorf("%w: %v", core.ErrOracleUnavailable, err))
	}

	assessment.RiskScore = max(0, min(1, assessment.RiskScore))
	if assessment.AnalyzedAt.IsZero() {
		assessment.AnalyzedAt = time.Now()
	}

	if a.cache != nil && a.opts.CacheTTL > 0 {
		now := time.Now()
		entry := &core.CacheEntry{
			Key:        key,
			Assessment: *assessment,
			LastSeen:   now,
			ExpiresAt:  now.Add(a.opts.CacheTTL),
		}
		if err := a.cache.Set(ctx, entry); err != nil {
			a.logger.Error("Failed to update oracle cache", zap.Error(err))
		}
	}

	return core.OracleOk(assessment)
}

func cacheKey(req core.ContextRequest) string {
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
