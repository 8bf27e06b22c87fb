// Package upi classifies UPI identifiers as safe, suspicious or scam.
package upi

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/patterns"
	"go.uber.org/zap"
)

const (
	scamThreshold       = 0.7
	suspiciousThreshold = 0.4
	singleReportConf    = 0.7
)

var recommendations = map[core.Status][]string{
	core.StatusSafe: {
		"Check the payee name shown in your UPI app before paying",
		"Never share your UPI PIN or OTP with anyone",
		"Keep the payment receipt for your records",
	},
	core.StatusSuspicious: {
		"Confirm the recipient through a trusted channel before paying",
		"Start with a small amount if you must pay",
		"Do not approve collect requests you did not initiate",
		"Report the identifier if you were contacted unexpectedly",
	},
	core.StatusScam: {
		"Do not send money to this identifier",
		"Block and report the contact in your UPI app",
		"Call 1930 or file a complaint at cybercrime.gov.in if you already paid",
		"Never share your UPI PIN, OTP or card details",
	},
}

// Recommendations returns the advice shown for a status
func Recommendations(status core.Status) []string {
	recs := recommendations[status]
	out := make([]string, len(recs))
	copy(out, recs)
	return out
}

// Classifier produces verdicts for UPI identifiers
type Classifier struct {
	lib    *patterns.Library
	store  core.ReportStore
	logger *zap.Logger
}

// NewClassifier creates a classifier. store may be nil, in which case the
// report history step is skipped.
func NewClassifier(lib *patterns.Library, store core.ReportStore, logger *zap.Logger) *Classifier {
	return &Classifier{
		lib:    lib,
		store:  store,
		logger: logger,
	}
}

// Classify returns a verdict for identifier. Only a malformed identifier is an
// error; a failing report store degrades to the pattern path.
func (c *Classifier) Classify(ctx context.Context, identifier string) (*core.ClassificationVerdict, error) {
	id, err := ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	key := id.String()

	if c.lib.IsSafe(key) {
		return c.verdict(key, core.StatusSafe, "Verified merchant identifier", patterns.SafeListConfidence, nil, 0), nil
	}

	if conf, ok := c.lib.ScamConfidence(key); ok {
		return c.verdict(key, core.StatusScam, "Identifier is on the known scam list", conf,
			[]string{"Listed as a known scam identifier"}, 0), nil
	}

	var factors []string
	reportCount := 0
	if c.store != nil {
		reports, err := c.store.GetReportsByIdentifier(ctx, key)
		if err != nil {
			c.logger.Warn("Report lookup failed, continuing with pattern analysis",
				zap.String("identifier", key),
				zap.Error(err))
			factors = append(factors, "Report history unavailable")
		} else {
			reportCount = len(reports)
		}
	}

	if reportCount >= 2 {
		conf := min(0.9+0.02*float64(reportCount), 0.99)
		reason := fmt.Sprintf("Reported %d times by other users", reportCount)
		if cat := c.mostCommonCategory(ctx, key); cat != "" {
			reason += fmt.Sprintf(" (mostly %s)", cat)
		}
		return c.verdict(key, core.StatusScam, reason, conf, append(factors, reason), reportCount), nil
	}

	score, patternFactors := c.PatternScore(id)
	factors = append(factors, patternFactors...)
	status, conf := bucket(score)

	if reportCount == 1 {
		reason := "Reported once by another user"
		factors = append(factors, reason)
		if status == core.StatusScam {
			return c.verdict(key, status, reason+"; suspicious patterns detected", conf, factors, reportCount), nil
		}
		return c.verdict(key, core.StatusSuspicious, reason, singleReportConf, factors, reportCount), nil
	}

	reason := "No suspicious patterns detected"
	if status != core.StatusSafe {
		reason = "Suspicious patterns detected: " + strings.Join(patternFactors, "; ")
	}

	c.logger.Debug("Classified identifier by pattern",
		zap.String("identifier", key),
		zap.Float64("score", score),
		zap.String("status", string(status)))

	return c.verdict(key, status, reason, conf, factors, 0), nil
}

func (c *Classifier) mostCommonCategory(ctx context.Context, key string) string {
	cat, err := c.store.GetMostCommonCategory(ctx, key)
	if err != nil {
		c.logger.Warn("Category lookup failed", zap.String("identifier", key), zap.Error(err))
		return ""
	}
	return cat
}

func (c *Classifier) verdict(key string, status core.Status, reason string, conf float64, factors []string, reports int) *core.ClassificationVerdict {
	if factors == nil {
		factors = []string{}
	}
	return &core.ClassificationVerdict{
		Identifier:      key,
		Status:          status,
		Reason:          reason,
		ConfidenceScore: clamp01(conf),
		RiskFactors:     factors,
		Recommendations: Recommendations(status),
		ReportCount:     reports,
	}
}

// PatternScore scores an identifier from its shape alone, in [0,1]
func (c *Classifier) PatternScore(id Identifier) (float64, []string) {
	var score float64
	var factors []string

	if rep, ok := c.lib.DomainReputation(id.Domain); ok {
		switch {
		case rep < 0:
			score += -rep * 0.4
			factors = append(factors, fmt.Sprintf("Handle @%s has a poor reputation", id.Domain))
		case rep > 0:
			score -= rep * 0.3
		}
	}

	if term, ok := c.lib.SuspiciousTerm(id.String()); ok {
		score += 0.3
		factors = append(factors, fmt.Sprintf("Contains suspicious term %q", term))
	}

	if p, ok := c.lib.MatchLocalPart(id.Local); ok {
		score += 0.3
		factors = append(factors, "Matches suspicious pattern: "+p.Name)
	}

	runes := []rune(id.Local)
	n := len(runes)
	switch {
	case n < 3:
		score += 0.1
		factors = append(factors, "Unusually short name")
	case n > 15:
		score += 0.1
		factors = append(factors, "Unusually long name")
	}

	if longestRun(runes) >= 4 {
		score += 0.2
		factors = append(factors, "Repeated characters")
	}

	if uniqueRatio(runes) < 0.3 {
		score += 0.1
		factors = append(factors, "Low character variety")
	}

	digits := 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits > 5 {
		score += 0.2
		factors = append(factors, "Many digits in name")
	}
	if digits == n {
		score += 0.3
		factors = append(factors, "Name is all digits")
	}

	return clamp01(score), factors
}

func bucket(score float64) (core.Status, float64) {
	switch {
	case score > scamThreshold:
		return core.StatusScam, score
	case score > suspiciousThreshold:
		return core.StatusSuspicious, score
	default:
		return core.StatusSafe, 1 - score
	}
}

func longestRun(runes []rune) int {
	best, run := 0, 0
	for i, r := range runes {
		if i > 0 && r == runes[i-1] {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
	}
	return best
}

func uniqueRatio(runes []rune) float64 {
	if len(runes) == 0 {
		return 0
	}
	seen := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		seen[r] = struct{}{}
	}
	return float64(len(seen)) / float64(len(runes))
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
