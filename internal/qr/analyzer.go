// Package qr scores decoded QR payloads: UPI deep links, web links and plain text.
package qr

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/upi"
	"go.uber.org/zap"
)

const (
	highThreshold   = 70
	mediumThreshold = 40
	maxScore        = 100

	keywordCap    = 40
	urlKeywordCap = 30
)

var (
	upiKeywords = []string{
		"verify", "kyc", "urgent", "refund", "block", "winner", "expire",
		"update", "limited", "prize", "lottery", "reward", "alert",
	}

	urlKeywords = []string{
		"login", "signin", "verify", "account", "secure", "banking",
		"update", "password", "kyc",
	}

	shorteners = []string{
		"bit.ly", "goo.gl", "tinyurl.com", "t.co", "is.gd", "cli.gs", "ow.ly",
	}

	trivialAmounts = []float64{0, 0.01, 1}

	credentialPattern = regexp.MustCompile(`(?i)\b(password|passcode|otp|pin|cvv)\b`)
	longDigitsPattern = regexp.MustCompile(`\d{10,}`)
	embeddedVPA       = regexp.MustCompile(`[a-zA-Z0-9._-]+@[a-zA-Z][a-zA-Z0-9.]*[a-zA-Z0-9]`)
)

// IdentifierClassifier is the part of the UPI classifier the QR analyzer uses
type IdentifierClassifier interface {
	Classify(ctx context.Context, identifier string) (*core.ClassificationVerdict, error)
}

// Analyzer scores QR payloads
type Analyzer struct {
	classifier IdentifierClassifier
	logger     *zap.Logger
}

// NewAnalyzer creates a QR analyzer. classifier may be nil, which skips the
// payee reputation check.
func NewAnalyzer(classifier IdentifierClassifier, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		classifier: classifier,
		logger:     logger,
	}
}

// DetectType classifies a payload by its scheme prefix
func DetectType(text string) core.QRType {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.HasPrefix(lower, "upi://"):
		return core.QRTypeUPI
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return core.QRTypeURL
	default:
		return core.QRTypeText
	}
}

// ParseUPI extracts pa, pn, am and tn from a upi:// link
func ParseUPI(text string) (*core.UPIPayload, error) {
	_, query, _ := strings.Cut(strings.TrimSpace(text), "?")
	values, err := url.ParseQuery(query)
	payload := &core.UPIPayload{
		PayeeAddress: strings.TrimSpace(values.Get("pa")),
		PayeeName:    strings.TrimSpace(values.Get("pn")),
		Amount:       strings.TrimSpace(values.Get("am")),
		Note:         strings.TrimSpace(values.Get("tn")),
	}
	return payload, err
}

// Level buckets a 0-100 score
func Level(score int) core.QRRiskLevel {
	switch {
	case score >= highThreshold:
		return core.QRRiskHigh
	case score >= mediumThreshold:
		return core.QRRiskMedium
	default:
		return core.QRRiskLow
	}
}

type scorecard struct {
	score   int
	reasons []string
}

func (s *scorecard) add(points int, reason string) {
	s.score += points
	s.reasons = append(s.reasons, reason)
}

// Analyze scores a QR payload. It never fails; unknown formats are treated as
// plain text.
func (a *Analyzer) Analyze(ctx context.Context, qrText string) *core.QRAnalysisResult {
	text := strings.TrimSpace(qrText)
	if text == "" {
		return &core.QRAnalysisResult{
			RiskLevel: core.QRRiskLow,
			Reasons:   []string{"Empty QR content"},
			QRType:    core.QRTypeText,
		}
	}

	result := &core.QRAnalysisResult{QRType: DetectType(text)}
	sc := &scorecard{}

	switch result.QRType {
	case core.QRTypeUPI:
		result.UPI = a.scoreUPI(ctx, text, sc)
	case core.QRTypeURL:
		scoreURL(text, sc)
	default:
		a.scoreText(ctx, text, sc)
	}

	result.RiskScore = max(0, min(maxScore, sc.score))
	result.RiskLevel = Level(result.RiskScore)
	result.Reasons = sc.reasons
	if len(result.Reasons) == 0 {
		result.Reasons = []string{"No suspicious patterns detected"}
	}

	a.logger.Debug("Analyzed QR payload",
		zap.String("type", string(result.QRType)),
		zap.Int("score", result.RiskScore))

	return result
}

func (a *Analyzer) scoreUPI(ctx context.Context, text string, sc *scorecard) *core.UPIPayload {
	payload, err := ParseUPI(text)
	if err != nil {
		sc.add(10, "Malformed UPI parameters")
	}

	var local string
	if payload.PayeeAddress == "" {
		sc.add(30, "Missing payee address (pa)")
	} else if id, err := upi.ParseIdentifier(payload.PayeeAddress); err != nil {
		sc.add(20, "Payee address is not a valid UPI ID")
	} else {
		local = id.Local
	}
	if payload.PayeeName == "" {
		sc.add(15, "Missing payee name (pn)")
	}

	haystack := strings.ToLower(payload.PayeeName + " " + payload.Note + " " + local)
	keywordPoints := 0
	for _, kw := range upiKeywords {
		if !strings.Contains(haystack, kw) {
			continue
		}
		sc.reasons = append(sc.reasons, fmt.Sprintf("Suspicious keyword in UPI payload: '%s'", kw))
		keywordPoints = min(keywordCap, keywordPoints+20)
	}
	sc.score += keywordPoints

	if payload.Amount != "" {
		amount, err := strconv.ParseFloat(payload.Amount, 64)
		switch {
		case err != nil:
			sc.add(10, "Malformed amount")
		case isTrivialAmount(amount):
			sc.add(25, fmt.Sprintf("Trivial amount %s (common verification scam)", payload.Amount))
		case amount > 10000:
			sc.add(10, "Large pre-filled amount")
		}
	}

	if local != "" {
		a.scoreIdentifier(ctx, payload.PayeeAddress, "Payee", sc)
	}

	return payload
}

func (a *Analyzer) scoreIdentifier(ctx context.Context, identifier, label string, sc *scorecard) {
	if a.classifier == nil {
		return
	}
	v, err := a.classifier.Classify(ctx, identifier)
	if err != nil {
		return
	}
	switch v.Status {
	case core.StatusScam:
		sc.add(30, fmt.Sprintf("%s %s flagged as scam: %s", label, v.Identifier, v.Reason))
	case core.StatusSuspicious:
		sc.add(15, fmt.Sprintf("%s %s looks suspicious: %s", label, v.Identifier, v.Reason))
	}
}

func isTrivialAmount(amount float64) bool {
	for _, t := range trivialAmounts {
		if amount == t {
			return true
		}
	}
	return false
}

func scoreURL(text string, sc *scorecard) {
	if strings.HasPrefix(strings.ToLower(text), "http://") {
		sc.add(20, "Non-secure HTTP connection")
	}

	u, err := url.Parse(text)
	if err != nil || u.Hostname() == "" {
		sc.add(20, "Malformed URL")
		return
	}
	host := strings.ToLower(u.Hostname())

	if net.ParseIP(host) != nil {
		sc.add(40, "IP address used instead of domain name")
	}

	for _, s := range shorteners {
		if host == s || strings.HasSuffix(host, "."+s) {
			sc.add(30, fmt.Sprintf("Shortened URL detected: %s", host))
			break
		}
	}

	if net.ParseIP(host) == nil && strings.Count(host, ".") > 3 {
		sc.add(15, "Excessive number of subdomains")
	}

	if strings.Contains(host, "xn--") {
		sc.add(15, "Internationalized (punycode) domain")
	}

	target := strings.ToLower(host + u.EscapedPath() + "?" + u.RawQuery)
	keywordPoints := 0
	for _, kw := range urlKeywords {
		if !strings.Contains(target, kw) {
			continue
		}
		sc.reasons = append(sc.reasons, fmt.Sprintf("Suspicious keyword in URL: '%s'", kw))
		keywordPoints = min(urlKeywordCap, keywordPoints+10)
	}
	sc.score += keywordPoints
}

func (a *Analyzer) scoreText(ctx context.Context, text string, sc *scorecard) {
	if credentialPattern.MatchString(text) {
		sc.add(30, "Requests credentials (OTP, PIN or password)")
	}
	if longDigitsPattern.MatchString(text) {
		sc.add(20, "Contains a long number (possible card or phone number)")
	}
	if vpa := embeddedVPA.FindString(text); vpa != "" {
		a.scoreIdentifier(ctx, vpa, "Embedded UPI ID", sc)
	}
}
