// Package patterns holds the static identifier tables and keyword lexicon
// the scorers run against. Everything here is built once at startup and is
// read-only afterwards, so a Library or Lexicon may be shared across goroutines.
package patterns

import (
	"regexp"
	"strings"

	"github.com/mikey/upi-risk-engine/internal/whitelist"
	"go.uber.org/zap"
)

const (
	// SafeListConfidence is reported for every safe-list hit
	SafeListConfidence = 0.95
	// ExtraScamConfidence is used for scam identifiers added through config
	ExtraScamConfidence = 0.98
	// KnownGoodReputation is the minimum reputation for a familiar bank handle
	KnownGoodReputation = 0.4
)

// LocalPartPattern is a suspicious shape for the part before '@'
type LocalPartPattern struct {
	Name string
	Expr *regexp.Regexp
}

var builtinSafe = map[string]float64{
	"pay@paytm":           SafeListConfidence,
	"paytm@paytm":         SafeListConfidence,
	"irctc@sbi":           SafeListConfidence,
	"lic@axisbank":        SafeListConfidence,
	"bsnl@sbi":            SafeListConfidence,
	"amazonpay@apl":       SafeListConfidence,
	"flipkart@axisbank":   SafeListConfidence,
	"swiggy@icici":        SafeListConfidence,
	"zomato@hdfcbank":     SafeListConfidence,
	"bigbasket@okicici":   SafeListConfidence,
	"electricity@oksbi":   SafeListConfidence,
	"merchant@ybl":        SafeListConfidence,
	"billdesk@hdfcbank":   SafeListConfidence,
	"razorpay@icici":      SafeListConfidence,
	"phonepemerchant@ybl": SafeListConfidence,
}

var builtinScam = map[string]float64{
	"verify@paytm":        0.99,
	"kyc.update@ybl":      0.99,
	"refund.help@okaxis":  0.98,
	"rbi.alert@oksbi":     0.99,
	"lottery.win@ybl":     0.99,
	"support1234@upi":     0.98,
	"sbi.care@okhdfcbank": 0.98,
	"prize.claim@paytm":   0.99,
	"kbc.winner@ybl":      0.99,
	"cashback.offer@upi":  0.98,
}

var localPartPatterns = []LocalPartPattern{
	{"numeric prefix", regexp.MustCompile(`^\d+[a-z]`)},
	{"verification lure", regexp.MustCompile(`^verify`)},
	{"refund lure", regexp.MustCompile(`refund`)},
	{"kyc lure", regexp.MustCompile(`^kyc`)},
	{"support with digits", regexp.MustCompile(`support\d+`)},
	{"helpdesk", regexp.MustCompile(`help.?desk`)},
	{"prize lure", regexp.MustCompile(`lottery|prize|winner|reward`)},
	{"cashback lure", regexp.MustCompile(`cashback`)},
	{"customer care", regexp.MustCompile(`customer.?care`)},
	{"bank impersonation", regexp.MustCompile(`(sbi|hdfc|icici|axis|paytm|phonepe|gpay|rbi)[._-]?(care|support|help)`)},
	{"urgency", regexp.MustCompile(`urgent|alert|block`)},
}

// Matched as plain substrings of the whole identifier.
var suspiciousTerms = []string{
	"kyc", "verify", "refund", "fraud", "scam", "fake", "alert",
	"secure", "lottery", "reward", "prize", "update",
}

var domainReputation = map[string]float64{
	"okaxis":     0.5,
	"oksbi":      0.5,
	"okhdfcbank": 0.5,
	"okicici":    0.5,
	"ybl":        0.5,
	"paytm":      0.5,
	"apl":        0.4,
	"ibl":        0.4,
	"axl":        0.4,
	"axisbank":   0.4,
	"hdfcbank":   0.4,
	"icici":      0.4,
	"sbi":        0.4,
	"upi":        0.3,

	// lookalikes
	"paytmm":       -0.6,
	"okaxiss":      -0.6,
	"ybll":         -0.5,
	"upii":         -0.5,
	"verification": -0.8,
	"hack":         -0.9,
}

// Library is the identifier pattern library
type Library struct {
	safe *whitelist.Checker
	scam *whitelist.Checker
}

// NewLibrary builds the library from the built-in tables plus identifiers from config
func NewLibrary(extraSafe, extraScam []string, logger *zap.Logger) *Library {
	return &Library{
		safe: whitelist.NewChecker("safe", builtinSafe, extraSafe, SafeListConfidence, logger),
		scam: whitelist.NewChecker("scam", builtinScam, extraScam, ExtraScamConfidence, logger),
	}
}

// IsSafe reports an exact safe-list hit
func (l *Library) IsSafe(identifier string) bool {
	return l.safe.Contains(identifier)
}

// ScamConfidence returns the listed confidence for an exact scam-list hit
func (l *Library) ScamConfidence(identifier string) (float64, bool) {
	return l.scam.Lookup(identifier)
}

// DomainReputation returns the signed reputation of a handle
func (l *Library) DomainReputation(domain string) (float64, bool) {
	rep, ok := domainReputation[strings.ToLower(domain)]
	return rep, ok
}

// IsKnownGoodDomain reports whether domain is a familiar bank or wallet handle
func (l *Library) IsKnownGoodDomain(domain string) bool {
	rep, ok := l.DomainReputation(domain)
	return ok && rep >= KnownGoodReputation
}

// LooksSuspiciousDomain reports a handle with negative reputation or a
// suspicious term in it
func (l *Library) LooksSuspiciousDomain(domain string) bool {
	if rep, ok := l.DomainReputation(domain); ok {
		return rep < 0
	}
	_, hit := l.SuspiciousTerm(domain)
	return hit
}

// SuspiciousTerm returns the first suspicious term contained in s
func (l *Library) SuspiciousTerm(s string) (string, bool) {
	s = strings.ToLower(s)
	for _, term := range suspiciousTerms {
		if strings.Contains(s, term) {
			return term, true
		}
	}
	return "", false
}

// MatchLocalPart returns the first suspicious pattern the local-part matches
func (l *Library) MatchLocalPart(local string) (LocalPartPattern, bool) {
	for _, p := range localPartPatterns {
		if p.Expr.MatchString(local) {
			return p, true
		}
	}
	return LocalPartPattern{}, false
}
