package textscan

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/mikey/upi-risk-engine/internal/core"
)

const (
	aiWeight        = 0.7
	keywordWeight   = 0.3
	keywordOverride = 0.7
	scamCutoff      = 0.5
	cautionCutoff   = 0.3
)

var (
	urlPattern = regexp.MustCompile(`https?://\S+|www\.\S+`)

	scamPhrasePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)urgent.*kyc`),
		regexp.MustCompile(`(?i)account.*block`),
		regexp.MustCompile(`(?i)suspend.*account`),
		regexp.MustCompile(`(?i)verify.*account`),
		regexp.MustCompile(`(?i)won.*(prize|reward|lottery)`),
		regexp.MustCompile(`(?i)click.*link`),
		regexp.MustCompile(`(?i)otp.*share|share.*otp`),
		regexp.MustCompile(`(?i)password.*update`),
		regexp.MustCompile(`(?i)bank.*alert`),
		regexp.MustCompile(`(?i)last.*chance`),
		regexp.MustCompile(`(?i)expires?.*today`),
		regexp.MustCompile(`(?i)action.*required`),
		regexp.MustCompile(`(?i)call.*helpline`),
		regexp.MustCompile(`(?i)your.*payment.*failed`),
	}
)

// Blend combines the keyword score with an optional AI score. With both
// present the AI opinion gets 70%. A keyword score above 0.7 is a floor on
// the result; the AI score never lowers strong keyword evidence below it.
func Blend(keyword float64, ai *float64) float64 {
	score := keyword
	if ai != nil {
		aiScore := *ai
		score = aiWeight*aiScore + keywordWeight*keyword
	}
	if keyword > keywordOverride {
		score = max(score, keyword)
	}
	return max(0, min(1, score))
}

// AnalyzeMessage scores a chat message or transcript, folding in the AI
// opinion when one is available.
func (a *Analyzer) AnalyzeMessage(text string, ai core.OracleResult) core.MessageAnalysis {
	ta := a.Analyze(text)

	var aiScore *float64
	var aiFlags []string
	if assessment, ok := ai.Get(); ok {
		s := assessment.RiskScore
		aiScore = &s
		aiFlags = assessment.Flags
	}

	score := Blend(ta.Score, aiScore)
	isScam := score > scamCutoff

	flags := warningFlags(text)
	for _, f := range aiFlags {
		flags = append(flags, "AI: "+f)
	}

	return core.MessageAnalysis{
		ScamProbability: score,
		IsScam:          isScam,
		RiskLevel:       core.LevelForScore(score),
		KeywordScore:    ta.Score,
		AIScore:         aiScore,
		WarningFlags:    flags,
		Explanation:     explain(score, isScam, aiScore == nil),
		Text:            ta,
	}
}

func warningFlags(text string) []string {
	flags := []string{}
	for _, p := range scamPhrasePatterns {
		if m := p.FindString(text); m != "" {
			flags = append(flags, fmt.Sprintf("Suspicious pattern: '%s'", m))
		}
	}

	if urlPattern.MatchString(text) {
		flags = append(flags, "Contains URL (potential phishing)")
	}

	var letters, upper, total int
	for _, r := range text {
		total++
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters > 0 && (upper == letters || float64(upper)/float64(total) > 0.5) {
		flags = append(flags, "Excessive use of UPPERCASE (aggressive tone)")
	}

	if strings.Count(text, "!") > 2 {
		flags = append(flags, "Multiple exclamation marks (sense of urgency)")
	}
	return flags
}

func explain(score float64, isScam, keywordsOnly bool) string {
	var msg string
	switch {
	case isScam:
		msg = "This message contains multiple patterns common in scam messages, including urgency language or requests for sensitive information."
	case score > cautionCutoff:
		msg = "This message has some characteristics of scam messages, but isn't a definite match. Exercise caution."
	default:
		msg = "This message seems legitimate based on our analysis."
	}
	if keywordsOnly {
		msg += " AI analysis was unavailable; this result is based on keyword analysis only."
	}
	return msg
}
