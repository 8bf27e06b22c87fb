package textscan

import (
	"testing"

	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/patterns"
	"github.com/mikey/upi-risk-engine/internal/utils"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(patterns.DefaultLexicon(), utils.NewTextProcessor(zap.NewNop()))
}

func TestAnalyzeEmpty(t *testing.T) {
	a := newTestAnalyzer()
	for _, in := range []string{"", "   \n"} {
		res := a.Analyze(in)
		assert.Equal(t, 0.0, res.Score)
		assert.Empty(t, res.Matches)
		assert.Empty(t, res.CategoryCounts)
	}
}

func TestAnalyzeNoMatches(t *testing.T) {
	res := newTestAnalyzer().Analyze("See you at dinner tonight")
	assert.Equal(t, 0.0, res.Score)
	assert.Empty(t, res.Matches)
}

func TestAnalyzeLotteryPhishing(t *testing.T) {
	res := newTestAnalyzer().Analyze("Congratulations! You are a lucky winner, click here to claim your prize")

	assert.Greater(t, res.Score, 0.55)
	assert.LessOrEqual(t, res.Score, 1.0)
	assert.Equal(t, 4, res.CategoryCounts["Lottery & Fake Rewards"])
	assert.Equal(t, 3, res.CategoryCounts["Phishing & Links"])
	assert.Len(t, res.CategoryCounts, 2)

	var keywords []string
	for _, m := range res.Matches {
		keywords = append(keywords, m.Keyword)
	}
	assert.Equal(t, []string{"congratulations", "winner", "prize", "lucky", "click here", "click", "claim your"}, keywords)
}

func TestAnalyzeSaturates(t *testing.T) {
	a := newTestAnalyzer()
	few := a.Analyze("lottery lottery lottery lottery")
	many := a.Analyze("lottery lottery lottery lottery lottery lottery lottery lottery")
	assert.Equal(t, few.Score, many.Score)
}

func TestAnalyzeCaseFolding(t *testing.T) {
	a := newTestAnalyzer()
	assert.Equal(t, a.Analyze("share your OTP").Score, a.Analyze("share your otp").Score)
	assert.Greater(t, a.Analyze("ＯＴＰ").Score, 0.0)
}

func TestAnalyzeBoundsAllCategories(t *testing.T) {
	res := newTestAnalyzer().Analyze("URGENT: lottery winner! click link, share OTP with RBI official immediately, congratulations prize reward jackpot")
	assert.Len(t, res.CategoryCounts, 5)
	assert.Greater(t, res.Score, 0.7)
	assert.LessOrEqual(t, res.Score, 1.0)
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := newTestAnalyzer()
	text := "Your account will be blocked, update KYC immediately"
	assert.Equal(t, a.Analyze(text), a.Analyze(text))
}

func TestBlend(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	assert.InDelta(t, 0.4, Blend(0.4, nil), 1e-9)
	assert.InDelta(t, 0.7*0.2+0.3*0.5, Blend(0.5, f(0.2)), 1e-9)
	// strong keywords are a floor
	assert.InDelta(t, 0.9, Blend(0.9, f(0.1)), 1e-9)
	// but the AI may still raise the score
	assert.InDelta(t, 0.7*1.0+0.3*0.8, Blend(0.8, f(1.0)), 1e-9)
	// a confident AI cannot be overridden by weak keywords
	assert.InDelta(t, 0.7*0.9+0.3*0.1, Blend(0.1, f(0.9)), 1e-9)
}

func TestAnalyzeMessage(t *testing.T) {
	a := newTestAnalyzer()
	text := "URGENT!!! Your account will be BLOCKED. Click this link http://bit.ly/x to update KYC"

	res := a.AnalyzeMessage(text, core.OracleOk(&core.ContextAssessment{RiskScore: 0.95, Flags: []string{"impersonation"}}))
	assert.True(t, res.IsScam)
	assert.NotNil(t, res.AIScore)
	assert.Contains(t, res.WarningFlags, "Contains URL (potential phishing)")
	assert.Contains(t, res.WarningFlags, "Multiple exclamation marks (sense of urgency)")
	assert.Contains(t, res.WarningFlags, "AI: impersonation")
	assert.NotEmpty(t, res.Explanation)

	degraded := a.AnalyzeMessage(text, core.OracleUnavailable(nil))
	assert.Nil(t, degraded.AIScore)
	assert.Equal(t, degraded.KeywordScore, degraded.ScamProbability)
	assert.Contains(t, degraded.Explanation, "keyword analysis only")
}

func TestAnalyzeMessageLegitimate(t *testing.T) {
	res := newTestAnalyzer().AnalyzeMessage("Thanks for dinner, see you tomorrow", core.OracleUnavailable(nil))
	assert.False(t, res.IsScam)
	assert.Equal(t, core.RiskLow, res.RiskLevel)
	assert.Empty(t, res.WarningFlags)
}

func TestUppercaseFlag(t *testing.T) {
	assert.Contains(t, warningFlags("PAY NOW"), "Excessive use of UPPERCASE (aggressive tone)")
	assert.NotContains(t, warningFlags("Pay now"), "Excessive use of UPPERCASE (aggressive tone)")
}
