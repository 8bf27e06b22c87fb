package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.TruncateText("short", 10))
	assert.Equal(t, "short", tp.TruncateText("short", 0))

	out := tp.TruncateText("héllo world", 2)
	assert.True(t, strings.HasPrefix(out, "h\n"))
	assert.True(t, utf8.ValidString(out))
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	assert.Equal(t, "ab", tp.SanitizeUTF8("a\xffb"))
	assert.Equal(t, "ok", tp.SanitizeUTF8("ok"))
}

func TestFold(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())
	assert.Equal(t, "urgent kyc", tp.Fold("URGENT KYC"))
	assert.Equal(t, "otp", tp.Fold("ＯＴＰ"))
}

func TestDecodeJSONReply(t *testing.T) {
	var out struct {
		RiskScore float64 `json:"risk_score"`
	}

	require.NoError(t, DecodeJSONReply(`{"risk_score":0.8}`, &out))
	assert.Equal(t, 0.8, out.RiskScore)

	require.NoError(t, DecodeJSONReply("Sure! Here you go:\n{\"risk_score\":0.3}\nThanks", &out))
	assert.Equal(t, 0.3, out.RiskScore)

	assert.ErrorIs(t, DecodeJSONReply("no json here", &out), ErrNoJSON)
	assert.Error(t, DecodeJSONReply("{broken}", &out))
}
