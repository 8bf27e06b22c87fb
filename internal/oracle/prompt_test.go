package oracle

import (
	"testing"

	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildPrompt(t *testing.T) {
	tp := utils.NewTextProcessor(zap.NewNop())
	amount := 499.0

	prompt := BuildPrompt(core.ContextRequest{Text: "pay to get refund", Amount: &amount, Counterparty: "refund@ybl"}, tp, 0)
	assert.Contains(t, prompt, "Counterparty: refund@ybl")
	assert.Contains(t, prompt, "Amount: INR 499.00")
	assert.Contains(t, prompt, "pay to get refund")

	prompt = BuildPrompt(core.ContextRequest{}, tp, 0)
	assert.Contains(t, prompt, "Counterparty: unknown")
	assert.Contains(t, prompt, "Amount: not given")
	assert.Contains(t, prompt, "(none)")
}

func TestParseReply(t *testing.T) {
	a, err := ParseReply("Sure! {\"risk_score\": 0.8, \"explanation\": \"refund lure\", \"flags\": [\"refund\"]}", "test-model")
	require.NoError(t, err)
	assert.Equal(t, 0.8, a.RiskScore)
	assert.Equal(t, "refund lure", a.Explanation)
	assert.Equal(t, []string{"refund"}, a.Flags)
	assert.Equal(t, "test-model", a.ModelUsed)
	assert.False(t, a.AnalyzedAt.IsZero())

	a, err = ParseReply(`{"risk_score": 0.1}`, "m")
	require.NoError(t, err)
	assert.NotNil(t, a.Flags)

	_, err = ParseReply("I cannot help with that", "m")
	assert.ErrorIs(t, err, utils.ErrNoJSON)
}
