package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForScore(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskLevel
	}{
		{0, RiskLow},
		{0.29, RiskLow},
		{0.3, RiskMedium},
		{0.59, RiskMedium},
		{0.6, RiskHigh},
		{0.84, RiskHigh},
		{0.85, RiskCritical},
		{1, RiskCritical},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, LevelForScore(c.score), "score %v", c.score)
	}
}

func TestStatusSeverity(t *testing.T) {
	assert.Less(t, StatusSafe.Severity(), StatusSuspicious.Severity())
	assert.Less(t, StatusSuspicious.Severity(), StatusScam.Severity())
}

func TestOracleResult(t *testing.T) {
	ok := OracleOk(&ContextAssessment{RiskScore: 0.4})
	a, present := ok.Get()
	assert.True(t, present)
	assert.Equal(t, 0.4, a.RiskScore)
	assert.NoError(t, ok.Cause())

	cause := errors.New("boom")
	un := OracleUnavailable(cause)
	_, present = un.Get()
	assert.False(t, present)
	assert.Equal(t, cause, un.Cause())

	assert.ErrorIs(t, OracleUnavailable(nil).Cause(), ErrOracleUnavailable)
}
