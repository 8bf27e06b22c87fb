package upi

import (
	"context"
	"errors"
	"testing"

	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/patterns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockReportStore is a mock implementation of core.ReportStore
type mockReportStore struct {
	mock.Mock
}

func (m *mockReportStore) GetReportsByIdentifier(ctx context.Context, identifier string) ([]core.ScamReport, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.ScamReport), args.Error(1)
}

func (m *mockReportStore) GetMostCommonCategory(ctx context.Context, identifier string) (string, error) {
	args := m.Called(ctx, identifier)
	return args.String(0), args.Error(1)
}

func reports(n int) []core.ScamReport {
	out := make([]core.ScamReport, n)
	for i := range out {
		out[i] = core.ScamReport{Category: "lottery"}
	}
	return out
}

func newTestClassifier(store core.ReportStore) *Classifier {
	return NewClassifier(patterns.NewLibrary(nil, nil, zap.NewNop()), store, zap.NewNop())
}

func TestClassifySafeList(t *testing.T) {
	store := &mockReportStore{}
	c := newTestClassifier(store)

	v, err := c.Classify(context.Background(), "pay@paytm")
	require.NoError(t, err)
	assert.Equal(t, core.StatusSafe, v.Status)
	assert.Equal(t, 0.95, v.ConfidenceScore)
	assert.NotEmpty(t, v.Reason)
	assert.Len(t, v.Recommendations, 3)
	store.AssertNotCalled(t, "GetReportsByIdentifier", mock.Anything, mock.Anything)
}

func TestClassifyScamList(t *testing.T) {
	c := newTestClassifier(nil)

	v, err := c.Classify(context.Background(), "  Verify@Paytm ")
	require.NoError(t, err)
	assert.Equal(t, core.StatusScam, v.Status)
	assert.GreaterOrEqual(t, v.ConfidenceScore, 0.98)
	assert.Equal(t, "verify@paytm", v.Identifier)
}

func TestClassifyKYCPattern(t *testing.T) {
	store := &mockReportStore{}
	store.On("GetReportsByIdentifier", mock.Anything, "kyc1234@okaxis").Return([]core.ScamReport{}, nil)
	c := newTestClassifier(store)

	v, err := c.Classify(context.Background(), "kyc1234@okaxis")
	require.NoError(t, err)
	assert.Equal(t, core.StatusSuspicious, v.Status)
	assert.InDelta(t, 0.45, v.ConfidenceScore, 1e-9)
	assert.Contains(t, v.RiskFactors, "Matches suspicious pattern: kyc lure")
	store.AssertExpectations(t)
}

func TestClassifyInvalidFormat(t *testing.T) {
	c := newTestClassifier(nil)
	for _, in := range []string{"", "   ", "noat", "a@b@c", "@ybl", "abc@"} {
		_, err := c.Classify(context.Background(), in)
		assert.ErrorIs(t, err, core.ErrInvalidFormat, "input %q", in)
	}
}

func TestClassifyReportCounts(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		wantStatus core.Status
		wantConf   float64
	}{
		{"one report", 1, core.StatusSuspicious, 0.7},
		{"two reports", 2, core.StatusScam, 0.94},
		{"three reports", 3, core.StatusScam, 0.96},
		{"capped", 10, core.StatusScam, 0.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockReportStore{}
			store.On("GetReportsByIdentifier", mock.Anything, "ramesh@oksbi").Return(reports(tt.count), nil)
			store.On("GetMostCommonCategory", mock.Anything, "ramesh@oksbi").Return("lottery", nil).Maybe()

			v, err := newTestClassifier(store).Classify(context.Background(), "ramesh@oksbi")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, v.Status)
			assert.InDelta(t, tt.wantConf, v.ConfidenceScore, 1e-9)
			assert.Equal(t, tt.count, v.ReportCount)
		})
	}
}

func TestClassifyOneReportKeepsScamPattern(t *testing.T) {
	store := &mockReportStore{}
	store.On("GetReportsByIdentifier", mock.Anything, "verifykyc99999@paytmm").Return(reports(1), nil)

	v, err := newTestClassifier(store).Classify(context.Background(), "verifykyc99999@paytmm")
	require.NoError(t, err)
	assert.Equal(t, core.StatusScam, v.Status)
}

func TestClassifyStoreUnavailable(t *testing.T) {
	store := &mockReportStore{}
	store.On("GetReportsByIdentifier", mock.Anything, "anita@oksbi").Return(nil, errors.New("connection refused"))

	v, err := newTestClassifier(store).Classify(context.Background(), "anita@oksbi")
	require.NoError(t, err)
	assert.Equal(t, core.StatusSafe, v.Status)
	assert.Contains(t, v.RiskFactors, "Report history unavailable")
	assert.NotEmpty(t, v.Reason)
}

func TestClassifyMonotonicInReports(t *testing.T) {
	ids := []string{"anita@oksbi", "kyc1234@okaxis", "verifykyc99999@paytmm", "aaaaaaaa@xyz"}
	for _, id := range ids {
		prev := -1
		for n := 0; n <= 4; n++ {
			store := &mockReportStore{}
			store.On("GetReportsByIdentifier", mock.Anything, mock.Anything).Return(reports(n), nil)
			store.On("GetMostCommonCategory", mock.Anything, mock.Anything).Return("", nil).Maybe()

			v, err := newTestClassifier(store).Classify(context.Background(), id)
			require.NoError(t, err)
			sev := v.Status.Severity()
			assert.GreaterOrEqual(t, sev, prev, "%s with %d reports", id, n)
			prev = sev
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := newTestClassifier(nil)
	a, err := c.Classify(context.Background(), "support9999@upi")
	require.NoError(t, err)
	b, err := c.Classify(context.Background(), "support9999@upi")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPatternScore(t *testing.T) {
	c := newTestClassifier(nil)

	tests := []struct {
		id   string
		want float64
	}{
		{"9876543210@ybl", 0.35},
		{"aaaaaaaa@xyz", 0.3},
		{"verifykyc99999@paytmm", 1},
		{"ab@oksbi", 0},
		{"ramesh.kumar.sharma01@unknown", 0.1},
	}
	for _, tt := range tests {
		id, err := ParseIdentifier(tt.id)
		require.NoError(t, err)
		score, _ := c.PatternScore(id)
		assert.InDelta(t, tt.want, score, 1e-9, tt.id)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestRecommendationsAreCopies(t *testing.T) {
	recs := Recommendations(core.StatusScam)
	recs[0] = "changed"
	assert.NotEqual(t, "changed", Recommendations(core.StatusScam)[0])
}
