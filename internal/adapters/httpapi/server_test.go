package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikey/upi-risk-engine/internal/adapters/reports"
	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/engine"
	"github.com/mikey/upi-risk-engine/internal/metrics"
	"github.com/mikey/upi-risk-engine/internal/oracle"
	"github.com/mikey/upi-risk-engine/internal/patterns"
	"github.com/mikey/upi-risk-engine/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	m := metrics.NewMetrics()
	svc := engine.NewService(
		patterns.NewLibrary(nil, nil, logger),
		patterns.DefaultLexicon(),
		utils.NewTextProcessor(logger),
		reports.NewMemoryStore(),
		oracle.NewAdvisor(nil, nil, oracle.Options{}, logger),
		m,
		logger,
		engine.Options{},
	)
	return NewServer(svc, m, logger, "127.0.0.1:0", 3)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["oracle"])
}

func TestCheckIdentifier(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/upi/check", identifierRequest{Identifier: "pay@paytm"})
	require.Equal(t, http.StatusOK, w.Code)
	v := decode[core.ClassificationVerdict](t, w)
	assert.Equal(t, core.StatusSafe, v.Status)
	assert.Equal(t, 0.95, v.ConfidenceScore)

	w = do(t, s, http.MethodPost, "/api/upi/check", identifierRequest{Identifier: "no-at-sign"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorResponse](t, w).Error, "invalid identifier format")

	w = do(t, s, http.MethodPost, "/api/upi/check", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeTextAndMessage(t *testing.T) {
	s := newTestServer(t)
	text := "Congratulations! You are a lucky winner, click here to claim your prize"

	w := do(t, s, http.MethodPost, "/api/text/analyze", textRequest{Text: text})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Greater(t, decode[core.TextAnalysis](t, w).Score, 0.5)

	w = do(t, s, http.MethodPost, "/api/messages/analyze", textRequest{Text: text})
	require.Equal(t, http.StatusOK, w.Code)
	msg := decode[core.MessageAnalysis](t, w)
	assert.Nil(t, msg.AIScore)
	assert.NotEmpty(t, msg.Explanation)
}

func TestAnalyzeQR(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/qr/analyze", qrRequest{QRText: "upi://pay?pa=verify@oksbi&pn=Refund%20Dept&am=1"})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[core.QRAnalysisResult](t, w)
	assert.Equal(t, core.QRRiskHigh, res.RiskLevel)
	assert.Equal(t, core.QRTypeUPI, res.QRType)

	w = do(t, s, http.MethodPost, "/api/qr/batch", qrBatchRequest{QRTexts: []string{"hello", "https://bit.ly/x"}})
	require.Equal(t, http.StatusOK, w.Code)
	batch := decode[struct {
		Results []core.QRAnalysisResult `json:"results"`
	}](t, w)
	require.Len(t, batch.Results, 2)
	assert.Equal(t, core.QRTypeText, batch.Results[0].QRType)
	assert.Equal(t, core.QRTypeURL, batch.Results[1].QRType)

	w = do(t, s, http.MethodPost, "/api/qr/batch", qrBatchRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/qr/batch", qrBatchRequest{QRTexts: []string{"a", "b", "c", "d"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScoreTransaction(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/transactions/score", map[string]any{
		"transaction": map[string]any{"identifier": "pay@paytm", "amount": 250},
	})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[core.RiskAnalysisResult](t, w)
	assert.Equal(t, core.RiskLow, res.RiskLevel)
	assert.NotEmpty(t, res.Recommendation)

	w = do(t, s, http.MethodPost, "/api/transactions/score", map[string]any{
		"transaction": map[string]any{"identifier": "pay@paytm", "amount": 0},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/transactions/score", `{"transaction": {"identifier": "pay@paytm", "amount": "lots"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReports(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/reports", map[string]any{"identifier": "Bad.Actor@ybl", "category": "lottery", "amountLost": 999})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[core.ScamReport](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "bad.actor@ybl", created.Identifier)

	w = do(t, s, http.MethodPost, "/api/reports", map[string]any{"identifier": "bad.actor@ybl"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/api/reports/bad.actor@ybl", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Reports            []core.ScamReport `json:"reports"`
		MostCommonCategory string            `json:"mostCommonCategory"`
	}](t, w)
	assert.Len(t, body.Reports, 1)
	assert.Equal(t, "lottery", body.MostCommonCategory)
}

func TestQRFeedback(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/qr/feedback", core.QRFeedback{QRText: "upi://pay?pa=fake.shop@ybl", IsScam: true})
	require.Equal(t, http.StatusAccepted, w.Code)

	w = do(t, s, http.MethodGet, "/api/reports/fake.shop@ybl", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), engine.CategoryQRScam)

	w = do(t, s, http.MethodPost, "/api/qr/feedback", core.QRFeedback{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/upi/check", identifierRequest{Identifier: "pay@paytm"})

	w := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `upi_risk_classifications_total{status="SAFE"} 1`)
}

func TestStartStop(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, "http", s.Name())
	require.NoError(t, s.Start())
	assert.NoError(t, s.Stop())
}
