package ports

import (
	"context"

	"github.com/mikey/upi-risk-engine/internal/core"
)

// MessageAnalyzer scores free-form messages for scam content
type MessageAnalyzer interface {
	// AnalyzeMessage blends keyword and AI analysis of a message
	AnalyzeMessage(ctx context.Context, text string) core.MessageAnalysis
}

// RiskService is everything a frontend can ask of the engine
type RiskService interface {
	MessageAnalyzer

	ClassifyIdentifier(ctx context.Context, identifier string) (*core.ClassificationVerdict, error)
	AnalyzeText(text string) core.TextAnalysis
	ScoreTransaction(ctx context.Context, tx core.Transaction, history []core.Transaction) (*core.RiskAnalysisResult, error)
	AnalyzeQR(ctx context.Context, qrText string) *core.QRAnalysisResult
	AnalyzeQRBatch(ctx context.Context, qrTexts []string) ([]*core.QRAnalysisResult, error)
	SubmitReport(ctx context.Context, report core.ScamReport) (*core.ScamReport, error)
	GetReports(ctx context.Context, identifier string) ([]core.ScamReport, string, error)
	RecordQRFeedback(ctx context.Context, fb core.QRFeedback) (*core.ScamReport, error)
	OracleAvailable() bool
}
