// Package engine is the entry point every frontend uses to reach the scorers.
package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/metrics"
	"github.com/mikey/upi-risk-engine/internal/oracle"
	"github.com/mikey/upi-risk-engine/internal/patterns"
	"github.com/mikey/upi-risk-engine/internal/qr"
	"github.com/mikey/upi-risk-engine/internal/textscan"
	"github.com/mikey/upi-risk-engine/internal/txrisk"
	"github.com/mikey/upi-risk-engine/internal/upi"
	"github.com/mikey/upi-risk-engine/internal/utils"
	"go.uber.org/zap"
)

// CategoryQRScam is the report category filed from scam QR feedback
const CategoryQRScam = "qr_scam"

// Options tune the service
type Options struct {
	BatchConcurrency int
}

// Service wires the classifiers, analyzers and stores together
type Service struct {
	classifier *upi.Classifier
	text       *textscan.Analyzer
	qr         *qr.Analyzer
	ensemble   *txrisk.Ensemble
	advisor    *oracle.Advisor
	reports    core.ReportRepository
	metrics    *metrics.Metrics
	logger     *zap.Logger
	opts       Options
	now        func() time.Time
}

// NewService creates the service. advisor may wrap a nil oracle, in which
// case every AI signal is reported unavailable.
func NewService(
	lib *patterns.Library,
	lexicon *patterns.Lexicon,
	textProcessor *utils.TextProcessor,
	reports core.ReportRepository,
	advisor *oracle.Advisor,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts Options,
) *Service {
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = qr.DefaultBatchConcurrency
	}
	classifier := upi.NewClassifier(lib, reports, logger)
	return &Service{
		classifier: classifier,
		text:       textscan.NewAnalyzer(lexicon, textProcessor),
		qr:         qr.NewAnalyzer(classifier, logger),
		ensemble:   txrisk.NewEnsemble(classifier, lib, reports, logger),
		advisor:    advisor,
		reports:    reports,
		metrics:    m,
		logger:     logger,
		opts:       opts,
		now:        time.Now,
	}
}

// ClassifyIdentifier returns a verdict for a UPI identifier
func (s *Service) ClassifyIdentifier(ctx context.Context, identifier string) (*core.ClassificationVerdict, error) {
	v, err := s.classifier.Classify(ctx, identifier)
	if err != nil {
		return nil, err
	}
	s.metrics.Classifications.WithLabelValues(string(v.Status)).Inc()
	return v, nil
}

// AnalyzeText scores text against the scam lexicon
func (s *Service) AnalyzeText(text string) core.TextAnalysis {
	return s.text.Analyze(text)
}

// AnalyzeMessage scores a chat message, blending in the AI opinion
func (s *Service) AnalyzeMessage(ctx context.Context, text string) core.MessageAnalysis {
	ai := s.consult(ctx, core.ContextRequest{Text: text})
	res := s.text.AnalyzeMessage(text, ai)

	verdict := "legitimate"
	if res.IsScam {
		verdict = "scam"
	}
	s.metrics.MessagesAnalyzed.WithLabelValues(verdict).Inc()
	return res
}

// ScoreTransaction runs the transaction risk ensemble
func (s *Service) ScoreTransaction(ctx context.Context, tx core.Transaction, history []core.Transaction) (*core.RiskAnalysisResult, error) {
	if err := txrisk.ValidateAmount(tx.Amount); err != nil {
		return nil, err
	}
	id, err := upi.ParseIdentifier(tx.Identifier)
	if err != nil {
		return nil, err
	}
	tx.Identifier = id.String()
	if tx.Timestamp.IsZero() {
		tx.Timestamp = s.now()
	}

	amount := tx.Amount
	ai := s.consult(ctx, core.ContextRequest{Text: tx.Note, Amount: &amount, Counterparty: tx.Identifier})

	res, err := s.ensemble.Score(ctx, tx, history, ai)
	if err != nil {
		return nil, err
	}

	s.metrics.TransactionsScored.WithLabelValues(string(res.RiskLevel)).Inc()
	s.metrics.TransactionScore.Observe(res.RiskScore)
	if res.Degraded {
		s.metrics.DegradedScores.Inc()
	}
	return res, nil
}

// AnalyzeQR scores one decoded QR payload
func (s *Service) AnalyzeQR(ctx context.Context, qrText string) *core.QRAnalysisResult {
	res := s.qr.Analyze(ctx, qrText)
	s.metrics.QRAnalyses.WithLabelValues(string(res.RiskLevel)).Inc()
	return res
}

// AnalyzeQRBatch scores payloads concurrently in input order
func (s *Service) AnalyzeQRBatch(ctx context.Context, qrTexts []string) ([]*core.QRAnalysisResult, error) {
	results, err := s.qr.AnalyzeBatch(ctx, qrTexts, s.opts.BatchConcurrency)
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		s.metrics.QRAnalyses.WithLabelValues(string(res.RiskLevel)).Inc()
	}
	return results, nil
}

// SubmitReport validates and stores a scam report, assigning its id and time
func (s *Service) SubmitReport(ctx context.Context, report core.ScamReport) (*core.ScamReport, error) {
	id, err := upi.ParseIdentifier(report.Identifier)
	if err != nil {
		return nil, err
	}
	report.Identifier = id.String()

	report.Category = strings.TrimSpace(report.Category)
	if report.Category == "" {
		return nil, fmt.Errorf("%w: category is required", core.ErrInvalidReport)
	}
	if report.AmountLost != nil {
		amount := *report.AmountLost
		if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return nil, fmt.Errorf("%w: amount lost must be a non-negative number", core.ErrInvalidAmount)
		}
	}
	report.Description = strings.TrimSpace(report.Description)
	report.ID = uuid.NewString()
	report.Timestamp = s.now().UTC()

	if err := s.reports.SaveReport(ctx, &report); err != nil {
		s.logger.Error("Failed to save scam report",
			zap.String("identifier", report.Identifier),
			zap.Error(err))
		return nil, err
	}

	s.metrics.ReportsSubmitted.Inc()
	s.logger.Info("Scam report submitted",
		zap.String("id", report.ID),
		zap.String("identifier", report.Identifier),
		zap.String("category", report.Category))
	return &report, nil
}

// GetReports returns the reports filed against identifier and their most
// common category
func (s *Service) GetReports(ctx context.Context, identifier string) ([]core.ScamReport, string, error) {
	id, err := upi.ParseIdentifier(identifier)
	if err != nil {
		return nil, "", err
	}
	reports, err := s.reports.GetReportsByIdentifier(ctx, id.String())
	if err != nil {
		return nil, "", err
	}
	category, err := s.reports.GetMostCommonCategory(ctx, id.String())
	if err != nil {
		return nil, "", err
	}
	return reports, category, nil
}

// RecordQRFeedback files a qr_scam report when a user marks a UPI QR code as
// a scam. Other feedback is only logged; the returned report is nil then.
func (s *Service) RecordQRFeedback(ctx context.Context, fb core.QRFeedback) (*core.ScamReport, error) {
	text := strings.TrimSpace(fb.QRText)
	if text == "" {
		return nil, fmt.Errorf("%w: QR text is required", core.ErrInvalidFormat)
	}

	if !fb.IsScam {
		s.logger.Info("QR marked safe by user", zap.String("qr_type", string(qr.DetectType(text))))
		return nil, nil
	}

	if qr.DetectType(text) != core.QRTypeUPI {
		s.logger.Info("Scam feedback for non-UPI QR recorded in log only",
			zap.String("qr_type", string(qr.DetectType(text))),
			zap.String("reason", fb.Reason))
		return nil, nil
	}

	payload, err := qr.ParseUPI(text)
	if err != nil || payload.PayeeAddress == "" {
		s.logger.Info("Scam feedback for UPI QR without a usable payee", zap.String("reason", fb.Reason))
		return nil, nil
	}
	if _, err := upi.ParseIdentifier(payload.PayeeAddress); err != nil {
		s.logger.Info("Scam feedback for UPI QR with malformed payee",
			zap.String("payee", payload.PayeeAddress),
			zap.Error(err))
		return nil, nil
	}

	description := fb.Reason
	if description == "" {
		description = "Reported via QR scan feedback"
	}
	return s.SubmitReport(ctx, core.ScamReport{
		Identifier:  payload.PayeeAddress,
		Category:    CategoryQRScam,
		Description: description,
	})
}

// OracleAvailable reports whether an AI oracle is configured
func (s *Service) OracleAvailable() bool {
	return s.advisor.Available()
}

func (s *Service) consult(ctx context.Context, req core.ContextRequest) core.OracleResult {
	res := s.advisor.Assess(ctx, req)
	outcome := "ok"
	if _, ok := res.Get(); !ok {
		outcome = "unavailable"
	}
	s.metrics.OracleResults.WithLabelValues(outcome).Inc()
	return res
}
