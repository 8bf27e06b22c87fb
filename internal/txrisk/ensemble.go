// Package txrisk combines independent risk signals into one transaction score.
package txrisk

import (
	"context"
	"fmt"
	"math"

	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/patterns"
	"github.com/mikey/upi-risk-engine/internal/upi"
	"go.uber.org/zap"
)

// Signal names, also the keys of RiskAnalysisResult.Signals
const (
	SignalIdentifier    = "identifier"
	SignalReportNetwork = "report_network"
	SignalAmountAnomaly = "amount_anomaly"
	SignalTemporal      = "temporal"
	SignalLargeAmount   = "large_amount"
	SignalAIContext     = "ai_context"
	SignalDevice        = "device"
)

// Weights sum to 1.0 when every signal is present
var weights = map[string]float64{
	SignalIdentifier:    0.20,
	SignalReportNetwork: 0.20,
	SignalAmountAnomaly: 0.15,
	SignalTemporal:      0.10,
	SignalLargeAmount:   0.10,
	SignalAIContext:     0.20,
	SignalDevice:        0.05,
}

// signalOrder fixes iteration so results are reproducible
var signalOrder = []string{
	SignalIdentifier,
	SignalReportNetwork,
	SignalAmountAnomaly,
	SignalTemporal,
	SignalLargeAmount,
	SignalAIContext,
	SignalDevice,
}

const (
	defaultModerate       = 0.5
	verificationThreshold = 0.6
	verificationAmount    = 25000
	verificationFloor     = 0.4
	largeAmount           = 50000
	elevatedAmount        = 10000
)

var recommendations = map[core.RiskLevel]string{
	core.RiskLow:      "Transaction appears safe. Proceed as normal.",
	core.RiskMedium:   "Some risk indicators are present. Verify the recipient before paying.",
	core.RiskHigh:     "High risk transaction. Confirm the recipient's identity through a trusted channel before paying.",
	core.RiskCritical: "Do not proceed. This transaction shows strong signs of fraud.",
}

const amountAdvice = " The amount is unusual for this account; consider a small test payment first."

// IdentifierClassifier classifies the counterparty identifier
type IdentifierClassifier interface {
	Classify(ctx context.Context, identifier string) (*core.ClassificationVerdict, error)
}

// Ensemble scores transactions
type Ensemble struct {
	classifier IdentifierClassifier
	lib        *patterns.Library
	store      core.ReportStore
	logger     *zap.Logger
}

// NewEnsemble creates an ensemble. store may be nil, in which case the report
// network signal falls back to domain familiarity.
func NewEnsemble(classifier IdentifierClassifier, lib *patterns.Library, store core.ReportStore, logger *zap.Logger) *Ensemble {
	return &Ensemble{
		classifier: classifier,
		lib:        lib,
		store:      store,
		logger:     logger,
	}
}

// ValidateAmount rejects non-positive and non-finite amounts
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: amount must be a finite number", core.ErrInvalidAmount)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %v", core.ErrInvalidAmount, amount)
	}
	return nil
}

// Score combines every available signal for tx. ai carries the oracle's
// opinion, or Unavailable; missing signals are dropped and the remaining
// weights renormalized.
func (e *Ensemble) Score(ctx context.Context, tx core.Transaction, history []core.Transaction, ai core.OracleResult) (*core.RiskAnalysisResult, error) {
	if err := ValidateAmount(tx.Amount); err != nil {
		return nil, err
	}
	id, err := upi.ParseIdentifier(tx.Identifier)
	if err != nil {
		return nil, err
	}

	verdict, err := e.classifier.Classify(ctx, id.String())
	if err != nil {
		return nil, err
	}

	signals := make(map[string]float64, len(weights))
	var factors []core.RiskFactor
	degraded := false

	ident := identifierRisk(verdict)
	signals[SignalIdentifier] = ident
	if verdict.Status != core.StatusSafe {
		factors = append(factors, core.RiskFactor{
			Type:        SignalIdentifier,
			Description: fmt.Sprintf("Recipient classified as %s: %s", verdict.Status, verdict.Reason),
			Impact:      ident,
		})
	}

	if network, count, err := e.reportNetworkRisk(ctx, id); err != nil {
		e.logger.Warn("Report store unavailable, dropping report network signal",
			zap.String("identifier", id.String()),
			zap.Error(err))
		degraded = true
		factors = append(factors, core.RiskFactor{
			Type:        SignalReportNetwork,
			Description: "Scam report history unavailable; score based on the remaining signals only",
		})
	} else {
		signals[SignalReportNetwork] = network
		switch {
		case count > 0:
			factors = append(factors, core.RiskFactor{
				Type:        SignalReportNetwork,
				Description: fmt.Sprintf("Recipient has been reported %d time(s) for fraud", count),
				Impact:      network,
			})
		case network > defaultModerate:
			factors = append(factors, core.RiskFactor{
				Type:        SignalReportNetwork,
				Description: fmt.Sprintf("Unfamiliar or suspicious-looking payment handle @%s", id.Domain),
				Impact:      network,
			})
		}
	}

	anomaly, mean, ok := amountAnomaly(tx.Amount, history)
	signals[SignalAmountAnomaly] = anomaly
	if ok && anomaly > 0.7 {
		factors = append(factors, core.RiskFactor{
			Type:        SignalAmountAnomaly,
			Description: fmt.Sprintf("Amount %.2f is far from your usual %.2f", tx.Amount, mean),
			Impact:      anomaly,
		})
	}

	temporal, ok := temporalAnomaly(tx, history)
	signals[SignalTemporal] = temporal
	if ok && temporal > 0.7 {
		factors = append(factors, core.RiskFactor{
			Type:        SignalTemporal,
			Description: fmt.Sprintf("Unusual time of day (%02d:00) for your transactions", tx.Timestamp.Hour()),
			Impact:      temporal,
		})
	}

	large := largeAmountRisk(tx.Amount)
	signals[SignalLargeAmount] = large
	if large > 0 {
		factors = append(factors, core.RiskFactor{
			Type:        SignalLargeAmount,
			Description: fmt.Sprintf("Large transaction amount (%.2f)", tx.Amount),
			Impact:      large,
		})
	}

	if assessment, ok := ai.Get(); ok {
		signals[SignalAIContext] = assessment.RiskScore
		if assessment.RiskScore > 0.4 {
			desc := "AI analysis flagged the transaction context"
			if assessment.Explanation != "" {
				desc = "AI: " + assessment.Explanation
			}
			factors = append(factors, core.RiskFactor{
				Type:        SignalAIContext,
				Description: desc,
				Impact:      assessment.RiskScore,
			})
		}
	} else {
		degraded = true
		factors = append(factors, core.RiskFactor{
			Type:        SignalAIContext,
			Description: "AI context signal unavailable; score based on pattern and history signals only",
		})
	}

	device := 0.2
	if tx.Device != nil && tx.Device.Suspicious {
		device = 0.3
		factors = append(factors, core.RiskFactor{
			Type:        SignalDevice,
			Description: "Transaction made from a device flagged as suspicious",
			Impact:      device,
		})
	}
	signals[SignalDevice] = device

	score, dominant := combine(signals)
	level := core.LevelForScore(score)

	recommendation := recommendations[level]
	if level != core.RiskLow && (dominant == SignalAmountAnomaly || dominant == SignalLargeAmount) {
		recommendation += amountAdvice
	}

	if factors == nil {
		factors = []core.RiskFactor{}
	}

	e.logger.Debug("Scored transaction",
		zap.String("identifier", id.String()),
		zap.Float64("amount", tx.Amount),
		zap.Float64("score", score),
		zap.String("level", string(level)),
		zap.Bool("degraded", degraded))

	return &core.RiskAnalysisResult{
		RiskScore:         score,
		RiskLevel:         level,
		RiskFactors:       factors,
		Recommendation:    recommendation,
		NeedsVerification: score > verificationThreshold || (tx.Amount > verificationAmount && score > verificationFloor),
		Signals:           signals,
		Degraded:          degraded,
	}, nil
}

// combine returns the weighted mean over present signals and the signal
// contributing the most
func combine(signals map[string]float64) (float64, string) {
	var total, weightSum, best float64
	dominant := ""
	for _, name := range signalOrder {
		v, ok := signals[name]
		if !ok {
			continue
		}
		w := weights[name]
		total += w * v
		weightSum += w
		if w*v > best {
			best, dominant = w*v, name
		}
	}
	if weightSum == 0 {
		return 0, ""
	}
	return max(0, min(1, total/weightSum)), dominant
}

// identifierRisk turns a verdict into a risk in [0,1]
func identifierRisk(v *core.ClassificationVerdict) float64 {
	if v.Status == core.StatusSafe {
		return 1 - v.ConfidenceScore
	}
	return v.ConfidenceScore
}

func (e *Ensemble) reportNetworkRisk(ctx context.Context, id upi.Identifier) (float64, int, error) {
	count := 0
	if e.store != nil {
		reports, err := e.store.GetReportsByIdentifier(ctx, id.String())
		if err != nil {
			return 0, 0, err
		}
		count = len(reports)
	}

	switch {
	case count >= 3:
		return 0.9, count, nil
	case count >= 1:
		return 0.7, count, nil
	case e.lib.IsKnownGoodDomain(id.Domain):
		return 0.1, 0, nil
	case e.lib.LooksSuspiciousDomain(id.Domain):
		return 0.6, 0, nil
	default:
		return 0.4, 0, nil
	}
}

func largeAmountRisk(amount float64) float64 {
	switch {
	case amount > largeAmount:
		return 0.7
	case amount > elevatedAmount:
		return 0.4
	default:
		return 0
	}
}
