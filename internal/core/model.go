package core

import (
	"time"
)

// Status is the categorical verdict for an identifier
type Status string

const (
	StatusSafe       Status = "SAFE"
	StatusSuspicious Status = "SUSPICIOUS"
	StatusScam       Status = "SCAM"
)

// Severity orders statuses so SAFE < SUSPICIOUS < SCAM
func (s Status) Severity() int {
	switch s {
	case StatusScam:
		return 2
	case StatusSuspicious:
		return 1
	default:
		return 0
	}
}

// ClassificationVerdict is the result of classifying a UPI identifier
type ClassificationVerdict struct {
	Identifier      string   `json:"identifier"`
	Status          Status   `json:"status"`
	Reason          string   `json:"reason"`
	ConfidenceScore float64  `json:"confidenceScore"`
	RiskFactors     []string `json:"riskFactors"`
	Recommendations []string `json:"recommendations"`
	ReportCount     int      `json:"reportCount"`
}

// RiskFactor explains one contribution to a score
type RiskFactor struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Impact      float64 `json:"impact"`
}

// RiskLevel buckets an ensemble score
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// LevelForScore maps a score in [0,1] to its risk level.
// Cut points: <0.3 low, <0.6 medium, <0.85 high, else critical.
func LevelForScore(score float64) RiskLevel {
	switch {
	case score < 0.3:
		return RiskLow
	case score < 0.6:
		return RiskMedium
	case score < 0.85:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// RiskAnalysisResult is the output of scoring a transaction
type RiskAnalysisResult struct {
	RiskScore         float64            `json:"riskScore"`
	RiskLevel         RiskLevel          `json:"riskLevel"`
	RiskFactors       []RiskFactor       `json:"riskFactors"`
	Recommendation    string             `json:"recommendation"`
	NeedsVerification bool               `json:"needsVerification"`
	Signals           map[string]float64 `json:"signals"`
	Degraded          bool               `json:"degraded"`
}

// DeviceInfo carries optional device metadata for a transaction
type DeviceInfo struct {
	DeviceID   string `json:"deviceId,omitempty"`
	IPAddress  string `json:"ipAddress,omitempty"`
	Suspicious bool   `json:"suspicious"`
}

// Transaction is a payment to score, or a past payment in a user's history
type Transaction struct {
	Identifier string      `json:"identifier"`
	Amount     float64     `json:"amount"`
	Note       string      `json:"note,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Location   string      `json:"location,omitempty"`
	Device     *DeviceInfo `json:"deviceInfo,omitempty"`
}

// ScamReport is a user-submitted report against an identifier
type ScamReport struct {
	ID          string    `json:"id"`
	Identifier  string    `json:"identifier"`
	Category    string    `json:"category"`
	AmountLost  *float64  `json:"amountLost,omitempty"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ContextRequest is what the AI oracle is asked to judge
type ContextRequest struct {
	Text         string   `json:"text"`
	Amount       *float64 `json:"amount,omitempty"`
	Counterparty string   `json:"counterparty,omitempty"`
}

// ContextAssessment is the AI oracle's opinion
type ContextAssessment struct {
	RiskScore   float64   `json:"riskScore"`
	Explanation string    `json:"explanation"`
	Flags       []string  `json:"flags"`
	ModelUsed   string    `json:"modelUsed"`
	AnalyzedAt  time.Time `json:"analyzedAt"`
}

// KeywordMatch is one lexicon hit in a text
type KeywordMatch struct {
	Category string  `json:"category"`
	Keyword  string  `json:"keyword"`
	Weight   float64 `json:"weight"`
	Hits     int     `json:"hits"`
}

// TextAnalysis is the result of keyword scoring
type TextAnalysis struct {
	Score          float64        `json:"score"`
	Matches        []KeywordMatch `json:"matches"`
	CategoryCounts map[string]int `json:"categoryCounts"`
}

// MessageAnalysis is the blended keyword and AI verdict for a chat message
type MessageAnalysis struct {
	ScamProbability float64      `json:"scamProbability"`
	IsScam          bool         `json:"isScam"`
	RiskLevel       RiskLevel    `json:"riskLevel"`
	KeywordScore    float64      `json:"keywordScore"`
	AIScore         *float64     `json:"aiScore,omitempty"`
	WarningFlags    []string     `json:"warningFlags"`
	Explanation     string       `json:"explanation"`
	Text            TextAnalysis `json:"text"`
}

// QRType is the detected kind of QR payload
type QRType string

const (
	QRTypeUPI  QRType = "upi"
	QRTypeURL  QRType = "url"
	QRTypeText QRType = "text"
)

// QRRiskLevel buckets a QR score
type QRRiskLevel string

const (
	QRRiskLow    QRRiskLevel = "Low"
	QRRiskMedium QRRiskLevel = "Medium"
	QRRiskHigh   QRRiskLevel = "High"
)

// UPIPayload is the parsed query of a upi:// link
type UPIPayload struct {
	PayeeAddress string `json:"pa,omitempty"`
	PayeeName    string `json:"pn,omitempty"`
	Amount       string `json:"am,omitempty"`
	Note         string `json:"tn,omitempty"`
}

// QRAnalysisResult is the result of scoring a QR payload
type QRAnalysisResult struct {
	RiskScore int         `json:"riskScore"`
	RiskLevel QRRiskLevel `json:"riskLevel"`
	Reasons   []string    `json:"reasons"`
	QRType    QRType      `json:"qrType"`
	UPI       *UPIPayload `json:"upi,omitempty"`
}

// QRFeedback is a user's judgement on a scanned QR payload
type QRFeedback struct {
	QRText string `json:"qrText"`
	IsScam bool   `json:"isScam"`
	Reason string `json:"reason,omitempty"`
}

// CacheEntry is a cached oracle assessment
type CacheEntry struct {
	Key        string
	Assessment ContextAssessment
	LastSeen   time.Time
	ExpiresAt  time.Time
}
