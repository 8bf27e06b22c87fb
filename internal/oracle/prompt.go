package oracle

import (
	"fmt"
	"strings"
	"time"

	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/utils"
)

// SystemPrompt is sent as the system message by chat-style providers
const SystemPrompt = "You are a fraud analyst for UPI payments in India. Respond only with JSON."

const promptFormat = `Assess whether the following UPI payment context shows signs of fraud or a scam
(fake rewards, KYC or refund lures, impersonation, urgency, requests for OTP or PIN).
Respond with a JSON object containing:
- risk_score: number between 0 and 1 (higher means more likely to be fraud)
- explanation: string (one or two sentences)
- flags: array of short strings naming each warning sign found

Counterparty: %s
Amount: %s
Text:
%s

Respond only with the JSON object and nothing else.`

// Reply is the JSON object the model is asked to return
type Reply struct {
	RiskScore   float64  `json:"risk_score"`
	Explanation string   `json:"explanation"`
	Flags       []string `json:"flags"`
}

// BuildPrompt renders req into the user prompt. The text is truncated to
// maxBodySize bytes and sanitized.
func BuildPrompt(req core.ContextRequest, tp *utils.TextProcessor, maxBodySize int) string {
	counterparty := strings.TrimSpace(req.Counterparty)
	if counterparty == "" {
		counterparty = "unknown"
	}
	amount := "not given"
	if req.Amount != nil {
		amount = fmt.Sprintf("INR %.2f", *req.Amount)
	}
	text := tp.ProcessText(req.Text, maxBodySize)
	if strings.TrimSpace(text) == "" {
		text = "(none)"
	}
	return fmt.Sprintf(promptFormat, counterparty, amount, text)
}

// ParseReply decodes a model reply into an assessment
func ParseReply(reply, model string) (*core.ContextAssessment, error) {
	var r Reply
	if err := utils.DecodeJSONReply(reply, &r); err != nil {
		return nil, err
	}
	flags := r.Flags
	if flags == nil {
		flags = []string{}
	}
	return &core.ContextAssessment{
		RiskScore:   r.RiskScore,
		Explanation: r.Explanation,
		Flags:       flags,
		ModelUsed:   model,
		AnalyzedAt:  time.Now(),
	}, nil
}
