package filter

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/ports"
	"go.uber.org/zap"
)

// CliFilter scans a single message from the command line and prints the result
type CliFilter struct {
	analyzer ports.MessageAnalyzer
	logger   *zap.Logger
	verbose  bool
	out      io.Writer
}

// NewCliFilter creates a new CLI filter writing to out
func NewCliFilter(analyzer ports.MessageAnalyzer, logger *zap.Logger, verbose bool, out io.Writer) *CliFilter {
	return &CliFilter{
		analyzer: analyzer,
		logger:   logger,
		verbose:  verbose,
		out:      out,
	}
}

// ProcessMessage analyzes raw, which may be an RFC 5322 message or plain
// text, and displays the results
func (f *CliFilter) ProcessMessage(ctx context.Context, raw []byte) core.MessageAnalysis {
	text, msg, err := messageText(raw)
	if err != nil {
		f.logger.Debug("Input is not an email message, analyzing as plain text", zap.Error(err))
		text = string(raw)
	}

	fmt.Fprintf(f.out, "\n=== Message Summary ===\n")
	if msg != nil {
		fmt.Fprintf(f.out, "From: %s\n", msg.Header.Get("From"))
		fmt.Fprintf(f.out, "Subject: %s\n", decodeHeader(msg.Header.Get("Subject")))
	}
	fmt.Fprintf(f.out, "Text length: %d bytes\n", len(text))

	if f.verbose {
		preview := text
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Fprintf(f.out, "\nText preview:\n%s\n", preview)
	}

	startTime := time.Now()
	result := f.analyzer.AnalyzeMessage(ctx, text)
	duration := time.Since(startTime)

	fmt.Fprintf(f.out, "\n=== Results ===\n")
	fmt.Fprintf(f.out, "Is scam: %t\n", result.IsScam)
	fmt.Fprintf(f.out, "Scam probability: %.4f\n", result.ScamProbability)
	fmt.Fprintf(f.out, "Risk level: %s\n", result.RiskLevel)
	fmt.Fprintf(f.out, "Keyword score: %.4f\n", result.KeywordScore)
	if result.AIScore != nil {
		fmt.Fprintf(f.out, "AI score: %.4f\n", *result.AIScore)
	}
	if len(result.WarningFlags) > 0 {
		fmt.Fprintf(f.out, "Warning flags:\n  - %s\n", strings.Join(result.WarningFlags, "\n  - "))
	}
	fmt.Fprintf(f.out, "Explanation: %s\n", result.Explanation)
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return result
}
