package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mikey/upi-risk-engine/internal/adapters/filter"
	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/di"
	"github.com/mikey/upi-risk-engine/internal/engine"
	"go.uber.org/zap"
)

const usage = `Usage: upi-risk-check [flags] <command> [args]

Commands:
  check <identifier>     classify a UPI identifier
  text [text]            keyword-score text (stdin or -file when omitted)
  message                analyze an email or chat message from stdin or -file
  qr <payload>           analyze a scanned QR payload
  score <identifier>     score a payment (-amount required, -note, -history, -device-suspicious)

Run with -h for the full flag list.
`

func main() {
	flags, err := di.ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(0)
		}
		os.Exit(2)
	}
	if flags.Command == "" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags, os.Stdout)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *di.CLIFlags, service *engine.Service, cli *filter.CliFilter, logger *zap.Logger) error {
	defer logger.Sync()

	ctx := context.Background()
	startTime := time.Now()

	var result any
	switch flags.Command {
	case "check":
		id, err := firstArg(flags)
		if err != nil {
			return err
		}
		v, err := service.ClassifyIdentifier(ctx, id)
		if err != nil {
			return err
		}
		result = v

	case "text":
		text, err := textInput(flags)
		if err != nil {
			return err
		}
		result = service.AnalyzeText(text)

	case "message":
		raw, err := readInput(flags.InputFile, logger)
		if err != nil {
			return err
		}
		analysis := cli.ProcessMessage(ctx, raw)
		if !flags.JSONOutput {
			return nil
		}
		result = analysis

	case "qr":
		payload, err := firstArg(flags)
		if err != nil {
			return err
		}
		result = service.AnalyzeQR(ctx, payload)

	case "score":
		id, err := firstArg(flags)
		if err != nil {
			return err
		}
		history, err := loadHistory(flags.HistoryFile)
		if err != nil {
			return err
		}
		tx := core.Transaction{
			Identifier: id,
			Amount:     flags.Amount,
			Note:       flags.Note,
			Timestamp:  time.Now(),
		}
		if flags.DeviceSuspicious {
			tx.Device = &core.DeviceInfo{Suspicious: true}
		}
		r, err := service.ScoreTransaction(ctx, tx, history)
		if err != nil {
			return err
		}
		result = r

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", flags.Command)
	}

	if flags.JSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(os.Stdout, result)
	fmt.Printf("Processing time: %v\n", time.Since(startTime))
	return nil
}

func firstArg(flags *di.CLIFlags) (string, error) {
	if len(flags.Args) == 0 {
		return "", fmt.Errorf("%s requires an argument", flags.Command)
	}
	return flags.Args[0], nil
}

func textInput(flags *di.CLIFlags) (string, error) {
	if len(flags.Args) > 0 {
		return strings.Join(flags.Args, " "), nil
	}
	raw, err := readInput(flags.InputFile, zap.NewNop())
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// readInput reads from a file or stdin
func readInput(path string, logger *zap.Logger) ([]byte, error) {
	if path == "" {
		logger.Info("Reading input from stdin")
		return io.ReadAll(os.Stdin)
	}
	logger.Info("Reading input from file", zap.String("file", path))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return data, nil
}

func loadHistory(path string) ([]core.Transaction, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	var history []core.Transaction
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return history, nil
}

func printResult(w io.Writer, result any) {
	fmt.Fprintf(w, "\n=== Results ===\n")
	switch r := result.(type) {
	case *core.ClassificationVerdict:
		fmt.Fprintf(w, "Identifier: %s\n", r.Identifier)
		fmt.Fprintf(w, "Status: %s\n", r.Status)
		fmt.Fprintf(w, "Confidence: %.2f\n", r.ConfidenceScore)
		fmt.Fprintf(w, "Reason: %s\n", r.Reason)
		fmt.Fprintf(w, "Reports: %d\n", r.ReportCount)
		printList(w, "Risk factors", r.RiskFactors)
		printList(w, "Recommendations", r.Recommendations)

	case core.TextAnalysis:
		fmt.Fprintf(w, "Score: %.4f\n", r.Score)
		for _, m := range r.Matches {
			fmt.Fprintf(w, "  %s: %q x%d\n", m.Category, m.Keyword, m.Hits)
		}

	case *core.QRAnalysisResult:
		fmt.Fprintf(w, "Type: %s\n", r.QRType)
		fmt.Fprintf(w, "Risk: %s (%d/100)\n", r.RiskLevel, r.RiskScore)
		if r.UPI != nil {
			fmt.Fprintf(w, "Payee: %s %s\n", r.UPI.PayeeAddress, r.UPI.PayeeName)
		}
		printList(w, "Reasons", r.Reasons)

	case *core.RiskAnalysisResult:
		fmt.Fprintf(w, "Risk: %s (%.4f)\n", r.RiskLevel, r.RiskScore)
		fmt.Fprintf(w, "Needs verification: %t\n", r.NeedsVerification)
		fmt.Fprintf(w, "Degraded: %t\n", r.Degraded)
		fmt.Fprintf(w, "Recommendation: %s\n", r.Recommendation)
		for _, f := range r.RiskFactors {
			fmt.Fprintf(w, "  [%s] %s (%.2f)\n", f.Type, f.Description, f.Impact)
		}
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
