package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/ports"
	"go.uber.org/zap"
)

// Header values written to X-UPI-Scam-Status
const (
	StatusScam       = "scam"
	StatusSuspicious = "suspicious"
	StatusClean      = "clean"
)

// PostfixOptions configure the content filter
type PostfixOptions struct {
	ListenAddr      string
	BlockScam       bool
	Threshold       float64
	StatusHeader    string
	ScoreHeader     string
	ReasonHeader    string
	PostfixAddr     string
	PostfixPort     int
	PostfixEnabled  bool
	AnalysisTimeout time.Duration
}

// PostfixFilter implements a Postfix content filter that scans mail for UPI
// payment scams
type PostfixFilter struct {
	analyzer ports.MessageAnalyzer
	logger   *zap.Logger
	opts     PostfixOptions
	server   *smtp.Server
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(analyzer ports.MessageAnalyzer, logger *zap.Logger, opts PostfixOptions) *PostfixFilter {
	if opts.StatusHeader == "" {
		opts.StatusHeader = "X-UPI-Scam-Status"
	}
	if opts.ScoreHeader == "" {
		opts.ScoreHeader = "X-UPI-Scam-Score"
	}
	if opts.ReasonHeader == "" {
		opts.ReasonHeader = "X-UPI-Scam-Reason"
	}
	if opts.Threshold <= 0 {
		opts.Threshold = 0.7
	}
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = 10 * time.Second
	}
	return &PostfixFilter{
		analyzer: analyzer,
		logger:   logger,
		opts:     opts,
	}
}

// Name identifies the listener
func (f *PostfixFilter) Name() string {
	return "smtp"
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.opts.ListenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50

	f.logger.Info("Postfix filter starting", zap.String("address", f.opts.ListenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// Process analyzes a raw message and returns it with the scam headers
// prepended. A non-nil error means the message must be rejected.
func (f *PostfixFilter) Process(ctx context.Context, raw []byte) ([]byte, *core.MessageAnalysis, error) {
	text, _, err := messageText(raw)
	if err != nil {
		f.logger.Warn("Failed to parse message, scanning raw data", zap.Error(err))
		text = string(raw)
	}

	ctx, cancel := context.WithTimeout(ctx, f.opts.AnalysisTimeout)
	defer cancel()
	result := f.analyzer.AnalyzeMessage(ctx, text)

	status := f.status(result)
	if status == StatusScam && f.opts.BlockScam {
		return nil, &result, &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Rejected as UPI payment scam (score: %.2f)", result.ScamProbability),
		}
	}

	var annotated bytes.Buffer
	fmt.Fprintf(&annotated, "%s: %s\r\n", f.opts.StatusHeader, status)
	fmt.Fprintf(&annotated, "%s: %.4f\r\n", f.opts.ScoreHeader, result.ScamProbability)
	fmt.Fprintf(&annotated, "%s: %s\r\n", f.opts.ReasonHeader, headerSafe(result.Explanation))
	annotated.Write(raw)

	return annotated.Bytes(), &result, nil
}

func (f *PostfixFilter) status(result core.MessageAnalysis) string {
	switch {
	case result.ScamProbability >= f.opts.Threshold:
		return StatusScam
	case result.IsScam:
		return StatusSuspicious
	default:
		return StatusClean
	}
}

// headerSafe folds a value onto one header line
func headerSafe(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// sendToPostfix sends the processed email back to Postfix on the configured port
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	postfixAddr := net.JoinHostPort(f.opts.PostfixAddr, fmt.Sprint(f.opts.PostfixPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data scans the message and relays it with the scam headers added
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	annotated, result, err := s.filter.Process(context.Background(), raw)
	if err != nil {
		s.filter.logger.Info("Rejecting scam email",
			zap.String("from", s.sender),
			zap.Float64("score", result.ScamProbability),
			zap.Strings("flags", result.WarningFlags))
		return err
	}

	if s.filter.opts.PostfixEnabled {
		if err := s.filter.sendToPostfix(s.sender, s.recipients, annotated); err != nil {
			s.filter.logger.Error("Failed to send email back to Postfix",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		s.filter.logger.Warn("Postfix forwarding disabled, message scanned but not relayed")
	}

	s.filter.logger.Info("Processed email",
		zap.String("from", s.sender),
		zap.Bool("is_scam", result.IsScam),
		zap.Float64("score", result.ScamProbability),
		zap.String("risk_level", string(result.RiskLevel)))

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
