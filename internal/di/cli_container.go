package di

import (
	"flag"
	"io"
	"os"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/upi-risk-engine/internal/adapters/filter"
	"github.com/mikey/upi-risk-engine/internal/config"
	"github.com/mikey/upi-risk-engine/internal/engine"
	"github.com/mikey/upi-risk-engine/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider      string
	MaxTokens     int
	Temperature   float64
	TopP          float64
	MaxBodySize   int
	OracleTimeout string

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Report store flags
	ReportsType string
	ReportsPath string

	// Transaction flags
	Amount           float64
	Note             string
	HistoryFile      string
	DeviceSuspicious bool

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	JSONOutput bool
	ConfigFile string

	// Command is the subcommand and Args its operands
	Command string
	Args    []string
}

// ParseFlags parses command line arguments, excluding the program name
func ParseFlags(args []string, output io.Writer) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("upi-risk-check", flag.ContinueOnError)
	fs.SetOutput(output)

	// LLM provider flags
	fs.StringVar(&flags.Provider, "provider", envOr("UPI_RISK_LLM_PROVIDER", "none"), "LLM provider (none, bedrock, gemini, openai)")
	fs.IntVar(&flags.MaxTokens, "max-tokens", 512, "Maximum tokens for LLM response")
	fs.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for LLM generation")
	fs.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	fs.IntVar(&flags.MaxBodySize, "max-body-size", 4096, "Maximum text size to send to LLM")
	fs.StringVar(&flags.OracleTimeout, "oracle-timeout", "10s", "Timeout for each LLM call")

	// Bedrock flags
	fs.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	fs.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-3-haiku-20240307-v1:0", "Bedrock model ID")

	// Gemini flags
	fs.StringVar(&flags.GeminiAPIKey, "gemini-api-key", os.Getenv("GEMINI_API_KEY"), "API key for Google Gemini")
	fs.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-1.5-flash", "Gemini model name")

	// OpenAI flags
	fs.StringVar(&flags.OpenAIAPIKey, "openai-api-key", os.Getenv("OPENAI_API_KEY"), "API key for OpenAI")
	fs.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4o-mini", "OpenAI model name")

	// Report store flags
	fs.StringVar(&flags.ReportsType, "reports", "memory", "Report store (memory, sqlite)")
	fs.StringVar(&flags.ReportsPath, "reports-path", "scam_reports.db", "SQLite report database path")

	// Transaction flags
	fs.Float64Var(&flags.Amount, "amount", 0, "Transaction amount in INR (score)")
	fs.StringVar(&flags.Note, "note", "", "Transaction note (score)")
	fs.StringVar(&flags.HistoryFile, "history", "", "JSON file with past transactions (score)")
	fs.BoolVar(&flags.DeviceSuspicious, "device-suspicious", false, "Mark the paying device as suspicious (score)")

	// Input flags
	fs.StringVar(&flags.InputFile, "file", "", "Input file for text/message (use stdin if not specified)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.BoolVar(&flags.JSONOutput, "json", false, "Print results as JSON")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if rest := fs.Args(); len(rest) > 0 {
		flags.Command = strings.ToLower(rest[0])
		flags.Args = rest[1:]
	}
	return flags, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags, out io.Writer) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideEngine(container, false); err != nil {
		return nil, err
	}

	// Register message filter
	if err := container.Provide(func(s *engine.Service, logger *zap.Logger, flags *CLIFlags) *filter.CliFilter {
		return filter.NewCliFilter(s, logger, flags.Verbose, out)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// The CLI never listens and never caches
	v.Set("server.http.enabled", false)
	v.Set("cache.enabled", false)

	// Set LLM provider
	v.Set("llm.provider", flags.Provider)
	v.Set("oracle.timeout", flags.OracleTimeout)

	// Set provider-specific configuration
	switch flags.Provider {
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_body_size", flags.MaxBodySize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_body_size", flags.MaxBodySize)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_body_size", flags.MaxBodySize)
	}

	// Set report store
	v.Set("reports.type", flags.ReportsType)
	v.Set("reports.sqlite_path", flags.ReportsPath)

	return config.NewFromViper(v)
}
