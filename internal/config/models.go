package config

import (
	"fmt"
	"time"
)

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OracleConfig bounds each call to the AI oracle
type OracleConfig struct {
	Timeout      time.Duration
	MaxRetries   uint64
	RetryBackoff time.Duration
}

// CacheConfig represents the oracle assessment cache
type CacheConfig struct {
	Enabled          bool
	Type             string
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// ReportsConfig represents the scam report store
type ReportsConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// UPIConfig holds identifier list extensions and batch tuning
type UPIConfig struct {
	ExtraSafeIdentifiers []string
	ExtraScamIdentifiers []string
	BatchConcurrency     int
}

// HTTPConfig represents the JSON API listener
type HTTPConfig struct {
	Enabled       bool
	ListenAddress string
	MaxBatch      int
}

// SMTPConfig represents the mail content filter listener
type SMTPConfig struct {
	Enabled         bool
	ListenAddress   string
	BlockScam       bool
	Threshold       float64
	AnalysisTimeout time.Duration
	StatusHeader    string
	ScoreHeader     string
	ReasonHeader    string
	PostfixEnabled  bool
	PostfixAddress  string
	PostfixPort     int
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		BaseURL:     c.GetString("openai.base_url"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetOracle returns the oracle call budget
func (c *Config) GetOracle() (OracleConfig, error) {
	timeout, err := c.GetDuration("oracle.timeout")
	if err != nil {
		return OracleConfig{}, fmt.Errorf("invalid oracle timeout: %w", err)
	}
	backoff, err := c.GetDuration("oracle.retry_backoff")
	if err != nil {
		return OracleConfig{}, fmt.Errorf("invalid oracle retry backoff: %w", err)
	}
	retries := c.GetInt("oracle.max_retries")
	if retries < 0 {
		retries = 0
	}
	return OracleConfig{
		Timeout:      timeout,
		MaxRetries:   uint64(retries),
		RetryBackoff: backoff,
	}, nil
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache ttl: %w", err)
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache cleanup frequency: %w", err)
	}
	return CacheConfig{
		Enabled:          c.GetBool("cache.enabled"),
		Type:             c.GetString("cache.type"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}, nil
}

// GetReports returns the report store configuration
func (c *Config) GetReports() ReportsConfig {
	return ReportsConfig{
		Type:       c.GetString("reports.type"),
		SQLitePath: c.GetString("reports.sqlite_path"),
		MySQLDSN:   c.GetString("reports.mysql_dsn"),
	}
}

// GetUPI returns the identifier list extensions
func (c *Config) GetUPI() UPIConfig {
	return UPIConfig{
		ExtraSafeIdentifiers: c.GetStringSlice("upi.extra_safe_identifiers"),
		ExtraScamIdentifiers: c.GetStringSlice("upi.extra_scam_identifiers"),
		BatchConcurrency:     c.GetInt("upi.batch_concurrency"),
	}
}

// GetHTTP returns the HTTP listener configuration
func (c *Config) GetHTTP() HTTPConfig {
	return HTTPConfig{
		Enabled:       c.GetBool("server.http.enabled"),
		ListenAddress: c.GetString("server.http.listen_address"),
		MaxBatch:      c.GetInt("server.http.max_batch"),
	}
}

// GetSMTP returns the SMTP content filter configuration
func (c *Config) GetSMTP() (SMTPConfig, error) {
	timeout, err := c.GetDuration("server.smtp.analysis_timeout")
	if err != nil {
		return SMTPConfig{}, fmt.Errorf("invalid smtp analysis timeout: %w", err)
	}
	return SMTPConfig{
		Enabled:         c.GetBool("server.smtp.enabled"),
		ListenAddress:   c.GetString("server.smtp.listen_address"),
		BlockScam:       c.GetBool("server.smtp.block_scam"),
		Threshold:       c.GetFloat64("server.smtp.threshold"),
		AnalysisTimeout: timeout,
		StatusHeader:    c.GetString("server.smtp.headers.status"),
		ScoreHeader:     c.GetString("server.smtp.headers.score"),
		ReasonHeader:    c.GetString("server.smtp.headers.reason"),
		PostfixEnabled:  c.GetBool("server.smtp.postfix.enabled"),
		PostfixAddress:  c.GetString("server.smtp.postfix.address"),
		PostfixPort:     c.GetInt("server.smtp.postfix.port"),
	}, nil
}

// LoggingConfig represents the logger configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// GetLogging returns the logging configuration
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level:  c.GetString("logging.level"),
		Format: c.GetString("logging.format"),
	}
}
