package factory

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mikey/upi-risk-engine/internal/adapters/bedrock"
	"github.com/mikey/upi-risk-engine/internal/adapters/gemini"
	"github.com/mikey/upi-risk-engine/internal/adapters/openai"
	"github.com/mikey/upi-risk-engine/internal/config"
	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/utils"
)

// LLMFactory creates the AI context oracle
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateContextOracle creates an oracle for the configured provider. It
// returns a nil oracle when no provider is configured or its credentials are
// missing; the engine then runs without the AI signal.
func (f *LLMFactory) CreateContextOracle() (core.ContextOracle, error) {
	provider := strings.ToLower(strings.TrimSpace(f.cfg.GetLLM().Provider))

	switch provider {
	case "", "none":
		f.logger.Warn("No LLM provider configured, AI context signal disabled")
		return nil, nil
	case "openai":
		return f.createOpenAI()
	case "gemini":
		return f.createGemini()
	case "bedrock":
		return f.createBedrock()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

func (f *LLMFactory) createOpenAI() (core.ContextOracle, error) {
	oc := f.cfg.GetOpenAI()
	if oc.APIKey == "" {
		f.logger.Warn("OpenAI API key is not set, AI context signal disabled")
		return nil, nil
	}

	clientCfg := goopenai.DefaultConfig(oc.APIKey)
	if oc.BaseURL != "" {
		clientCfg.BaseURL = oc.BaseURL
	}

	f.logger.Info("Using OpenAI oracle", zap.String("model", oc.ModelName))
	return openai.NewOpenAIClient(
		goopenai.NewClientWithConfig(clientCfg),
		oc.ModelName,
		oc.MaxTokens,
		oc.Temperature,
		oc.TopP,
		oc.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}

func (f *LLMFactory) createGemini() (core.ContextOracle, error) {
	gc := f.cfg.GetGemini()
	if gc.APIKey == "" {
		f.logger.Warn("Gemini API key is not set, AI context signal disabled")
		return nil, nil
	}

	client, err := gemini.NewGeminiClient(
		gc.APIKey,
		gc.ModelName,
		gc.MaxTokens,
		gc.Temperature,
		gc.TopP,
		gc.MaxBodySize,
		f.logger,
		f.textProcessor,
	)
	if err != nil {
		return nil, err
	}
	f.logger.Info("Using Gemini oracle", zap.String("model", gc.ModelName))
	return client, nil
}

func (f *LLMFactory) createBedrock() (core.ContextOracle, error) {
	bc := f.cfg.GetBedrock()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(bc.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	f.logger.Info("Using Bedrock oracle",
		zap.String("model", bc.ModelID),
		zap.String("region", bc.Region))
	return bedrock.NewBedrockClient(
		bedrockruntime.NewFromConfig(awsCfg),
		bc.ModelID,
		bc.MaxTokens,
		bc.Temperature,
		bc.TopP,
		bc.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}
