package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/upi-risk-engine/internal/config"
	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/engine"
	"github.com/mikey/upi-risk-engine/internal/factory"
	"github.com/mikey/upi-risk-engine/internal/logging"
	"github.com/mikey/upi-risk-engine/internal/metrics"
	"github.com/mikey/upi-risk-engine/internal/oracle"
	"github.com/mikey/upi-risk-engine/internal/patterns"
	"github.com/mikey/upi-risk-engine/internal/ports"
	"github.com/mikey/upi-risk-engine/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideEngine(container, true); err != nil {
		return nil, err
	}

	// Register network listeners
	if err := container.Provide(factory.NewListenerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.ListenerFactory) ([]ports.Listener, error) {
		return f.CreateListeners()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideEngine registers everything between configuration and the risk
// service. The CLI runs without the oracle cache.
func provideEngine(container *dig.Container, withCache bool) error {
	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewReportStoreFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register oracle and its cache
	if err := container.Provide(func(f *factory.LLMFactory) (core.ContextOracle, error) {
		return f.CreateContextOracle()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		if !withCache {
			return nil, nil
		}
		return f.CreateCacheRepository()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(
		cfg *config.Config,
		o core.ContextOracle,
		cache core.CacheRepository,
		logger *zap.Logger,
	) (*oracle.Advisor, error) {
		oc, err := cfg.GetOracle()
		if err != nil {
			return nil, err
		}
		opts := oracle.Options{
			Timeout:    oc.Timeout,
			MaxRetries: oc.MaxRetries,
			Backoff:    oc.RetryBackoff,
		}
		if cache != nil {
			cc, err := cfg.GetCache()
			if err != nil {
				return nil, err
			}
			opts.CacheTTL = cc.TTL
		}
		return oracle.NewAdvisor(o, cache, opts, logger), nil
	}); err != nil {
		return err
	}

	// Register report store
	if err := container.Provide(func(f *factory.ReportStoreFactory) (core.ReportRepository, error) {
		return f.CreateReportRepository()
	}); err != nil {
		return err
	}

	// Register pattern tables
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *patterns.Library {
		uc := cfg.GetUPI()
		if n := len(uc.ExtraSafeIdentifiers) + len(uc.ExtraScamIdentifiers); n > 0 {
			logger.Info("Loaded extra identifiers",
				zap.Strings("safe", uc.ExtraSafeIdentifiers),
				zap.Strings("scam", uc.ExtraScamIdentifiers))
		}
		return patterns.NewLibrary(uc.ExtraSafeIdentifiers, uc.ExtraScamIdentifiers, logger)
	}); err != nil {
		return err
	}
	if err := container.Provide(patterns.DefaultLexicon); err != nil {
		return err
	}

	// Register metrics
	if err := container.Provide(metrics.NewMetrics); err != nil {
		return err
	}

	// Register risk service
	if err := container.Provide(func(
		cfg *config.Config,
		lib *patterns.Library,
		lexicon *patterns.Lexicon,
		tp *utils.TextProcessor,
		reports core.ReportRepository,
		advisor *oracle.Advisor,
		m *metrics.Metrics,
		logger *zap.Logger,
	) *engine.Service {
		return engine.NewService(lib, lexicon, tp, reports, advisor, m, logger, engine.Options{
			BatchConcurrency: cfg.GetUPI().BatchConcurrency,
		})
	}); err != nil {
		return err
	}
	if err := container.Provide(func(s *engine.Service) ports.RiskService {
		return s
	}); err != nil {
		return err
	}

	return nil
}
