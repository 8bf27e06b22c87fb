package factory

import (
	"github.com/mikey/upi-risk-engine/internal/adapters/filter"
	"github.com/mikey/upi-risk-engine/internal/adapters/httpapi"
	"github.com/mikey/upi-risk-engine/internal/config"
	"github.com/mikey/upi-risk-engine/internal/metrics"
	"github.com/mikey/upi-risk-engine/internal/ports"
	"go.uber.org/zap"
)

// ListenerFactory creates the network frontends enabled in configuration
type ListenerFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service ports.RiskService
	metrics *metrics.Metrics
}

// NewListenerFactory creates a new listener factory
func NewListenerFactory(cfg *config.Config, logger *zap.Logger, service ports.RiskService, m *metrics.Metrics) *ListenerFactory {
	return &ListenerFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		metrics: m,
	}
}

// CreateListeners returns every enabled listener
func (f *ListenerFactory) CreateListeners() ([]ports.Listener, error) {
	var listeners []ports.Listener

	hc := f.cfg.GetHTTP()
	if hc.Enabled {
		listeners = append(listeners, httpapi.NewServer(f.service, f.metrics, f.logger, hc.ListenAddress, hc.MaxBatch))
	}

	sc, err := f.cfg.GetSMTP()
	if err != nil {
		return nil, err
	}
	if sc.Enabled {
		listeners = append(listeners, filter.NewPostfixFilter(f.service, f.logger, filter.PostfixOptions{
			ListenAddr:      sc.ListenAddress,
			BlockScam:       sc.BlockScam,
			Threshold:       sc.Threshold,
			StatusHeader:    sc.StatusHeader,
			ScoreHeader:     sc.ScoreHeader,
			ReasonHeader:    sc.ReasonHeader,
			PostfixAddr:     sc.PostfixAddress,
			PostfixPort:     sc.PostfixPort,
			PostfixEnabled:  sc.PostfixEnabled,
			AnalysisTimeout: sc.AnalysisTimeout,
		}))
	}

	return listeners, nil
}
