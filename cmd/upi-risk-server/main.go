package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/mikey/upi-risk-engine/internal/di"
	"github.com/mikey/upi-risk-engine/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	listeners []ports.Listener,
	oracle core.ContextOracle,
	cacheRepo core.CacheRepository,
	reports core.ReportRepository,
) error {
	defer logger.Sync()

	if len(listeners) == 0 {
		return fmt.Errorf("no listeners enabled; set server.http.enabled or server.smtp.enabled")
	}

	// Start the listeners
	started := make([]ports.Listener, 0, len(listeners))
	for _, l := range listeners {
		if err := l.Start(); err != nil {
			logger.Error("Failed to start listener", zap.String("listener", l.Name()), zap.Error(err))
			stopAll(logger, started)
			return err
		}
		started = append(started, l)
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	stopAll(logger, started)

	// Close any resources that need closing
	if closer, ok := oracle.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}

	// Stop the cache if needed
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	if closer, ok := reports.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close report store", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}

func stopAll(logger *zap.Logger, listeners []ports.Listener) {
	for i := len(listeners) - 1; i >= 0; i-- {
		if err := listeners[i].Stop(); err != nil {
			logger.Error("Failed to stop listener", zap.String("listener", listeners[i].Name()), zap.Error(err))
		}
	}
}
