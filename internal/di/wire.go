//go:build wireinject
// +build wireinject

package di

import (
	"EnergyPulse/pkg/config"
	"EnergyPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// The returned cleanup closes infrastructure clients in reverse order.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideClickHouseClient,
		ProvideResponseCache,
		ProvideArtifactCache,
		ProvideMetrics,

		// Repositories
		ProvideSeriesStore,
		ProvideAlertPublisher,

		// Analytics
		ProvidePipeline,
		ProvideTrainer,
		ProvideForecaster,
		ProvideAlertEngine,

		// Use cases
		ProvideForecastUseCase,
		ProvideAlertsUseCase,
		ProvideAnalysisUseCase,

		// Transport
		ProvideRateLimiter,
		ProvideHub,
		ProvideScheduler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
