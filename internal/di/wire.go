//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"FxPull/internal/handler/api"
	"FxPull/internal/usecase"
	"FxPull/pkg/config"
	"FxPull/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Exchange
		ProvideLimiter,
		ProvideBinanceClient,
		ProvideCache,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideLedger,
		ProvideClickHouseRateStore,
		ProvideSinks,
		ProvideRateReader,

		// Use cases
		usecase.NewReportStore,
		ProvideSymbolResolver,
		ProvidePaginator,
		ProvideBackfiller,
		usecase.NewRatesUseCase,

		// Ops API
		api.NewRatesHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return nil, nil, nil
}
