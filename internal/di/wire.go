//go:build wireinject
// +build wireinject

package di

import (
	"MarketWatch/pkg/config"
	"MarketWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideStore,
		ProvideHTTPClient,
		ProvidePacer,
		ProvidePublisher,

		// Repositories
		ProvideMarketData,
		ProvideSymbolIndex,
		ProvideSnapshotStore,

		// Use cases
		ProvideSymbolCache,
		ProvideQuoteService,
		ProvideRefreshJob,

		// Delivery
		ProvideScheduler,
		ProvideHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
