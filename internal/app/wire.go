//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/chefkit/internal/adapters"
	"github.com/trebuchet-org/chefkit/internal/config"
	"github.com/trebuchet-org/chefkit/internal/logging"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,

		// Logging
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewLocateBalanceSlot,
		usecase.NewSetTokenBalance,
		usecase.NewVerifyLocator,
		usecase.NewDeployAdapter,
		usecase.NewListDeployments,
		usecase.NewListPools,
		usecase.NewBootstrapHarness,
		usecase.NewRunAdapterScenario,
		usecase.NewRunAdapterSuite,
		usecase.NewManageAnvil,

		// App
		NewApp,
	)
	return nil, nil
}
