package app

import (
	"github.com/trebuchet-org/chefkit/internal/adapters/rpcclient"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Use cases
	LocateBalanceSlot *usecase.LocateBalanceSlot
	SetTokenBalance   *usecase.SetTokenBalance
	VerifyLocator     *usecase.VerifyLocator
	DeployAdapter     *usecase.DeployAdapter
	ListDeployments   *usecase.ListDeployments
	ListPools         *usecase.ListPools
	RunAdapterSuite   *usecase.RunAdapterSuite
	ManageAnvil       *usecase.ManageAnvil

	// Shared dependencies released on exit
	Progress usecase.ProgressSink
	client   *rpcclient.Client
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	locateBalanceSlot *usecase.LocateBalanceSlot,
	setTokenBalance *usecase.SetTokenBalance,
	verifyLocator *usecase.VerifyLocator,
	deployAdapter *usecase.DeployAdapter,
	listDeployments *usecase.ListDeployments,
	listPools *usecase.ListPools,
	runAdapterSuite *usecase.RunAdapterSuite,
	manageAnvil *usecase.ManageAnvil,
	progress usecase.ProgressSink,
	client *rpcclient.Client,
) (*App, error) {
	return &App{
		Config:            cfg,
		LocateBalanceSlot: locateBalanceSlot,
		SetTokenBalance:   setTokenBalance,
		VerifyLocator:     verifyLocator,
		DeployAdapter:     deployAdapter,
		ListDeployments:   listDeployments,
		ListPools:         listPools,
		RunAdapterSuite:   runAdapterSuite,
		ManageAnvil:       manageAnvil,
		Progress:          progress,
		client:            client,
	}, nil
}

// StopProgress clears any spinner left running by the last use case
func (a *App) StopProgress() {
	if s, ok := a.Progress.(interface{ Stop() }); ok {
		s.Stop()
	}
}

// Close releases the progress spinner and the RPC connection
func (a *App) Close() {
	a.StopProgress()
	if a.client != nil {
		a.client.Close()
	}
}
