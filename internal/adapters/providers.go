package adapters

import (
	"github.com/google/wire"
	"github.com/trebuchet-org/chefkit/internal/adapters/anvil"
	"github.com/trebuchet-org/chefkit/internal/adapters/artifacts"
	"github.com/trebuchet-org/chefkit/internal/adapters/contracts"
	"github.com/trebuchet-org/chefkit/internal/adapters/deployer"
	"github.com/trebuchet-org/chefkit/internal/adapters/fs"
	"github.com/trebuchet-org/chefkit/internal/adapters/interactive"
	"github.com/trebuchet-org/chefkit/internal/adapters/ledger"
	"github.com/trebuchet-org/chefkit/internal/adapters/progress"
	"github.com/trebuchet-org/chefkit/internal/adapters/rpcclient"
	"github.com/trebuchet-org/chefkit/internal/adapters/signers"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewDeploymentStore,
	wire.Bind(new(usecase.DeploymentStore), new(*fs.DeploymentStore)),

	fs.NewPoolFixtureLoader,
	wire.Bind(new(usecase.PoolFixtureLoader), new(*fs.PoolFixtureLoader)),

	artifacts.NewLoader,
)

// ChainSet provides the JSON-RPC backed ledger, signers and contract bindings
var ChainSet = wire.NewSet(
	rpcclient.NewClient,

	ledger.NewRPCLedger,
	wire.Bind(new(usecase.TokenLedger), new(*ledger.RPCLedger)),
	wire.Bind(new(usecase.ChainController), new(*ledger.RPCLedger)),

	signers.NewKeyring,
	wire.Bind(new(usecase.SignerDirectory), new(*signers.Keyring)),

	deployer.NewDeployer,
	wire.Bind(new(usecase.ContractDeployer), new(*deployer.Deployer)),

	contracts.NewBinder,
	wire.Bind(new(usecase.ContractBinder), new(*contracts.Binder)),
)

// SimulationSet provides the in-process EVM sandbox
var SimulationSet = wire.NewSet(
	ledger.NewSimulatedLedger,
	wire.Bind(new(usecase.TokenSandbox), new(*ledger.SimulatedLedger)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.PoolSelector), new(*interactive.SelectorAdapter)),
)

// DevSet provides local node management
var DevSet = wire.NewSet(
	anvil.NewManager,
	wire.Bind(new(usecase.AnvilManager), new(*anvil.Manager)),
)

// ProgressSet provides the progress sink for the current output mode
var ProgressSet = wire.NewSet(
	progress.NewSink,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	ChainSet,
	SimulationSet,
	InteractiveSet,
	DevSet,
	ProgressSet,
)
