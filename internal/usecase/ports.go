package usecase

import (
	"context"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/chefkit/internal/domain"
)

// TokenLedger reads token balances and raw token storage.
// SetStorageAt is only served by dev nodes and in-process simulations.
type TokenLedger interface {
	BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error)
	Decimals(ctx context.Context, token common.Address) (uint8, error)
	StorageAt(ctx context.Context, token common.Address, slot domain.SlotKey) (common.Hash, error)
	SetStorageAt(ctx context.Context, token common.Address, slot domain.SlotKey, value common.Hash) error
}

// TokenSandbox is an in-process TokenLedger that can install tokens with a
// chosen balances layout
type TokenSandbox interface {
	TokenLedger
	DeployToken(ctx context.Context, index uint64, convention domain.MappingConvention, decimals uint8) (common.Address, error)
	Mint(ctx context.Context, token, account common.Address, amount *big.Int) error
	StorageDump(token common.Address) map[common.Hash]common.Hash
}

// ChainController drives a dev node's chain state
type ChainController interface {
	ChainID(ctx context.Context) (*big.Int, error)
	Snapshot(ctx context.Context) (string, error)
	Revert(ctx context.Context, snapshotID string) error
	Mine(ctx context.Context) error
	Impersonate(ctx context.Context, account common.Address) error
	SetNativeBalance(ctx context.Context, account common.Address, wei *big.Int) error
}

// SignerDirectory maps harness roles to accounts
type SignerDirectory interface {
	Address(role domain.SignerRole) (common.Address, error)
	Signers() (domain.Signers, error)
}

// ContractDeployer deploys compiled artifacts by contract name
type ContractDeployer interface {
	Deploy(ctx context.Context, name string, signer domain.SignerRole, args ...interface{}) (*domain.DeployedContract, error)
}

// DeploymentStore persists deployment records
type DeploymentStore interface {
	SaveDeployment(ctx context.Context, deployment *domain.Deployment) error
	ListDeployments(ctx context.Context) ([]*domain.Deployment, error)
}

// PoolFixtureLoader loads pool and token fixtures
type PoolFixtureLoader interface {
	LoadPools(ctx context.Context) (domain.LiquidityPools, error)
	LoadTokens(ctx context.Context) (domain.TokenList, error)
}

// PoolSelector lets the user pick pools interactively
type PoolSelector interface {
	SelectPools(ctx context.Context, names []string, prompt string) ([]string, error)
}

// AdapterReader reads the views of a deployed adapter
type AdapterReader interface {
	LiquidityPoolTokenBalance(ctx context.Context, vault, underlying, pool common.Address) (*big.Int, error)
	AllAmountInToken(ctx context.Context, vault, underlying, pool common.Address) (*big.Int, error)
	RewardToken(ctx context.Context, pool common.Address) (common.Address, error)
	UnclaimedRewardTokenAmount(ctx context.Context, vault, pool, underlying common.Address) (*big.Int, error)
}

// TestAdapterDriver drives the TestDeFiAdapter vault stand-in.
// HarvestAll wraps domain.ErrSwapFailed when the swap reverted for lack of liquidity.
type TestAdapterDriver interface {
	SetUnderlyingToken(ctx context.Context, token common.Address) error
	SetInvestStrategySteps(ctx context.Context, step domain.StrategyStep) error
	DepositAll(ctx context.Context, underlying, pool, adapter common.Address) error
	ClaimRewardToken(ctx context.Context, pool, adapter common.Address) error
	HarvestAll(ctx context.Context, pool, underlying, adapter common.Address) error
	WithdrawAll(ctx context.Context, underlying, pool, adapter common.Address) error
	ERC20TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error)
}

// MasterChefReader reads MasterChefV2 pool state
type MasterChefReader interface {
	UserAmount(ctx context.Context, pid *big.Int, user common.Address) (*big.Int, error)
	PendingReward(ctx context.Context, pid *big.Int, user common.Address) (*big.Int, error)
	Rewarder(ctx context.Context, pid *big.Int) (common.Address, error)
	RewarderToken(ctx context.Context, rewarder common.Address) (common.Address, error)
}

// ContractBinder binds typed contract handles to addresses
type ContractBinder interface {
	Adapter(address common.Address) AdapterReader
	TestAdapter(address common.Address, signer domain.SignerRole) TestAdapterDriver
	MasterChef(address common.Address) MasterChefReader
}

// AnvilManager manages local anvil node instances
type AnvilManager interface {
	Start(ctx context.Context, instance *domain.AnvilInstance) error
	Stop(ctx context.Context, instance *domain.AnvilInstance) error
	GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error)
	StreamLogs(ctx context.Context, instance *domain.AnvilInstance, writer io.Writer) error
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
