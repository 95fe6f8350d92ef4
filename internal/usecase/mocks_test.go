package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/chefkit/internal/adapters/ledger"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSimulated(t *testing.T) *ledger.SimulatedLedger {
	t.Helper()
	l, err := ledger.NewSimulatedLedger()
	require.NoError(t, err)
	return l
}

func deployToken(t *testing.T, l *ledger.SimulatedLedger, index uint64, convention domain.MappingConvention, decimals uint8) common.Address {
	t.Helper()
	token, err := l.DeployToken(context.Background(), index, convention, decimals)
	require.NoError(t, err)
	return token
}

// MockDeploymentStore is a mock implementation of DeploymentStore
type MockDeploymentStore struct {
	mock.Mock
}

func (m *MockDeploymentStore) SaveDeployment(ctx context.Context, deployment *domain.Deployment) error {
	args := m.Called(ctx, deployment)
	return args.Error(0)
}

func (m *MockDeploymentStore) ListDeployments(ctx context.Context) ([]*domain.Deployment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Deployment), args.Error(1)
}

// MockPoolFixtures is a mock implementation of PoolFixtureLoader
type MockPoolFixtures struct {
	mock.Mock
}

func (m *MockPoolFixtures) LoadPools(ctx context.Context) (domain.LiquidityPools, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.LiquidityPools), args.Error(1)
}

func (m *MockPoolFixtures) LoadTokens(ctx context.Context) (domain.TokenList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.TokenList), args.Error(1)
}

// MockSignerDirectory is a mock implementation of SignerDirectory
type MockSignerDirectory struct {
	mock.Mock
}

func (m *MockSignerDirectory) Address(role domain.SignerRole) (common.Address, error) {
	args := m.Called(role)
	return args.Get(0).(common.Address), args.Error(1)
}

func (m *MockSignerDirectory) Signers() (domain.Signers, error) {
	args := m.Called()
	return args.Get(0).(domain.Signers), args.Error(1)
}

// MockPoolSelector is a mock implementation of PoolSelector
type MockPoolSelector struct {
	mock.Mock
}

func (m *MockPoolSelector) SelectPools(ctx context.Context, names []string, prompt string) ([]string, error) {
	args := m.Called(ctx, names, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockAnvilManager is a mock implementation of AnvilManager
type MockAnvilManager struct {
	mock.Mock
}

func (m *MockAnvilManager) Start(ctx context.Context, instance *domain.AnvilInstance) error {
	return m.Called(ctx, instance).Error(0)
}

func (m *MockAnvilManager) Stop(ctx context.Context, instance *domain.AnvilInstance) error {
	return m.Called(ctx, instance).Error(0)
}

func (m *MockAnvilManager) GetStatus(ctx context.Context, instance *domain.AnvilInstance) (*domain.AnvilStatus, error) {
	args := m.Called(ctx, instance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnvilStatus), args.Error(1)
}

func (m *MockAnvilManager) StreamLogs(ctx context.Context, instance *domain.AnvilInstance, writer io.Writer) error {
	return m.Called(ctx, instance, writer).Error(0)
}

// MockProgressSink records progress events
type MockProgressSink struct {
	mu     sync.Mutex
	events []usecase.ProgressEvent
	infos  []string
}

func (m *MockProgressSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *MockProgressSink) Info(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, message)
}

func (m *MockProgressSink) Error(string) {}

// fakeDeployer hands out sequential addresses and records each deployment
type fakeDeployer struct {
	deployed []fakeDeployment
	failOn   string
}

type fakeDeployment struct {
	Name   string
	Signer domain.SignerRole
	Args   []interface{}
}

func (d *fakeDeployer) Deploy(ctx context.Context, name string, signer domain.SignerRole, args ...interface{}) (*domain.DeployedContract, error) {
	if name == d.failOn {
		return nil, fmt.Errorf("deploy %s: %w", name, domain.ErrTransactionReverted)
	}
	d.deployed = append(d.deployed, fakeDeployment{Name: name, Signer: signer, Args: args})
	n := int64(len(d.deployed))
	return &domain.DeployedContract{
		Name:    name,
		Address: common.BigToAddress(big.NewInt(0xd00 + n)),
		TxHash:  common.BigToHash(big.NewInt(n)),
		From:    common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
	}, nil
}

// fakeChef is an in-memory MasterChefV2 keyed by pool id
type fakeChef struct {
	staked        map[string]*big.Int
	pending       *big.Int
	rewarder      common.Address
	rewarderToken common.Address
}

func newFakeChef() *fakeChef {
	return &fakeChef{staked: make(map[string]*big.Int), pending: big.NewInt(0)}
}

func (c *fakeChef) UserAmount(ctx context.Context, pid *big.Int, user common.Address) (*big.Int, error) {
	if v, ok := c.staked[pid.String()]; ok {
		return new(big.Int).Set(v), nil
	}
	return big.NewInt(0), nil
}

func (c *fakeChef) PendingReward(ctx context.Context, pid *big.Int, user common.Address) (*big.Int, error) {
	return new(big.Int).Set(c.pending), nil
}

func (c *fakeChef) Rewarder(ctx context.Context, pid *big.Int) (common.Address, error) {
	return c.rewarder, nil
}

func (c *fakeChef) RewarderToken(ctx context.Context, rewarder common.Address) (common.Address, error) {
	return c.rewarderToken, nil
}

// fakeAdapter answers the adapter views from the fake chef
type fakeAdapter struct {
	chef        *fakeChef
	pid         *big.Int
	rewardToken common.Address
	// lpSkew is added to the reported LP balance
	lpSkew *big.Int
}

func (a *fakeAdapter) LiquidityPoolTokenBalance(ctx context.Context, vault, underlying, pool common.Address) (*big.Int, error) {
	v, _ := a.chef.UserAmount(ctx, a.pid, vault)
	if a.lpSkew != nil {
		v.Add(v, a.lpSkew)
	}
	return v, nil
}

func (a *fakeAdapter) AllAmountInToken(ctx context.Context, vault, underlying, pool common.Address) (*big.Int, error) {
	return a.chef.UserAmount(ctx, a.pid, vault)
}

func (a *fakeAdapter) RewardToken(ctx context.Context, pool common.Address) (common.Address, error) {
	return a.rewardToken, nil
}

func (a *fakeAdapter) UnclaimedRewardTokenAmount(ctx context.Context, vault, pool, underlying common.Address) (*big.Int, error) {
	return new(big.Int).Set(a.chef.pending), nil
}

// fakeDriver moves balances between the simulated token and the fake chef
type fakeDriver struct {
	ledger     *ledger.SimulatedLedger
	chef       *fakeChef
	pid        *big.Int
	vault      common.Address
	harvestErr error
	calls      []string
	steps      []domain.StrategyStep
	underlying common.Address
}

func (d *fakeDriver) SetUnderlyingToken(ctx context.Context, token common.Address) error {
	d.calls = append(d.calls, "setUnderlyingToken")
	d.underlying = token
	return nil
}

func (d *fakeDriver) SetInvestStrategySteps(ctx context.Context, step domain.StrategyStep) error {
	d.calls = append(d.calls, "setInvestStrategySteps")
	d.steps = append(d.steps, step)
	return nil
}

func (d *fakeDriver) DepositAll(ctx context.Context, underlying, pool, adapter common.Address) error {
	d.calls = append(d.calls, "deposit")
	balance, err := d.ledger.BalanceOf(ctx, underlying, d.vault)
	if err != nil {
		return err
	}
	d.chef.staked[d.pid.String()] = balance
	d.chef.pending = big.NewInt(5)
	return d.ledger.Mint(ctx, underlying, d.vault, big.NewInt(0))
}

func (d *fakeDriver) ClaimRewardToken(ctx context.Context, pool, adapter common.Address) error {
	d.calls = append(d.calls, "claim")
	return nil
}

func (d *fakeDriver) HarvestAll(ctx context.Context, pool, underlying, adapter common.Address) error {
	d.calls = append(d.calls, "harvest")
	return d.harvestErr
}

func (d *fakeDriver) WithdrawAll(ctx context.Context, underlying, pool, adapter common.Address) error {
	d.calls = append(d.calls, "withdraw")
	staked := d.chef.staked[d.pid.String()]
	delete(d.chef.staked, d.pid.String())
	if staked == nil {
		return nil
	}
	return d.ledger.Mint(ctx, underlying, d.vault, staked)
}

func (d *fakeDriver) ERC20TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	return d.ledger.BalanceOf(ctx, token, account)
}

// fakeBinder returns the same fake handles for every address
type fakeBinder struct {
	adapter *fakeAdapter
	driver  *fakeDriver
	chef    *fakeChef
	signer  domain.SignerRole
}

func (b *fakeBinder) Adapter(address common.Address) usecase.AdapterReader {
	return b.adapter
}

func (b *fakeBinder) TestAdapter(address common.Address, signer domain.SignerRole) usecase.TestAdapterDriver {
	b.signer = signer
	b.driver.vault = address
	return b.driver
}

func (b *fakeBinder) MasterChef(address common.Address) usecase.MasterChefReader {
	return b.chef
}
