package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// Adapter reads the views of a deployed MasterChefV2 adapter
type Adapter struct {
	binder  *Binder
	address common.Address
}

func (a *Adapter) LiquidityPoolTokenBalance(ctx context.Context, vault, underlying, pool common.Address) (*big.Int, error) {
	return a.binder.callBig(ctx, adapterABI, a.address, "getLiquidityPoolTokenBalance", vault, underlying, pool)
}

func (a *Adapter) AllAmountInToken(ctx context.Context, vault, underlying, pool common.Address) (*big.Int, error) {
	return a.binder.callBig(ctx, adapterABI, a.address, "getAllAmountInToken", vault, underlying, pool)
}

func (a *Adapter) RewardToken(ctx context.Context, pool common.Address) (common.Address, error) {
	return a.binder.callAddress(ctx, adapterABI, a.address, "getRewardToken", pool)
}

func (a *Adapter) UnclaimedRewardTokenAmount(ctx context.Context, vault, pool, underlying common.Address) (*big.Int, error) {
	return a.binder.callBig(ctx, adapterABI, a.address, "getUnclaimedRewardTokenAmount", vault, pool, underlying)
}

// TestAdapter drives the TestDeFiAdapter vault stand-in
type TestAdapter struct {
	binder  *Binder
	address common.Address
	signer  domain.SignerRole
}

// strategyStep mirrors DataTypes.StrategyStep for ABI packing
type strategyStep struct {
	Pool        common.Address
	OutputToken common.Address
	IsBorrow    bool
}

func (t *TestAdapter) send(ctx context.Context, method string, args ...interface{}) error {
	_, err := t.binder.transact(ctx, testDeFiAdapterABI, t.address, t.signer, method, args...)
	return err
}

func (t *TestAdapter) SetUnderlyingToken(ctx context.Context, token common.Address) error {
	return t.send(ctx, "setUnderlyingToken", token)
}

func (t *TestAdapter) SetInvestStrategySteps(ctx context.Context, step domain.StrategyStep) error {
	return t.send(ctx, "setInvestStrategySteps", strategyStep{
		Pool:        step.Pool,
		OutputToken: step.OutputToken,
		IsBorrow:    step.IsBorrow,
	})
}

func (t *TestAdapter) DepositAll(ctx context.Context, underlying, pool, adapter common.Address) error {
	return t.send(ctx, "testGetDepositAllCodes", underlying, pool, adapter)
}

func (t *TestAdapter) ClaimRewardToken(ctx context.Context, pool, adapter common.Address) error {
	return t.send(ctx, "testClaimRewardTokenCode", pool, adapter)
}

// HarvestAll wraps domain.ErrSwapFailed when the router had no liquidity for the swap
func (t *TestAdapter) HarvestAll(ctx context.Context, pool, underlying, adapter common.Address) error {
	return t.send(ctx, "testGetHarvestAllCodes", pool, underlying, adapter)
}

func (t *TestAdapter) WithdrawAll(ctx context.Context, underlying, pool, adapter common.Address) error {
	return t.send(ctx, "testGetWithdrawAllCodes", underlying, pool, adapter)
}

func (t *TestAdapter) ERC20TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	return t.binder.callBig(ctx, testDeFiAdapterABI, t.address, "getERC20TokenBalance", token, account)
}

// MasterChef reads MasterChefV2 pool state
type MasterChef struct {
	binder  *Binder
	address common.Address
}

// UserAmount returns the LP amount staked by user in pool pid
func (m *MasterChef) UserAmount(ctx context.Context, pid *big.Int, user common.Address) (*big.Int, error) {
	out, err := m.binder.call(ctx, masterChefV2ABI, m.address, "userInfo", pid, user)
	if err != nil {
		return nil, err
	}
	if len(out) != 2 {
		return nil, fmt.Errorf("MasterChefV2.userInfo: expected 2 outputs, got %d", len(out))
	}
	amount, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("MasterChefV2.userInfo: unexpected amount type %T", out[0])
	}
	return amount, nil
}

func (m *MasterChef) PendingReward(ctx context.Context, pid *big.Int, user common.Address) (*big.Int, error) {
	return m.binder.callBig(ctx, masterChefV2ABI, m.address, "pendingSushi", pid, user)
}

func (m *MasterChef) Rewarder(ctx context.Context, pid *big.Int) (common.Address, error) {
	return m.binder.callAddress(ctx, masterChefV2ABI, m.address, "rewarder", pid)
}

func (m *MasterChef) RewarderToken(ctx context.Context, rewarder common.Address) (common.Address, error) {
	return m.binder.callAddress(ctx, rewarderABI, rewarder, "rewardToken")
}

var (
	_ usecase.AdapterReader     = (*Adapter)(nil)
	_ usecase.TestAdapterDriver = (*TestAdapter)(nil)
	_ usecase.MasterChefReader  = (*MasterChef)(nil)
)
