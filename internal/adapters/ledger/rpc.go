package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/chefkit/internal/adapters/contracts"
	"github.com/trebuchet-org/chefkit/internal/adapters/rpcclient"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// RPCLedger talks to a hardhat or anvil dev node. Storage writes and chain
// control use the node's cheat methods, namespaced by dialect.
type RPCLedger struct {
	client  *rpcclient.Client
	dialect config.StorageDialect
	log     *slog.Logger
}

// NewRPCLedger creates a ledger for the configured network
func NewRPCLedger(client *rpcclient.Client, cfg *config.RuntimeConfig, log *slog.Logger) *RPCLedger {
	dialect := config.DialectHardhat
	if cfg.Harness != nil && cfg.Harness.Chain.Dialect != "" {
		dialect = cfg.Harness.Chain.Dialect
	}
	return &RPCLedger{
		client:  client,
		dialect: dialect,
		log:     log.With("component", "ledger", "dialect", string(dialect)),
	}
}

// Dialect returns the cheat method namespace in use
func (l *RPCLedger) Dialect() config.StorageDialect {
	return l.dialect
}

func (l *RPCLedger) method(name string) string {
	return string(l.dialect) + "_" + name
}

func (l *RPCLedger) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	client, err := l.client.RPC()
	if err != nil {
		return err
	}
	if err := client.CallContext(ctx, result, method, args...); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

func (l *RPCLedger) erc20(token common.Address) (*bind.BoundContract, error) {
	parsed, err := contracts.ERC20ABI()
	if err != nil {
		return nil, err
	}
	eth, err := l.client.Eth()
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(token, parsed, eth, eth, eth), nil
}

// BalanceOf calls balanceOf(account) on the token
func (l *RPCLedger) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	contract, err := l.erc20(token)
	if err != nil {
		return nil, err
	}
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", account); err != nil {
		return nil, fmt.Errorf("balanceOf failed: %w", err)
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf returned %T", out[0])
	}
	return balance, nil
}

// Decimals calls decimals() on the token
func (l *RPCLedger) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	contract, err := l.erc20(token)
	if err != nil {
		return 0, err
	}
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "decimals"); err != nil {
		return 0, fmt.Errorf("decimals failed: %w", err)
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals returned %T", out[0])
	}
	return decimals, nil
}

// StorageAt reads a raw storage slot at the latest block
func (l *RPCLedger) StorageAt(ctx context.Context, token common.Address, slot domain.SlotKey) (common.Hash, error) {
	var raw hexutil.Bytes
	if err := l.call(ctx, &raw, "eth_getStorageAt", token, slot.String(), "latest"); err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(raw), nil
}

// SetStorageAt overwrites a raw storage slot
func (l *RPCLedger) SetStorageAt(ctx context.Context, token common.Address, slot domain.SlotKey, value common.Hash) error {
	l.log.Debug("set storage", "token", token.Hex(), "slot", slot.String(), "value", value.Hex())
	var ok interface{}
	return l.call(ctx, &ok, l.method("setStorageAt"), token, slot.String(), value.Hex())
}

// ChainID returns the node's chain id
func (l *RPCLedger) ChainID(ctx context.Context) (*big.Int, error) {
	var id hexutil.Big
	if err := l.call(ctx, &id, "eth_chainId"); err != nil {
		return nil, err
	}
	return id.ToInt(), nil
}

// Snapshot records the chain state
func (l *RPCLedger) Snapshot(ctx context.Context) (string, error) {
	var id string
	if err := l.call(ctx, &id, "evm_snapshot"); err != nil {
		return "", err
	}
	return id, nil
}

// Revert restores a snapshot. Nodes answer false for unknown ids.
func (l *RPCLedger) Revert(ctx context.Context, snapshotID string) error {
	var reverted bool
	if err := l.call(ctx, &reverted, "evm_revert", snapshotID); err != nil {
		return err
	}
	if !reverted {
		return fmt.Errorf("evm_revert returned false for snapshot %s", snapshotID)
	}
	return nil
}

// Mine mines a single block
func (l *RPCLedger) Mine(ctx context.Context) error {
	var result interface{}
	return l.call(ctx, &result, "evm_mine")
}

// Impersonate lets the node accept unsigned transactions from account
func (l *RPCLedger) Impersonate(ctx context.Context, account common.Address) error {
	var result interface{}
	return l.call(ctx, &result, l.method("impersonateAccount"), account)
}

// SetNativeBalance sets an account's ether balance
func (l *RPCLedger) SetNativeBalance(ctx context.Context, account common.Address, wei *big.Int) error {
	var result interface{}
	return l.call(ctx, &result, l.method("setBalance"), account, hexutil.EncodeBig(wei))
}

var (
	_ usecase.TokenLedger     = (*RPCLedger)(nil)
	_ usecase.ChainController = (*RPCLedger)(nil)
)
