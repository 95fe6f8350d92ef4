package contracts

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/chefkit/internal/adapters/rpcclient"
	"github.com/trebuchet-org/chefkit/internal/adapters/signers"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// Binder binds typed contract handles against the configured network
type Binder struct {
	client   *rpcclient.Client
	keyring  *signers.Keyring
	gasPrice *big.Int
	log      *slog.Logger

	chainOnce sync.Once
	chainID   *big.Int
	chainErr  error
}

// NewBinder creates a new contract binder
func NewBinder(client *rpcclient.Client, keyring *signers.Keyring, cfg *config.RuntimeConfig, log *slog.Logger) *Binder {
	b := &Binder{
		client:  client,
		keyring: keyring,
		log:     log.With("component", "contracts"),
	}
	if cfg != nil && cfg.Harness != nil {
		b.gasPrice = cfg.Harness.Chain.GasPriceWei()
	}
	return b
}

// Adapter binds the MasterChefV2 adapter views
func (b *Binder) Adapter(address common.Address) usecase.AdapterReader {
	return &Adapter{binder: b, address: address}
}

// TestAdapter binds the TestDeFiAdapter, sending transactions as signer
func (b *Binder) TestAdapter(address common.Address, signer domain.SignerRole) usecase.TestAdapterDriver {
	return &TestAdapter{binder: b, address: address, signer: signer}
}

// MasterChef binds the MasterChefV2 views
func (b *Binder) MasterChef(address common.Address) usecase.MasterChefReader {
	return &MasterChef{binder: b, address: address}
}

func (b *Binder) bound(parsed *parsedABI, address common.Address) (*bind.BoundContract, error) {
	contractABI, err := parsed.get()
	if err != nil {
		return nil, err
	}
	eth, err := b.client.Eth()
	if err != nil {
		return nil, err
	}
	return bind.NewBoundContract(address, contractABI, eth, eth, eth), nil
}

func (b *Binder) getChainID(ctx context.Context) (*big.Int, error) {
	b.chainOnce.Do(func() {
		eth, err := b.client.Eth()
		if err != nil {
			b.chainErr = err
			return
		}
		b.chainID, b.chainErr = eth.ChainID(ctx)
		if b.chainErr != nil {
			b.chainErr = fmt.Errorf("failed to get chain ID: %w", b.chainErr)
		}
	})
	return b.chainID, b.chainErr
}

// call executes a view method and returns its outputs
func (b *Binder) call(ctx context.Context, parsed *parsedABI, address common.Address, method string, args ...interface{}) ([]interface{}, error) {
	contract, err := b.bound(parsed, address)
	if err != nil {
		return nil, err
	}

	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", parsed.name, method, err)
	}
	return out, nil
}

func (b *Binder) callBig(ctx context.Context, parsed *parsedABI, address common.Address, method string, args ...interface{}) (*big.Int, error) {
	out, err := b.call(ctx, parsed, address, method, args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s.%s: empty result", parsed.name, method)
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s.%s: unexpected result type %T", parsed.name, method, out[0])
	}
	return v, nil
}

func (b *Binder) callAddress(ctx context.Context, parsed *parsedABI, address common.Address, method string, args ...interface{}) (common.Address, error) {
	out, err := b.call(ctx, parsed, address, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	if len(out) == 0 {
		return common.Address{}, fmt.Errorf("%s.%s: empty result", parsed.name, method)
	}
	v, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s.%s: unexpected result type %T", parsed.name, method, out[0])
	}
	return v, nil
}

// transact estimates, sends and waits for a state-changing call.
// Reverts surface from the estimate with the node's revert reason.
func (b *Binder) transact(ctx context.Context, parsed *parsedABI, address common.Address, signer domain.SignerRole, method string, args ...interface{}) (*types.Receipt, error) {
	contractABI, err := parsed.get()
	if err != nil {
		return nil, err
	}
	input, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s.%s: %w", parsed.name, method, err)
	}

	chainID, err := b.getChainID(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := b.keyring.TransactOpts(ctx, signer, chainID)
	if err != nil {
		return nil, err
	}
	opts.GasPrice = b.gasPrice

	eth, err := b.client.Eth()
	if err != nil {
		return nil, err
	}

	gas, err := eth.EstimateGas(ctx, ethereum.CallMsg{
		From:     opts.From,
		To:       &address,
		GasPrice: opts.GasPrice,
		Data:     input,
	})
	if err != nil {
		return nil, classifyRevert(fmt.Sprintf("%s.%s", parsed.name, method), err)
	}
	opts.GasLimit = gas

	contract := bind.NewBoundContract(address, contractABI, eth, eth, eth)
	tx, err := contract.RawTransact(opts, input)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s.%s: %w", parsed.name, method, err)
	}

	b.log.Debug("sent transaction", "method", method, "to", address.Hex(), "tx", tx.Hash().Hex(), "gas", gas)

	receipt, err := bind.WaitMined(ctx, eth, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s.%s: %w", parsed.name, method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%s.%s (tx %s): %w", parsed.name, method, tx.Hash().Hex(), domain.ErrTransactionReverted)
	}
	return receipt, nil
}

// ERC20Balance reads balanceOf on any token
func (b *Binder) ERC20Balance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	return b.callBig(ctx, erc20ABI, token, "balanceOf", account)
}

// ERC20Decimals reads decimals on any token
func (b *Binder) ERC20Decimals(ctx context.Context, token common.Address) (uint8, error) {
	out, err := b.call(ctx, erc20ABI, token, "decimals")
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("ERC20.decimals: empty result")
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("ERC20.decimals: unexpected result type %T", out[0])
	}
	return d, nil
}

var _ usecase.ContractBinder = (*Binder)(nil)
