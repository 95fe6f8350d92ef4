package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/triedb"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

const simulatedCallGas = 1_000_000

// SimulatedChainID is reported by the in-process ledger
var SimulatedChainID = big.NewInt(1337)

// tokenBaseAddress is where the first simulated token is installed
var tokenBaseAddress = common.HexToAddress("0x00000000000000000000000000000000c0ffee00")

// SimulatedLedger is an in-process EVM holding simulated tokens.
// It serves raw storage reads and writes the way a dev node does.
type SimulatedLedger struct {
	mu          sync.Mutex
	state       *state.StateDB
	chainConfig *params.ChainConfig
	blockNumber uint64
	caller      common.Address
	tokens      map[common.Address]MappingToken
	touched     map[common.Address]map[common.Hash]struct{}
}

// NewSimulatedLedger creates an empty in-memory chain
func NewSimulatedLedger() (*SimulatedLedger, error) {
	db, err := state.New(types.EmptyRootHash, state.NewDatabase(triedb.NewDatabase(rawdb.NewMemoryDatabase(), nil), nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create state: %w", err)
	}

	return &SimulatedLedger{
		state:       db,
		chainConfig: params.AllEthashProtocolChanges,
		blockNumber: 1,
		caller:      common.HexToAddress("0x000000000000000000000000000000000000c4ef"),
		tokens:      make(map[common.Address]MappingToken),
		touched:     make(map[common.Address]map[common.Hash]struct{}),
	}, nil
}

// DeployMappingToken installs a token with the given layout and returns its address
func (l *SimulatedLedger) DeployMappingToken(ctx context.Context, token MappingToken) (common.Address, error) {
	code, err := token.runtime()
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to assemble token: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	addr := common.BigToAddress(new(big.Int).Add(tokenBaseAddress.Big(), big.NewInt(int64(len(l.tokens)))))
	l.state.SetCode(addr, code, tracing.CodeChangeUnspecified)
	l.state.SetNonce(addr, 1, tracing.NonceChangeUnspecified)
	l.tokens[addr] = token
	return addr, nil
}

// DeployToken installs a mapping token whose balances live at index under convention
func (l *SimulatedLedger) DeployToken(ctx context.Context, index uint64, convention domain.MappingConvention, decimals uint8) (common.Address, error) {
	return l.DeployMappingToken(ctx, MappingToken{BalancesIndex: index, Convention: convention, Decimals: decimals})
}

// Mint writes a balance straight into the token's balances mapping
func (l *SimulatedLedger) Mint(ctx context.Context, token, account common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	layout, ok := l.tokens[token]
	if !ok {
		return fmt.Errorf("token %s: %w", token.Hex(), domain.ErrNotFound)
	}
	slot := domain.MappingSlot(account, layout.BalancesIndex, layout.Convention)
	l.setState(token, slot, common.BigToHash(amount))
	return nil
}

// StorageDump returns the current value of every slot written so far
func (l *SimulatedLedger) StorageDump(token common.Address) map[common.Hash]common.Hash {
	l.mu.Lock()
	defer l.mu.Unlock()

	dump := make(map[common.Hash]common.Hash, len(l.touched[token]))
	for slot := range l.touched[token] {
		dump[slot] = l.state.GetState(token, slot)
	}
	return dump
}

// BalanceOf calls balanceOf(account) on the token
func (l *SimulatedLedger) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	input := append(append([]byte{}, balanceOfSelector...), common.LeftPadBytes(account.Bytes(), 32)...)
	ret, err := l.staticCall(token, input)
	if err != nil {
		return nil, fmt.Errorf("balanceOf failed: %w", err)
	}
	return new(big.Int).SetBytes(ret), nil
}

// Decimals calls decimals() on the token
func (l *SimulatedLedger) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	ret, err := l.staticCall(token, decimalsSelector)
	if err != nil {
		return 0, fmt.Errorf("decimals failed: %w", err)
	}
	v := new(big.Int).SetBytes(ret)
	if !v.IsUint64() || v.Uint64() > 255 {
		return 0, fmt.Errorf("decimals out of range: %s", v)
	}
	return uint8(v.Uint64()), nil
}

// StorageAt reads a raw storage slot
func (l *SimulatedLedger) StorageAt(ctx context.Context, token common.Address, slot domain.SlotKey) (common.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.GetState(token, slot.Hash()), nil
}

// SetStorageAt writes a raw storage slot
func (l *SimulatedLedger) SetStorageAt(ctx context.Context, token common.Address, slot domain.SlotKey, value common.Hash) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setState(token, slot.Hash(), value)
	return nil
}

func (l *SimulatedLedger) setState(token common.Address, slot, value common.Hash) {
	if l.touched[token] == nil {
		l.touched[token] = make(map[common.Hash]struct{})
	}
	l.touched[token][slot] = struct{}{}
	l.state.SetState(token, slot, value)
}

// ChainID returns the simulated chain id
func (l *SimulatedLedger) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(SimulatedChainID), nil
}

// Snapshot records the current state and returns its id
func (l *SimulatedLedger) Snapshot(ctx context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return "0x" + strconv.FormatInt(int64(l.state.Snapshot()), 16), nil
}

// Revert restores the state recorded by Snapshot
func (l *SimulatedLedger) Revert(ctx context.Context, snapshotID string) error {
	id, err := strconv.ParseInt(snapshotID, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid snapshot id %q: %w", snapshotID, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.RevertToSnapshot(int(id))
	return nil
}

// Mine advances the block number
func (l *SimulatedLedger) Mine(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.blockNumber++
	return nil
}

// Impersonate is a no-op: the simulation accepts any caller
func (l *SimulatedLedger) Impersonate(ctx context.Context, account common.Address) error {
	return nil
}

// SetNativeBalance sets an account's ether balance
func (l *SimulatedLedger) SetNativeBalance(ctx context.Context, account common.Address, wei *big.Int) error {
	amount, overflow := uint256.FromBig(wei)
	if overflow {
		return fmt.Errorf("balance %s overflows 256 bits", wei)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.SetBalance(account, amount, tracing.BalanceChangeUnspecified)
	return nil
}

func (l *SimulatedLedger) staticCall(to common.Address, input []byte) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ret, _, err := l.newEVM().StaticCall(l.caller, to, input, simulatedCallGas)
	if err != nil {
		return nil, err
	}
	if len(ret) != 32 {
		return nil, fmt.Errorf("unexpected return length %d", len(ret))
	}
	return ret, nil
}

func (l *SimulatedLedger) newEVM() *vm.EVM {
	blockCtx := vm.BlockContext{
		CanTransfer: func(db vm.StateDB, addr common.Address, amount *uint256.Int) bool {
			return db.GetBalance(addr).Cmp(amount) >= 0
		},
		Transfer: func(db vm.StateDB, sender, recipient common.Address, amount *uint256.Int) {
			db.SubBalance(sender, amount, tracing.BalanceChangeTransfer)
			db.AddBalance(recipient, amount, tracing.BalanceChangeTransfer)
		},
		GetHash:     func(n uint64) common.Hash { return common.Hash{} },
		GasLimit:    30_000_000,
		BlockNumber: new(big.Int).SetUint64(l.blockNumber),
		Time:        0,
		Difficulty:  big.NewInt(0),
		BaseFee:     big.NewInt(0),
		Random:      &common.Hash{},
	}

	evm := vm.NewEVM(blockCtx, l.state, l.chainConfig, vm.Config{})
	evm.TxContext = vm.TxContext{
		Origin:   l.caller,
		GasPrice: big.NewInt(0),
	}
	return evm
}

var (
	_ usecase.TokenLedger     = (*SimulatedLedger)(nil)
	_ usecase.ChainController = (*SimulatedLedger)(nil)
	_ usecase.TokenSandbox    = (*SimulatedLedger)(nil)
)
