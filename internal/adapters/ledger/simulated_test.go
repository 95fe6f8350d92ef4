package ledger

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/chefkit/internal/domain"
)

func newSimulated(t *testing.T) *SimulatedLedger {
	t.Helper()
	l, err := NewSimulatedLedger()
	require.NoError(t, err)
	return l
}

func TestMappingTokenRuntime_Assembles(t *testing.T) {
	code, err := MappingToken{BalancesIndex: 2, Decimals: 18}.runtime()
	require.NoError(t, err)
	require.NotEmpty(t, code)

	jumps := 0
	for pc := 0; pc < len(code); pc++ {
		op := vm.OpCode(code[pc])
		if op == vm.PUSH2 && pc+3 < len(code) && vm.OpCode(code[pc+3]) == vm.JUMPI {
			target := int(code[pc+1])<<8 | int(code[pc+2])
			require.Less(t, target, len(code))
			assert.Equal(t, vm.JUMPDEST, vm.OpCode(code[target]), "jump at %d", pc)
			jumps++
		}
		if op >= vm.PUSH1 && op <= vm.PUSH32 {
			pc += int(op - vm.PUSH1 + 1)
		}
	}
	assert.Equal(t, 2, jumps)
}

func TestAssembler_UndefinedLabel(t *testing.T) {
	a := newAssembler()
	a.pushLabel("nowhere")
	_, err := a.bytes()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nowhere")
}

func TestSimulatedLedger_BalanceOf(t *testing.T) {
	ctx := context.Background()
	holder := common.HexToAddress("0x00000000000000000000000000000000000b0b01")

	for _, convention := range []domain.MappingConvention{domain.ConventionKeyFirst, domain.ConventionIndexFirst} {
		t.Run(convention.String(), func(t *testing.T) {
			l := newSimulated(t)
			token, err := l.DeployMappingToken(ctx, MappingToken{BalancesIndex: 7, Convention: convention, Decimals: 6})
			require.NoError(t, err)

			balance, err := l.BalanceOf(ctx, token, holder)
			require.NoError(t, err)
			assert.Equal(t, 0, balance.Sign())

			require.NoError(t, l.Mint(ctx, token, holder, big.NewInt(1_000_000)))

			balance, err = l.BalanceOf(ctx, token, holder)
			require.NoError(t, err)
			assert.Equal(t, big.NewInt(1_000_000), balance)

			// the balance lives exactly at the mapping slot of the layout
			slot := domain.SlotKeyFromHash(domain.MappingSlot(holder, 7, convention))
			raw, err := l.StorageAt(ctx, token, slot)
			require.NoError(t, err)
			assert.Equal(t, common.BigToHash(big.NewInt(1_000_000)), raw)
		})
	}
}

func TestSimulatedLedger_Decimals(t *testing.T) {
	ctx := context.Background()
	l := newSimulated(t)

	usdc, err := l.DeployMappingToken(ctx, MappingToken{BalancesIndex: 9, Decimals: 6})
	require.NoError(t, err)
	weth, err := l.DeployMappingToken(ctx, MappingToken{BalancesIndex: 3, Decimals: 18})
	require.NoError(t, err)
	assert.NotEqual(t, usdc, weth)

	d, err := l.Decimals(ctx, usdc)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), d)

	d, err = l.Decimals(ctx, weth)
	require.NoError(t, err)
	assert.Equal(t, uint8(18), d)
}

func TestSimulatedLedger_StorageWritesAffectBalance(t *testing.T) {
	ctx := context.Background()
	l := newSimulated(t)
	token, err := l.DeployMappingToken(ctx, MappingToken{BalancesIndex: 2, Decimals: 18})
	require.NoError(t, err)

	key := domain.BalanceSlot{Index: 2}.KeyFor(common.Address{})
	require.NoError(t, l.SetStorageAt(ctx, token, key, domain.SentinelValue))

	balance, err := l.BalanceOf(ctx, token, common.Address{})
	require.NoError(t, err)
	assert.Equal(t, domain.SentinelValue.Big(), balance)

	dump := l.StorageDump(token)
	assert.Equal(t, map[common.Hash]common.Hash{key.Hash(): domain.SentinelValue}, dump)
}

func TestSimulatedLedger_UnknownSelectorReverts(t *testing.T) {
	l := newSimulated(t)
	token, err := l.DeployMappingToken(context.Background(), MappingToken{})
	require.NoError(t, err)

	_, err = l.staticCall(token, []byte{0xde, 0xad, 0xbe, 0xef})
	require.Error(t, err)
}

func TestSimulatedLedger_SnapshotRevert(t *testing.T) {
	ctx := context.Background()
	l := newSimulated(t)
	token, err := l.DeployMappingToken(ctx, MappingToken{BalancesIndex: 0, Decimals: 18})
	require.NoError(t, err)
	holder := common.HexToAddress("0x0000000000000000000000000000000000000abc")

	id, err := l.Snapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, l.Mint(ctx, token, holder, big.NewInt(42)))
	require.NoError(t, l.SetNativeBalance(ctx, holder, big.NewInt(1e18)))

	require.NoError(t, l.Revert(ctx, id))

	balance, err := l.BalanceOf(ctx, token, holder)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Sign())

	_, err = l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Error(t, l.Revert(ctx, "not-a-number"))
}

func TestSimulatedLedger_MintUnknownToken(t *testing.T) {
	l := newSimulated(t)
	err := l.Mint(context.Background(), common.HexToAddress("0x1"), common.Address{}, big.NewInt(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
