package ledger

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/trebuchet-org/chefkit/internal/domain"
)

var (
	balanceOfSelector = []byte{0x70, 0xa0, 0x82, 0x31}
	decimalsSelector  = []byte{0x31, 0x3c, 0xe5, 0x67}
)

// MappingToken describes the storage layout of a simulated token
type MappingToken struct {
	BalancesIndex uint64
	Convention    domain.MappingConvention
	Decimals      uint8
}

// assembler emits EVM bytecode with forward jump labels
type assembler struct {
	code   []byte
	labels map[string]int
	refs   map[int]string
}

func newAssembler() *assembler {
	return &assembler{
		labels: make(map[string]int),
		refs:   make(map[int]string),
	}
}

func (a *assembler) op(ops ...vm.OpCode) {
	for _, o := range ops {
		a.code = append(a.code, byte(o))
	}
}

func (a *assembler) push(value []byte) {
	if len(value) == 0 {
		value = []byte{0}
	}
	a.code = append(a.code, byte(vm.PUSH1)+byte(len(value)-1))
	a.code = append(a.code, value...)
}

func (a *assembler) pushUint(v uint64) {
	a.push(new(big.Int).SetUint64(v).Bytes())
}

func (a *assembler) pushLabel(name string) {
	a.op(vm.PUSH2)
	a.refs[len(a.code)] = name
	a.code = append(a.code, 0, 0)
}

func (a *assembler) label(name string) {
	a.labels[name] = len(a.code)
	a.op(vm.JUMPDEST)
}

func (a *assembler) bytes() ([]byte, error) {
	for pos, name := range a.refs {
		dest, ok := a.labels[name]
		if !ok {
			return nil, fmt.Errorf("undefined label %q", name)
		}
		binary.BigEndian.PutUint16(a.code[pos:], uint16(dest))
	}
	return a.code, nil
}

// runtime assembles a token that answers balanceOf(address) from its
// balances mapping and decimals() from a constant. Anything else reverts.
func (t MappingToken) runtime() ([]byte, error) {
	keyOffset, indexOffset := uint64(0x00), uint64(0x20)
	if t.Convention == domain.ConventionIndexFirst {
		keyOffset, indexOffset = 0x20, 0x00
	}

	a := newAssembler()

	// selector dispatch
	a.pushUint(0)
	a.op(vm.CALLDATALOAD)
	a.pushUint(0xe0)
	a.op(vm.SHR)

	a.op(vm.DUP1)
	a.push(balanceOfSelector)
	a.op(vm.EQ)
	a.pushLabel("balanceOf")
	a.op(vm.JUMPI)

	a.op(vm.DUP1)
	a.push(decimalsSelector)
	a.op(vm.EQ)
	a.pushLabel("decimals")
	a.op(vm.JUMPI)

	a.pushUint(0)
	a.op(vm.DUP1, vm.REVERT)

	// balanceOf: sload(keccak256(encoded key and index))
	a.label("balanceOf")
	a.op(vm.POP)
	a.pushUint(4)
	a.op(vm.CALLDATALOAD)
	a.pushUint(keyOffset)
	a.op(vm.MSTORE)
	a.pushUint(t.BalancesIndex)
	a.pushUint(indexOffset)
	a.op(vm.MSTORE)
	a.pushUint(0x40)
	a.pushUint(0)
	a.op(vm.KECCAK256, vm.SLOAD)
	a.pushUint(0)
	a.op(vm.MSTORE)
	a.pushUint(0x20)
	a.pushUint(0)
	a.op(vm.RETURN)

	// decimals
	a.label("decimals")
	a.op(vm.POP)
	a.pushUint(uint64(t.Decimals))
	a.pushUint(0)
	a.op(vm.MSTORE)
	a.pushUint(0x20)
	a.pushUint(0)
	a.op(vm.RETURN)

	return a.bytes()
}
