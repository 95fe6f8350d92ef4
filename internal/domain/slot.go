package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultProbeBound is the number of mapping indices scanned per convention
const DefaultProbeBound = 100

// SentinelValue is written into candidate slots while probing. It is far
// from any realistic balance so a match cannot come from existing state.
var SentinelValue = common.HexToHash("0x12345")

// TieBreakAccount decides the convention when the probe account hashes to the
// same slot under both conventions. Its padded form exceeds any uint64 index,
// so its two candidate slots always differ.
var TieBreakAccount = common.HexToAddress("0x1111111111111111111111111111111111111111")

// MappingConvention identifies how a compiler derives the slot of a mapping
// entry from the key and the mapping's declaration index.
type MappingConvention int

const (
	// ConventionKeyFirst hashes abi.encode(key, index), as solc does
	ConventionKeyFirst MappingConvention = iota
	// ConventionIndexFirst hashes abi.encode(index, key), as vyper does
	ConventionIndexFirst
)

func (c MappingConvention) String() string {
	switch c {
	case ConventionKeyFirst:
		return "solidity"
	case ConventionIndexFirst:
		return "vyper"
	default:
		return "unknown"
	}
}

// BalanceSlot describes where a token keeps its balances mapping
type BalanceSlot struct {
	Index           uint64 `json:"index"`
	UsesConventionB bool   `json:"usesConventionB"`
}

// Convention returns the mapping convention the slot was found under
func (b BalanceSlot) Convention() MappingConvention {
	if b.UsesConventionB {
		return ConventionIndexFirst
	}
	return ConventionKeyFirst
}

func (b BalanceSlot) String() string {
	return fmt.Sprintf("index %d (%s)", b.Index, b.Convention())
}

// KeyFor returns the storage key holding account's balance
func (b BalanceSlot) KeyFor(account common.Address) SlotKey {
	return SlotKeyFromHash(MappingSlot(account, b.Index, b.Convention()))
}

// MappingSlot computes the storage slot of mapping[account] for a mapping
// declared at the given index.
func MappingSlot(account common.Address, index uint64, convention MappingConvention) common.Hash {
	key := common.LeftPadBytes(account.Bytes(), 32)
	idx := common.LeftPadBytes(new(big.Int).SetUint64(index).Bytes(), 32)

	if convention == ConventionIndexFirst {
		return crypto.Keccak256Hash(idx, key)
	}
	return crypto.Keccak256Hash(key, idx)
}

// ConventionsCollide reports whether both conventions address the same slot
// for account at index. It happens when the account equals the index as a
// 32 byte word, e.g. the zero address at index 0.
func ConventionsCollide(account common.Address, index uint64) bool {
	return MappingSlot(account, index, ConventionKeyFirst) == MappingSlot(account, index, ConventionIndexFirst)
}

// SlotKey is a storage slot rendered as a 0x-prefixed hex quantity
type SlotKey string

// SlotKeyFromHash renders a slot hash for the dev-node storage methods.
// One leading zero nibble is dropped if present; further zero nibbles stay.
// The numeric slot is the same either way.
func SlotKeyFromHash(h common.Hash) SlotKey {
	s := h.Hex()
	if strings.HasPrefix(s, "0x0") {
		s = "0x" + s[3:]
	}
	return SlotKey(s)
}

// Hash returns the 32 byte slot the key addresses
func (k SlotKey) Hash() common.Hash {
	return common.HexToHash(string(k))
}

func (k SlotKey) String() string {
	return string(k)
}
