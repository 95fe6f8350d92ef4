package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidAmount is returned when a token amount can't be scaled to base units
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNoNetwork is returned when an operation needs an RPC endpoint and none is configured
	ErrNoNetwork = errors.New("no network configured")

	// ErrSlotNotFound is returned when no probed storage slot backs balanceOf
	ErrSlotNotFound = errors.New("balances slot not found")

	// ErrBalanceMismatch is returned when a written balance doesn't read back through balanceOf
	ErrBalanceMismatch = errors.New("balance mismatch")

	// ErrSwapFailed is returned when a harvest swap reverts for lack of DEX liquidity
	ErrSwapFailed = errors.New("swap failed")

	// ErrTransactionReverted is returned when a mined transaction has a failed status
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrUnknownSigner is returned when a signer role has no key configured
	ErrUnknownSigner = errors.New("unknown signer")
)

// SlotNotFoundErr reports an exhausted balance slot search
type SlotNotFoundErr struct {
	Token   common.Address
	Account common.Address
	Bound   uint64
}

func (e SlotNotFoundErr) Error() string {
	return fmt.Sprintf("balances slot not found for token %s (probed %d indices per convention with account %s)",
		e.Token.Hex(), e.Bound, e.Account.Hex())
}

func (e SlotNotFoundErr) Is(target error) bool {
	return target == ErrSlotNotFound
}

// ArtifactNotFoundErr is returned when no compiled artifact matches a contract name
type ArtifactNotFoundErr struct {
	Name       string
	SearchPath string
}

func (e ArtifactNotFoundErr) Error() string {
	return fmt.Sprintf("artifact for %s not found under %s", e.Name, e.SearchPath)
}

func (e ArtifactNotFoundErr) Is(target error) bool {
	return target == ErrNotFound
}

// AmbiguousArtifactErr is returned when several artifacts share a contract name
type AmbiguousArtifactErr struct {
	Name    string
	Matches []string
}

func (e AmbiguousArtifactErr) Error() string {
	sorted := make([]string, len(e.Matches))
	copy(sorted, e.Matches)
	sort.Strings(sorted)

	var suggestions []string
	for _, m := range sorted {
		suggestions = append(suggestions, "  - "+m)
	}

	return fmt.Sprintf("multiple artifacts found for %s - use the fully qualified source path to disambiguate:\n%s",
		e.Name, strings.Join(suggestions, "\n"))
}
