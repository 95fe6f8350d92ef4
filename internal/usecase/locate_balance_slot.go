package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/chefkit/internal/domain"
)

// LocateBalanceSlot finds the storage slot backing a token's balances mapping
// by writing a sentinel into candidate slots and watching balanceOf.
//
// Probing mutates token storage transiently. Callers must not run two
// searches against the same token at once.
type LocateBalanceSlot struct {
	ledger TokenLedger
	log    *slog.Logger
}

// NewLocateBalanceSlot creates a new slot locator
func NewLocateBalanceSlot(ledger TokenLedger, log *slog.Logger) *LocateBalanceSlot {
	return &LocateBalanceSlot{
		ledger: ledger,
		log:    log.With("component", "LocateBalanceSlot"),
	}
}

// LocateBalanceSlotParams contains parameters for locating a balance slot
type LocateBalanceSlotParams struct {
	Token   common.Address
	Account common.Address // probe account, the zero address by default
	Bound   uint64         // indices scanned per convention, DefaultProbeBound if zero
}

// LocateBalanceSlotResult contains the discovered layout
type LocateBalanceSlotResult struct {
	Token   common.Address
	Account common.Address
	Slot    domain.BalanceSlot
	Key     domain.SlotKey // storage key of Account's balance
	Probes  int
}

// Execute scans indices [0, bound) under the key-first convention, then under
// the index-first convention, and returns the first slot whose sentinel write
// shows up in balanceOf.
func (uc *LocateBalanceSlot) Execute(ctx context.Context, params LocateBalanceSlotParams) (*LocateBalanceSlotResult, error) {
	bound := params.Bound
	if bound == 0 {
		bound = domain.DefaultProbeBound
	}

	probes := 0
	conventions := []domain.MappingConvention{domain.ConventionKeyFirst, domain.ConventionIndexFirst}
	for _, convention := range conventions {
		for i := uint64(0); i < bound; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			key := domain.SlotKeyFromHash(domain.MappingSlot(params.Account, i, convention))
			probes++

			hit, err := uc.probe(ctx, params.Token, params.Account, key)
			if err != nil {
				return nil, fmt.Errorf("probe %s index %d: %w", convention, i, err)
			}
			if !hit {
				continue
			}

			slot := domain.BalanceSlot{
				Index:           i,
				UsesConventionB: convention == domain.ConventionIndexFirst,
			}
			if domain.ConventionsCollide(params.Account, i) {
				usesB, n, err := uc.breakTie(ctx, params.Token, i)
				probes += n
				if err != nil {
					return nil, fmt.Errorf("probe index %d with tie-break account: %w", i, err)
				}
				slot.UsesConventionB = usesB
			}
			uc.log.Debug("balance slot found",
				"token", params.Token.Hex(), "index", i, "convention", slot.Convention().String(), "probes", probes)

			return &LocateBalanceSlotResult{
				Token:   params.Token,
				Account: params.Account,
				Slot:    slot,
				Key:     key,
				Probes:  probes,
			}, nil
		}
	}

	return nil, domain.SlotNotFoundErr{
		Token:   params.Token,
		Account: params.Account,
		Bound:   bound,
	}
}

// breakTie repeats the probe at index with an account whose two candidate
// slots differ and reports whether the index-first slot is the live one.
// If neither slot answers the key-first reading is kept.
func (uc *LocateBalanceSlot) breakTie(ctx context.Context, token common.Address, index uint64) (bool, int, error) {
	probes := 0
	for _, convention := range []domain.MappingConvention{domain.ConventionKeyFirst, domain.ConventionIndexFirst} {
		key := domain.SlotKeyFromHash(domain.MappingSlot(domain.TieBreakAccount, index, convention))
		probes++

		hit, err := uc.probe(ctx, token, domain.TieBreakAccount, key)
		if err != nil {
			return false, probes, err
		}
		if hit {
			return convention == domain.ConventionIndexFirst, probes, nil
		}
	}

	uc.log.Warn("tie-break probe matched neither convention, keeping solidity layout",
		"token", token.Hex(), "index", index)
	return false, probes, nil
}

// probe runs one save, write, read, restore cycle and reports whether the
// sentinel was observed. The result is compared only after the restore.
func (uc *LocateBalanceSlot) probe(ctx context.Context, token, account common.Address, key domain.SlotKey) (bool, error) {
	original, err := uc.ledger.StorageAt(ctx, token, key)
	if err != nil {
		return false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}

	if err := uc.ledger.SetStorageAt(ctx, token, key, domain.SentinelValue); err != nil {
		return false, fmt.Errorf("failed to write sentinel to slot %s: %w", key, err)
	}

	balance, balanceErr := uc.ledger.BalanceOf(ctx, token, account)

	if err := uc.ledger.SetStorageAt(ctx, token, key, original); err != nil {
		return false, fmt.Errorf("failed to restore slot %s: %w", key, err)
	}

	if balanceErr != nil {
		return false, fmt.Errorf("failed to read balance: %w", balanceErr)
	}

	uc.log.Debug("probed slot", "slot", key.String(), "balance", balance.String())
	return balance.Cmp(domain.SentinelValue.Big()) == 0, nil
}
