package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/chefkit/internal/domain"
)

// LocatorLayout is a token storage layout the self test installs
type LocatorLayout struct {
	Index      uint64
	Convention domain.MappingConvention
	Decimals   uint8
}

// DefaultLocatorLayouts covers both conventions, both ends of the default
// bound and one layout beyond it
var DefaultLocatorLayouts = []LocatorLayout{
	{Index: 0, Convention: domain.ConventionKeyFirst, Decimals: 18},
	{Index: 2, Convention: domain.ConventionKeyFirst, Decimals: 18},
	{Index: 51, Convention: domain.ConventionKeyFirst, Decimals: 6},
	{Index: 99, Convention: domain.ConventionKeyFirst, Decimals: 8},
	{Index: 0, Convention: domain.ConventionIndexFirst, Decimals: 18},
	{Index: 3, Convention: domain.ConventionIndexFirst, Decimals: 18},
	{Index: 150, Convention: domain.ConventionKeyFirst, Decimals: 18},
}

// LocatorCase is the outcome of the self test for one layout
type LocatorCase struct {
	Layout LocatorLayout
	Found  *domain.BalanceSlot
	// ExpectNotFound is set for layouts outside the probe bound
	ExpectNotFound bool
	Passed         bool
	Reason         string
}

// VerifyLocatorResult holds the outcome of every layout
type VerifyLocatorResult struct {
	Bound uint64
	Cases []LocatorCase
}

// Passed reports whether every layout behaved as expected
func (r *VerifyLocatorResult) Passed() bool {
	for _, c := range r.Cases {
		if !c.Passed {
			return false
		}
	}
	return true
}

// VerifyLocator runs the slot locator against in-process tokens of known
// layout and checks that it finds them without disturbing their storage
type VerifyLocator struct {
	sandbox TokenSandbox
	locator *LocateBalanceSlot
	log     *slog.Logger
}

// NewVerifyLocator creates a new locator self test
func NewVerifyLocator(sandbox TokenSandbox, log *slog.Logger) *VerifyLocator {
	return &VerifyLocator{
		sandbox: sandbox,
		locator: NewLocateBalanceSlot(sandbox, log),
		log:     log.With("component", "VerifyLocator"),
	}
}

// VerifyLocatorParams selects the layouts and bound
type VerifyLocatorParams struct {
	Layouts []LocatorLayout
	Bound   uint64
}

var (
	selftestHolder = common.HexToAddress("0x00000000000000000000000000000000000b0b00")
	selftestTarget = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	selftestAmount = big.NewInt(1_000_000)
	selftestWrite  = big.NewInt(424242)
)

// Execute runs every layout. Per layout failures are recorded in the result.
func (uc *VerifyLocator) Execute(ctx context.Context, params VerifyLocatorParams) (*VerifyLocatorResult, error) {
	layouts := params.Layouts
	if len(layouts) == 0 {
		layouts = DefaultLocatorLayouts
	}
	bound := params.Bound
	if bound == 0 {
		bound = domain.DefaultProbeBound
	}

	result := &VerifyLocatorResult{Bound: bound}
	for _, layout := range layouts {
		c, err := uc.verify(ctx, layout, bound)
		if err != nil {
			return nil, err
		}
		result.Cases = append(result.Cases, *c)
	}
	return result, nil
}

// verify returns an error only for sandbox failures
func (uc *VerifyLocator) verify(ctx context.Context, layout LocatorLayout, bound uint64) (*LocatorCase, error) {
	c := &LocatorCase{Layout: layout, ExpectNotFound: layout.Index >= bound}

	token, err := uc.sandbox.DeployToken(ctx, layout.Index, layout.Convention, layout.Decimals)
	if err != nil {
		return nil, fmt.Errorf("failed to install token: %w", err)
	}
	if err := uc.sandbox.Mint(ctx, token, selftestHolder, selftestAmount); err != nil {
		return nil, fmt.Errorf("failed to mint: %w", err)
	}
	before := uc.sandbox.StorageDump(token)

	located, err := uc.locator.Execute(ctx, LocateBalanceSlotParams{Token: token, Bound: bound})
	if !storageEqual(before, uc.sandbox.StorageDump(token)) {
		c.Reason = "probing left storage modified"
		return c, nil
	}

	if err != nil {
		if errors.Is(err, domain.ErrSlotNotFound) && c.ExpectNotFound {
			c.Passed = true
			return c, nil
		}
		c.Reason = err.Error()
		return c, nil
	}

	c.Found = &located.Slot
	if c.ExpectNotFound {
		c.Reason = fmt.Sprintf("found index %d beyond the bound", located.Slot.Index)
		return c, nil
	}

	want := domain.BalanceSlot{Index: layout.Index, UsesConventionB: layout.Convention == domain.ConventionIndexFirst}
	if located.Slot != want {
		c.Reason = fmt.Sprintf("expected %s, found %s", want, located.Slot)
		return c, nil
	}

	key := located.Slot.KeyFor(selftestTarget)
	if err := uc.sandbox.SetStorageAt(ctx, token, key, common.BigToHash(selftestWrite)); err != nil {
		return nil, fmt.Errorf("failed to write balance: %w", err)
	}
	balance, err := uc.sandbox.BalanceOf(ctx, token, selftestTarget)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}
	if balance.Cmp(selftestWrite) != 0 {
		c.Reason = fmt.Sprintf("wrote %s through the slot, balanceOf returned %s", selftestWrite, balance)
		return c, nil
	}

	c.Passed = true
	uc.log.Debug("layout verified", "index", layout.Index, "convention", layout.Convention.String())
	return c, nil
}

func storageEqual(a, b map[common.Hash]common.Hash) bool {
	for slot, v := range b {
		if a[slot] != v {
			return false
		}
	}
	for slot, v := range a {
		if b[slot] != v {
			return false
		}
	}
	return true
}
