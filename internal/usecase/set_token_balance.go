package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/trebuchet-org/chefkit/internal/domain"
)

// SetTokenBalance gives an account an arbitrary token balance by writing
// straight into the token's balances mapping
type SetTokenBalance struct {
	ledger  TokenLedger
	locator *LocateBalanceSlot
	log     *slog.Logger
}

// NewSetTokenBalance creates a new balance setter
func NewSetTokenBalance(ledger TokenLedger, locator *LocateBalanceSlot, log *slog.Logger) *SetTokenBalance {
	return &SetTokenBalance{
		ledger:  ledger,
		locator: locator,
		log:     log.With("component", "SetTokenBalance"),
	}
}

// SetTokenBalanceParams contains parameters for setting a balance
type SetTokenBalanceParams struct {
	Token   common.Address
	Account common.Address
	Amount  string // human readable, scaled by the token's decimals
	Bound   uint64
}

// SetTokenBalanceResult describes the write
type SetTokenBalanceResult struct {
	Token    common.Address
	Account  common.Address
	Slot     domain.BalanceSlot
	Key      domain.SlotKey
	Raw      *big.Int
	Decimals uint8
}

// Execute locates the balances slot, scales the amount and writes it
func (uc *SetTokenBalance) Execute(ctx context.Context, params SetTokenBalanceParams) (*SetTokenBalanceResult, error) {
	located, err := uc.locator.Execute(ctx, LocateBalanceSlotParams{
		Token: params.Token,
		Bound: params.Bound,
	})
	if err != nil {
		return nil, err
	}

	decimals, err := uc.ledger.Decimals(ctx, params.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to read decimals: %w", err)
	}

	raw, err := ParseUnits(params.Amount, decimals)
	if err != nil {
		return nil, err
	}

	key := located.Slot.KeyFor(params.Account)
	if err := uc.ledger.SetStorageAt(ctx, params.Token, key, common.BigToHash(raw)); err != nil {
		return nil, fmt.Errorf("failed to write balance: %w", err)
	}

	balance, err := uc.ledger.BalanceOf(ctx, params.Token, params.Account)
	if err != nil {
		return nil, fmt.Errorf("failed to read back balance: %w", err)
	}
	if balance.Cmp(raw) != 0 {
		return nil, fmt.Errorf("%w: wrote %s to slot %s (%s) but balanceOf(%s) returned %s",
			domain.ErrBalanceMismatch, raw, key, located.Slot, params.Account.Hex(), balance)
	}

	uc.log.Debug("balance written",
		"token", params.Token.Hex(), "account", params.Account.Hex(), "slot", key.String(), "raw", raw.String())

	return &SetTokenBalanceResult{
		Token:    params.Token,
		Account:  params.Account,
		Slot:     located.Slot,
		Key:      key,
		Raw:      raw,
		Decimals: decimals,
	}, nil
}

// unitsPattern accepts plain decimal notation only
var unitsPattern = regexp.MustCompile(`^-?[0-9]*\.?[0-9]*$`)

// ParseUnits scales a decimal amount to the token's base unit. Exponent
// forms such as "1e3" are rejected.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	if !unitsPattern.MatchString(amount) {
		return nil, fmt.Errorf("%w: %q is not a plain decimal", domain.ErrInvalidAmount, amount)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, amount)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", domain.ErrInvalidAmount, amount)
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", domain.ErrInvalidAmount, amount, decimals)
	}

	raw := scaled.BigInt()
	if raw.BitLen() > 256 {
		return nil, fmt.Errorf("%w: %q overflows 256 bits", domain.ErrInvalidAmount, amount)
	}
	return raw, nil
}

// FormatUnits renders a base-unit amount with the token's decimals
func FormatUnits(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}
