package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/chefkit/internal/app"
	"github.com/trebuchet-org/chefkit/internal/domain"
)

// parseAddress validates a hex address argument
func parseAddress(label, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s %q: %w", label, value, domain.ErrInvalidAddress)
	}
	return common.HexToAddress(value), nil
}

// probeBound returns the flag value or the configured bound
func probeBound(a *app.App, flag uint64) uint64 {
	if flag > 0 {
		return flag
	}
	if a.Config.Harness != nil {
		return a.Config.Harness.Chain.ProbeBound
	}
	return domain.DefaultProbeBound
}
