package contracts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/chefkit/internal/domain"
)

// swapFailureMarkers are the revert reasons of a router swap with no usable liquidity
var swapFailureMarkers = []string{
	"insufficient_liquidity",
	"insufficient_output_amount",
	"insufficient_input_amount",
	"insufficient liquidity",
	"insufficient reserves",
}

// RevertReason extracts the revert reason carried by a node error
func RevertReason(err error) string {
	if err == nil {
		return ""
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if data, ok := dataErr.ErrorData().(string); ok {
			if raw, decodeErr := hexutil.Decode(data); decodeErr == nil {
				if reason, unpackErr := abi.UnpackRevert(raw); unpackErr == nil {
					return reason
				}
			}
		}
	}

	msg := err.Error()
	for _, prefix := range []string{"execution reverted: ", "reverted with reason string "} {
		if idx := strings.Index(msg, prefix); idx >= 0 {
			return strings.Trim(msg[idx+len(prefix):], "'\"")
		}
	}
	return msg
}

// IsSwapFailure reports whether a revert reason is a liquidity failure of a swap
func IsSwapFailure(reason string) bool {
	lower := strings.ToLower(reason)
	for _, marker := range swapFailureMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// classifyRevert wraps domain.ErrSwapFailed for liquidity reverts and
// domain.ErrTransactionReverted for the rest
func classifyRevert(call string, err error) error {
	reason := RevertReason(err)
	if IsSwapFailure(reason) || IsSwapFailure(err.Error()) {
		return fmt.Errorf("%s: %w: %s", call, domain.ErrSwapFailed, reason)
	}
	if strings.Contains(strings.ToLower(err.Error()), "revert") {
		return fmt.Errorf("%s: %w: %s", call, domain.ErrTransactionReverted, reason)
	}
	return fmt.Errorf("%s: %w", call, err)
}
