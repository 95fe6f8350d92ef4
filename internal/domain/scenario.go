package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// StrategyStep is one hop of a vault invest strategy
type StrategyStep struct {
	Pool        common.Address `json:"pool"`
	OutputToken common.Address `json:"outputToken"`
	IsBorrow    bool           `json:"isBorrow"`
}

// ScenarioCheck is a single expected/actual comparison made during a scenario
type ScenarioCheck struct {
	Name     string `json:"name"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
}

// NewAmountCheck compares two on-chain amounts for equality
func NewAmountCheck(name string, expected, actual *big.Int) ScenarioCheck {
	return ScenarioCheck{
		Name:     name,
		Expected: bigString(expected),
		Actual:   bigString(actual),
		Passed:   expected != nil && actual != nil && expected.Cmp(actual) == 0,
	}
}

// NewAddressCheck compares two addresses for equality
func NewAddressCheck(name string, expected, actual common.Address) ScenarioCheck {
	return ScenarioCheck{
		Name:     name,
		Expected: expected.Hex(),
		Actual:   actual.Hex(),
		Passed:   expected == actual,
	}
}

func bigString(v *big.Int) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}

// HarvestStatus classifies the outcome of the harvest step
type HarvestStatus string

const (
	HarvestSkipped    HarvestStatus = "skipped"
	HarvestSucceeded  HarvestStatus = "succeeded"
	HarvestSwapFailed HarvestStatus = "swap-failed"
	HarvestFailed     HarvestStatus = "failed"
)

// HarvestOutcome records what happened when rewards were swapped into the
// underlying token. SwapFailed is an accepted outcome on forks whose DEX
// pools lack reserves; Failed is not.
type HarvestOutcome struct {
	Status HarvestStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

// Ignorable reports whether the outcome should not fail the scenario
func (h HarvestOutcome) Ignorable() bool {
	return h.Status != HarvestFailed
}

// ScenarioReport is the result of running the adapter scenario for one pool
type ScenarioReport struct {
	PoolName   string          `json:"poolName"`
	Pool       common.Address  `json:"pool"`
	Underlying common.Address  `json:"underlying"`
	Skipped    bool            `json:"skipped"`
	Checks     []ScenarioCheck `json:"checks"`
	Harvest    HarvestOutcome  `json:"harvest"`
	Error      string          `json:"error,omitempty"`
	Duration   time.Duration   `json:"duration"`
}

// Passed reports whether every check passed and no step failed
func (r *ScenarioReport) Passed() bool {
	if r.Skipped {
		return true
	}
	if r.Error != "" || !r.Harvest.Ignorable() {
		return false
	}
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// FailedChecks returns the checks that did not pass
func (r *ScenarioReport) FailedChecks() []ScenarioCheck {
	var failed []ScenarioCheck
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// SuiteReport aggregates the scenario reports of one harness run
type SuiteReport struct {
	Context *HarnessContext   `json:"context"`
	Reports []*ScenarioReport `json:"reports"`
}

// Counts returns the number of passed, failed and skipped scenarios
func (s *SuiteReport) Counts() (passed, failed, skipped int) {
	for _, r := range s.Reports {
		switch {
		case r.Skipped:
			skipped++
		case r.Passed():
			passed++
		default:
			failed++
		}
	}
	return passed, failed, skipped
}
