package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/domain/config"
)

// RunAdapterSuite bootstraps the harness and runs the adapter scenario for
// each selected pool, reverting the chain between pools
type RunAdapterSuite struct {
	config    *config.RuntimeConfig
	fixtures  PoolFixtureLoader
	chain     ChainController
	bootstrap *BootstrapHarness
	scenario  *RunAdapterScenario
	selector  PoolSelector
	progress  ProgressSink
	log       *slog.Logger
}

// NewRunAdapterSuite creates a new suite runner
func NewRunAdapterSuite(
	cfg *config.RuntimeConfig,
	fixtures PoolFixtureLoader,
	chain ChainController,
	bootstrap *BootstrapHarness,
	scenario *RunAdapterScenario,
	selector PoolSelector,
	progress ProgressSink,
	log *slog.Logger,
) *RunAdapterSuite {
	return &RunAdapterSuite{
		config:    cfg,
		fixtures:  fixtures,
		chain:     chain,
		bootstrap: bootstrap,
		scenario:  scenario,
		selector:  selector,
		progress:  progress,
		log:       log.With("component", "RunAdapterSuite"),
	}
}

// RunAdapterSuiteParams selects the pools to run. Explicit names win over
// the filter; with neither every pool runs.
type RunAdapterSuiteParams struct {
	Pools       []string
	Filter      string
	Interactive bool
}

// Execute runs the suite
func (uc *RunAdapterSuite) Execute(ctx context.Context, params RunAdapterSuiteParams) (report *domain.SuiteReport, err error) {
	pools, err := uc.fixtures.LoadPools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pools: %w", err)
	}

	names, err := uc.selectPools(ctx, pools, params)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no pools selected: %w", domain.ErrNotFound)
	}

	hc, err := uc.bootstrap.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap harness: %w", err)
	}
	defer func() {
		if teardownErr := uc.bootstrap.Teardown(context.WithoutCancel(ctx), hc); teardownErr != nil {
			err = errors.Join(err, teardownErr)
		}
	}()

	report = &domain.SuiteReport{Context: hc}
	for i, name := range names {
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "scenario",
			Current: i + 1,
			Total:   len(names),
			Message: fmt.Sprintf("Running %s", name),
			Spinner: true,
		})

		result, err := uc.runIsolated(ctx, hc, name, pools[name])
		if err != nil {
			return report, err
		}
		report.Reports = append(report.Reports, result)

		status := "passed"
		switch {
		case result.Skipped:
			status = "skipped"
		case !result.Passed():
			status = "failed"
		}
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "scenario",
			Current: i + 1,
			Total:   len(names),
			Message: fmt.Sprintf("%s %s", name, status),
		})
	}

	passed, failed, skipped := report.Counts()
	uc.log.Info("suite finished", "passed", passed, "failed", failed, "skipped", skipped)
	return report, nil
}

// runIsolated runs one scenario between a snapshot and a revert
func (uc *RunAdapterSuite) runIsolated(ctx context.Context, hc *domain.HarnessContext, name string, pool *domain.PoolItem) (*domain.ScenarioReport, error) {
	snapshot, err := uc.chain.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot before %s: %w", name, err)
	}

	result, runErr := uc.scenario.Execute(ctx, RunAdapterScenarioParams{
		Context:  hc,
		PoolName: name,
		Pool:     pool,
	})

	if err := uc.chain.Revert(context.WithoutCancel(ctx), snapshot); err != nil {
		return nil, fmt.Errorf("failed to revert after %s: %w", name, err)
	}
	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

func (uc *RunAdapterSuite) selectPools(ctx context.Context, pools domain.LiquidityPools, params RunAdapterSuiteParams) ([]string, error) {
	if len(params.Pools) > 0 {
		names := make([]string, 0, len(params.Pools))
		for _, name := range params.Pools {
			if _, ok := pools[name]; !ok {
				return nil, fmt.Errorf("pool %q: %w", name, domain.ErrNotFound)
			}
			names = append(names, name)
		}
		sort.Strings(names)
		return names, nil
	}

	candidates := FilterPoolNames(pools.Names(), params.Filter)
	if !params.Interactive || uc.config.NonInteractive || uc.selector == nil {
		return candidates, nil
	}

	selected, err := uc.selector.SelectPools(ctx, candidates, "Select pools to test")
	if err != nil {
		return nil, err
	}
	sort.Strings(selected)
	return selected, nil
}
