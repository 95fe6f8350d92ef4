package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/chefkit/internal/cli/render"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// NewTestCmd creates the adapter scenario command
func NewTestCmd() *cobra.Command {
	var (
		filter      string
		interactive bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "test [pool...]",
		Short: "Run the adapter scenario against MasterChef pools",
		Long: `Deploy the oracle, adapter and test vault, then run the deposit, claim,
harvest and withdraw scenario for each selected pool. Every pool runs
from the same chain snapshot. Deprecated pools are skipped.

A harvest that reverts for lack of DEX liquidity is reported as a swap
failure and does not fail the pool.`,
		Example: `  chefkit test -n localhost
  chefkit test SUSHI-WETH USDC-WETH -n localhost
  chefkit test --filter weth -n localhost`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			report, err := a.RunAdapterSuite.Execute(cmd.Context(), usecase.RunAdapterSuiteParams{
				Pools:       args,
				Filter:      filter,
				Interactive: interactive,
			})
			a.StopProgress()
			if err != nil {
				return err
			}

			if a.Config.JSON {
				if err := render.RenderJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else if err := render.NewScenarioRenderer(cmd.OutOrStdout(), verbose).Render(report); err != nil {
				return err
			}

			if _, failed, _ := report.Counts(); failed > 0 {
				return fmt.Errorf("%d pool scenario(s) failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Fuzzy filter on pool names")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick pools interactively")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show every check, not only failures")
	return cmd
}
