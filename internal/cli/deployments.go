package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/chefkit/internal/cli/render"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// NewDeploymentsCmd creates the deployments listing command
func NewDeploymentsCmd() *cobra.Command {
	var (
		contract  string
		allChains bool
	)

	cmd := &cobra.Command{
		Use:     "deployments",
		Aliases: []string{"ls"},
		Short:   "List recorded deployments",
		Long: `List contracts deployed through chefkit. Without --network, or with
--all-chains, records from every chain are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := a.ListDeployments.Run(cmd.Context(), usecase.ListDeploymentsParams{
				ContractName: contract,
				AllChains:    allChains,
			})
			a.StopProgress()
			if err != nil {
				return err
			}

			if a.Config.JSON {
				return render.RenderJSON(cmd.OutOrStdout(), result.Deployments)
			}
			return render.NewDeploymentsRenderer(cmd.OutOrStdout()).RenderDeploymentList(result)
		},
	}

	cmd.Flags().StringVar(&contract, "contract", "", "Filter by contract name")
	cmd.Flags().BoolVar(&allChains, "all-chains", false, "Include records from every chain")
	return cmd
}
