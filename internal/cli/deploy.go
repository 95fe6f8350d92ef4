package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/chefkit/internal/cli/render"
	"github.com/trebuchet-org/chefkit/internal/domain"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// NewDeployCmd creates the deploy command with subcommands
func NewDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy harness contracts",
	}

	cmd.AddCommand(newDeployAdapterCmd())
	return cmd
}

func newDeployAdapterCmd() *cobra.Command {
	var (
		masterChef string
		oracle     string
		signer     string
	)

	cmd := &cobra.Command{
		Use:   "adapter",
		Short: "Deploy " + domain.AdapterContractName,
		Long: `Deploy the MasterChefV2 adapter with the MasterChef and oracle addresses as
constructor arguments and record it in .chefkit/deployments.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			if masterChef == "" && a.Config.Harness != nil {
				masterChef = a.Config.Harness.Contracts.MasterChef
			}
			masterChefAddr, err := parseAddress("masterchef", masterChef)
			if err != nil {
				return err
			}
			oracleAddr, err := parseAddress("oracle", oracle)
			if err != nil {
				return err
			}

			result, err := a.DeployAdapter.Execute(cmd.Context(), usecase.DeployAdapterParams{
				MasterChef: masterChefAddr,
				Oracle:     oracleAddr,
				Signer:     domain.SignerRole(signer),
			})
			a.StopProgress()
			if err != nil {
				return err
			}

			if a.Config.JSON {
				return render.RenderJSON(cmd.OutOrStdout(), result.Deployment)
			}
			return render.NewDeployRenderer(cmd.OutOrStdout()).Render(result)
		},
	}

	cmd.Flags().StringVar(&masterChef, "masterchef", "", "MasterChefV2 address (default from chefkit.toml)")
	cmd.Flags().StringVar(&oracle, "oracle", "", "OptyFi oracle address")
	cmd.Flags().StringVar(&signer, "signer", string(domain.SignerDeployer), "Signer role sending the deployment")
	_ = cmd.MarkFlagRequired("oracle")
	return cmd
}
