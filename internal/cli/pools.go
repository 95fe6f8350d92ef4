package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/chefkit/internal/cli/render"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// NewPoolsCmd creates the pool fixture listing command
func NewPoolsCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "pools",
		Short: "List MasterChef pool fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := a.ListPools.Execute(cmd.Context(), usecase.ListPoolsParams{Filter: filter})
			if err != nil {
				return err
			}

			if a.Config.JSON {
				return render.RenderJSON(cmd.OutOrStdout(), result.Pools)
			}
			return render.NewPoolsRenderer(cmd.OutOrStdout()).Render(result)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Fuzzy filter on pool names")
	return cmd
}
