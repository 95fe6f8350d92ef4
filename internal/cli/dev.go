package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/chefkit/internal/cli/render"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// NewDevCmd creates the dev command with subcommands
func NewDevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
		Long:  `Development utilities for running the harness against a local node.`,
	}

	cmd.AddCommand(newDevAnvilCmd())

	return cmd
}

func newDevAnvilCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anvil",
		Short: "Manage local anvil node",
		Long: `Manage a local anvil node. With a fork URL, from the flags or the [fork]
section of chefkit.toml, the node forks that network at the pinned block.`,
	}

	cmd.AddCommand(newDevAnvilOpCmd(usecase.AnvilStart, "Start local anvil node", "Start a local anvil node. Fails if already running."))
	cmd.AddCommand(newDevAnvilOpCmd(usecase.AnvilStop, "Stop local anvil node", "Stop the local anvil node if running."))
	cmd.AddCommand(newDevAnvilOpCmd(usecase.AnvilRestart, "Restart local anvil node", "Stop the local anvil node if running, then start it again."))
	cmd.AddCommand(newDevAnvilOpCmd(usecase.AnvilStatus, "Show anvil status", "Show status of the local anvil node."))
	cmd.AddCommand(newDevAnvilOpCmd(usecase.AnvilLogs, "Show anvil logs", "Follow the log file of the local anvil node."))

	return cmd
}

// anvilFlags holds common flags for anvil commands
type anvilFlags struct {
	name      string
	port      string
	forkURL   string
	forkBlock uint64
}

func newDevAnvilOpCmd(op usecase.AnvilOperation, short, long string) *cobra.Command {
	flags := &anvilFlags{}

	cmd := &cobra.Command{
		Use:   string(op),
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnvilCommand(cmd, op, flags)
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "anvil0", "Instance name (e.g. anvil0, anvil1)")
	cmd.Flags().StringVar(&flags.port, "port", "", "RPC port to bind (default from chefkit.toml)")
	if op == usecase.AnvilStart || op == usecase.AnvilRestart {
		cmd.Flags().StringVar(&flags.forkURL, "fork-url", "", "RPC URL of the network to fork")
		cmd.Flags().Uint64Var(&flags.forkBlock, "fork-block", 0, "Block number to fork at")
	}
	return cmd
}

// runAnvilCommand executes an anvil management command
func runAnvilCommand(cmd *cobra.Command, op usecase.AnvilOperation, flags *anvilFlags) error {
	a, err := getApp(cmd)
	if err != nil {
		return err
	}

	renderer := render.NewAnvilRenderer(cmd.OutOrStdout())
	params := usecase.ManageAnvilParams{
		Operation:       op,
		Name:            flags.name,
		Port:            flags.port,
		ForkURL:         flags.forkURL,
		ForkBlockNumber: flags.forkBlock,
	}
	if op == usecase.AnvilLogs {
		params.LogWriter = cmd.OutOrStdout()
		renderer.RenderLogsHeader(flags.name)
	}

	result, err := a.ManageAnvil.Execute(cmd.Context(), params)
	a.StopProgress()
	if err != nil {
		return err
	}

	if a.Config.JSON && op != usecase.AnvilLogs {
		return render.RenderJSON(cmd.OutOrStdout(), result)
	}
	return renderer.Render(result)
}
