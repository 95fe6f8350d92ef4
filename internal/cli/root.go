package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/chefkit/internal/app"
	"github.com/trebuchet-org/chefkit/internal/config"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// skipsApp reports whether a command runs without project configuration
func skipsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion":
		return true
	}
	return false
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chefkit",
		Short: "MasterChefV2 adapter test harness",
		Long: `chefkit deploys the SushiSwap MasterChefV2 adapter against a forked chain
and runs the deposit, claim, harvest and withdraw scenario for every
configured pool. It also locates and writes ERC20 balance storage slots.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsApp(cmd) {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)
			bindGlobalFlags(v, cmd)

			appInstance, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}
			cmd.SetContext(ctx)

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a, err := getApp(cmd); err == nil {
				a.Close()
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (e.g., localhost, mainnet-fork)")
	rootCmd.PersistentFlags().String("dialect", "", "Storage cheat dialect of the node (hardhat or anvil)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	testCmd := NewTestCmd()
	testCmd.GroupID = "main"
	rootCmd.AddCommand(testCmd)

	slotCmd := NewSlotCmd()
	slotCmd.GroupID = "main"
	rootCmd.AddCommand(slotCmd)

	deployCmd := NewDeployCmd()
	deployCmd.GroupID = "main"
	rootCmd.AddCommand(deployCmd)

	deploymentsCmd := NewDeploymentsCmd()
	deploymentsCmd.GroupID = "management"
	rootCmd.AddCommand(deploymentsCmd)

	poolsCmd := NewPoolsCmd()
	poolsCmd.GroupID = "management"
	rootCmd.AddCommand(poolsCmd)

	devCmd := NewDevCmd()
	devCmd.GroupID = "management"
	rootCmd.AddCommand(devCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// bindGlobalFlags binds global flags to viper
func bindGlobalFlags(v *viper.Viper, cmd *cobra.Command) {
	// Only bind flags that exist and have been changed
	if f := cmd.Flag("debug"); f != nil && f.Changed {
		v.Set("debug", f.Value.String())
	}
	if f := cmd.Flag("non-interactive"); f != nil && f.Changed {
		v.Set("non_interactive", f.Value.String())
	}
	if f := cmd.Flag("json"); f != nil && f.Changed {
		v.Set("json", f.Value.String())
	}
	if f := cmd.Flag("network"); f != nil && f.Changed {
		v.Set("network", f.Value.String())
	}
	if f := cmd.Flag("dialect"); f != nil && f.Changed {
		v.Set("dialect", f.Value.String())
	}
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	if cmd.Context() == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return a, nil
}
