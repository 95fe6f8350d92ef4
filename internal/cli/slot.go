package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/chefkit/internal/cli/render"
	"github.com/trebuchet-org/chefkit/internal/usecase"
)

// NewSlotCmd creates the slot command with subcommands
func NewSlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Locate and write ERC20 balance storage slots",
		Long: `Find the storage slot of an ERC20 balances mapping by probing candidate
slots with a sentinel value, then write balances directly into storage.
Every probed slot is restored before the next one is tried.`,
	}

	cmd.AddCommand(newSlotLocateCmd())
	cmd.AddCommand(newSlotSetBalanceCmd())
	cmd.AddCommand(newSlotSelfTestCmd())

	return cmd
}

func newSlotLocateCmd() *cobra.Command {
	var (
		account string
		bound   uint64
	)

	cmd := &cobra.Command{
		Use:   "locate <token>",
		Short: "Find the balances mapping slot of a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			token, err := parseAddress("token", args[0])
			if err != nil {
				return err
			}
			params := usecase.LocateBalanceSlotParams{Token: token, Bound: probeBound(a, bound)}
			if account != "" {
				if params.Account, err = parseAddress("account", account); err != nil {
					return err
				}
			}

			result, err := a.LocateBalanceSlot.Execute(cmd.Context(), params)
			a.StopProgress()
			if err != nil {
				return err
			}

			if a.Config.JSON {
				return render.RenderJSON(cmd.OutOrStdout(), result)
			}
			return render.NewSlotRenderer(cmd.OutOrStdout()).RenderLocate(result)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Probe account (default zero address)")
	cmd.Flags().Uint64Var(&bound, "bound", 0, "Mapping indices scanned per convention (default from chefkit.toml)")
	return cmd
}

func newSlotSetBalanceCmd() *cobra.Command {
	var bound uint64

	cmd := &cobra.Command{
		Use:   "set-balance <token> <account> <amount>",
		Short: "Write a token balance directly into storage",
		Long: `Write a token balance directly into storage. The amount is human readable
and scaled by the token's decimals, so "1.5" on a 6 decimals token writes 1500000.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			token, err := parseAddress("token", args[0])
			if err != nil {
				return err
			}
			account, err := parseAddress("account", args[1])
			if err != nil {
				return err
			}

			result, err := a.SetTokenBalance.Execute(cmd.Context(), usecase.SetTokenBalanceParams{
				Token:   token,
				Account: account,
				Amount:  args[2],
				Bound:   probeBound(a, bound),
			})
			a.StopProgress()
			if err != nil {
				return err
			}

			if a.Config.JSON {
				return render.RenderJSON(cmd.OutOrStdout(), result)
			}
			return render.NewSlotRenderer(cmd.OutOrStdout()).RenderSetBalance(result)
		},
	}

	cmd.Flags().Uint64Var(&bound, "bound", 0, "Mapping indices scanned per convention (default from chefkit.toml)")
	return cmd
}

func newSlotSelfTestCmd() *cobra.Command {
	var bound uint64

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Check the locator against tokens in an in-process EVM",
		Long: `Deploy tokens with known balance layouts into an in-process EVM and check
that the locator finds each layout, leaves storage untouched and reports
layouts beyond the bound as not found. Needs no node.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := a.VerifyLocator.Execute(cmd.Context(), usecase.VerifyLocatorParams{Bound: probeBound(a, bound)})
			if err != nil {
				return err
			}

			if a.Config.JSON {
				if err := render.RenderJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else if err := render.NewSlotRenderer(cmd.OutOrStdout()).RenderSelfTest(result); err != nil {
				return err
			}

			if !result.Passed() {
				return fmt.Errorf("locator self test failed")
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&bound, "bound", 0, "Mapping indices scanned per convention (default from chefkit.toml)")
	return cmd
}

