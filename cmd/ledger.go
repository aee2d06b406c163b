package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kalepail/smol-sc/internal/flags"
	"github.com/kalepail/smol-sc/internal/market"
)

// The built-in ledger stands in for an external asset network during local
// development. These commands fund and inspect it.

var ledgerMintCmd = &cobra.Command{
	Use:   "ledger:mint <principal>",
	Short: "Credit the development ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagRegistry.Enabled(flags.FlagDevLedger) {
			return fmt.Errorf("ledger:mint is disabled; set flags.dev-ledger: true in the config to enable it")
		}
		asset, _ := cmd.Flags().GetString("asset")
		amount, _ := cmd.Flags().GetInt64("amount")
		if asset == "" || amount <= 0 {
			return fmt.Errorf("--asset and a positive --amount are required")
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		if err := eng.ledger.Mint(cmd.Context(), market.Asset(asset), market.Principal(args[0]), amount); err != nil {
			return err
		}
		return printJSON(map[string]any{"principal": args[0], "asset": asset, "amount": amount})
	},
}

var ledgerBalanceCmd = &cobra.Command{
	Use:   "ledger:balance <principal>",
	Short: "Show a development ledger balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asset, _ := cmd.Flags().GetString("asset")
		if asset == "" {
			return fmt.Errorf("--asset is required")
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		balance, err := eng.ledger.Balance(cmd.Context(), market.Asset(asset), market.Principal(args[0]))
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"principal": args[0], "asset": asset, "balance": balance})
	},
}

func init() {
	ledgerMintCmd.Flags().String("asset", "", "Asset to credit")
	ledgerMintCmd.Flags().Int64("amount", 0, "Amount to credit")
	ledgerBalanceCmd.Flags().String("asset", "", "Asset to inspect")
	rootCmd.AddCommand(ledgerMintCmd)
	rootCmd.AddCommand(ledgerBalanceCmd)
}
