package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kalepail/smol-sc/internal/market"
)

var royaltiesGetCmd = &cobra.Command{
	Use:   "royalties:get <owner>",
	Short: "Show a principal's claimable royalty balance",
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

		balance, err := eng.market.RoyaltiesGet(cmd.Context(), market.Principal(args[0]), market.Asset(asset))
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"owner": args[0], "asset": asset, "balance": balance})
	},
}

var royaltiesClaimCmd = &cobra.Command{
	Use:   "royalties:claim <owner>",
	Short: "Pay out a principal's accrued royalties",
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

		claimed, err := eng.market.RoyaltiesClaim(cmd.Context(), market.Principal(args[0]), market.Asset(asset))
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"owner": args[0], "asset": asset, "claimed": claimed})
	},
}

func init() {
	royaltiesGetCmd.Flags().String("asset", "", "Asset the balance is denominated in")
	royaltiesClaimCmd.Flags().String("asset", "", "Asset the balance is denominated in")
	rootCmd.AddCommand(royaltiesGetCmd)
	rootCmd.AddCommand(royaltiesClaimCmd)
}
