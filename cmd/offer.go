package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kalepail/smol-sc/internal/market"
)

// buyFromFlags builds the buy side of a sell-glyph offer from the
// --for-glyph / --for-asset / --amount flags.
func buyFromFlags(cmd *cobra.Command) (market.OfferBuy, error) {
	forGlyph, _ := cmd.Flags().GetString("for-glyph")
	forAsset, _ := cmd.Flags().GetString("for-asset")
	amount, _ := cmd.Flags().GetInt64("amount")

	switch {
	case forGlyph != "" && forAsset != "":
		return market.OfferBuy{}, fmt.Errorf("--for-glyph and --for-asset are mutually exclusive")
	case forGlyph != "":
		id, err := parseGlyphID(forGlyph)
		if err != nil {
			return market.OfferBuy{}, err
		}
		return market.BuyGlyph(id), nil
	case forAsset != "":
		if amount <= 0 {
			return market.OfferBuy{}, fmt.Errorf("--amount must be positive with --for-asset")
		}
		return market.BuyAsset(market.Asset(forAsset), amount), nil
	default:
		return market.OfferBuy{}, fmt.Errorf("one of --for-glyph or --for-asset is required")
	}
}

var offerSellGlyphCmd = &cobra.Command{
	Use:   "offer:sell-glyph <glyph>",
	Short: "Offer a glyph for another glyph or an asset amount",
	Long: `Offer to sell a glyph. If the counterparty already has a matching offer
open, the trade executes immediately; otherwise the offer is recorded on the
glyph's book.

Examples:
  smol offer:sell-glyph 1 --for-glyph 2
  smol offer:sell-glyph 1 --for-asset USDC --amount 100`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sell, err := parseGlyphID(args[0])
		if err != nil {
			return err
		}
		buy, err := buyFromFlags(cmd)
		if err != nil {
			return err
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		matched, err := eng.market.OfferSellGlyph(cmd.Context(), sell, buy)
		if err != nil {
			return err
		}
		out := map[string]any{"sell": sell, "matched": matched != nil}
		if matched != nil {
			out["new_owner"] = *matched
		}
		return printJSON(out)
	},
}

var offerSellAssetCmd = &cobra.Command{
	Use:   "offer:sell-asset <glyph>",
	Short: "Offer an asset amount for a glyph",
	Long: `Offer to buy a glyph for an exact (asset, amount) pair. If the glyph's
owner already offered it at that price the trade executes immediately;
otherwise the amount is escrowed and the buyer joins the queue.

Examples:
  smol offer:sell-asset 1 --seller bob --asset USDC --amount 100`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buy, err := parseGlyphID(args[0])
		if err != nil {
			return err
		}
		seller, asset, amount, err := assetOfferFlags(cmd)
		if err != nil {
			return err
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		matched, err := eng.market.OfferSellAsset(cmd.Context(), seller, asset, amount, buy)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"buy": buy, "matched": matched})
	},
}

var offerRemoveGlyphCmd = &cobra.Command{
	Use:   "offer:remove-glyph <glyph>",
	Short: "Withdraw sell-glyph offers",
	Long: `Withdraw one offer (with --for-glyph or --for-asset/--amount) or every
open offer on the glyph (no flags).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sell, err := parseGlyphID(args[0])
		if err != nil {
			return err
		}

		var buy *market.OfferBuy
		if cmd.Flags().Changed("for-glyph") || cmd.Flags().Changed("for-asset") {
			b, err := buyFromFlags(cmd)
			if err != nil {
				return err
			}
			buy = &b
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		if err := eng.market.OfferSellGlyphRemove(cmd.Context(), sell, buy); err != nil {
			return err
		}
		return printJSON(map[string]any{"sell": sell, "removed": true})
	},
}

var offerRemoveAssetCmd = &cobra.Command{
	Use:   "offer:remove-asset <glyph>",
	Short: "Withdraw a queued asset offer and refund the escrow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buy, err := parseGlyphID(args[0])
		if err != nil {
			return err
		}
		seller, asset, amount, err := assetOfferFlags(cmd)
		if err != nil {
			return err
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		if err := eng.market.OfferSellAssetRemove(cmd.Context(), seller, asset, amount, buy); err != nil {
			return err
		}
		return printJSON(map[string]any{"buy": buy, "removed": true})
	},
}

var offerGetGlyphCmd = &cobra.Command{
	Use:   "offer:get-glyph <glyph>",
	Short: "Show a glyph's open offers",
	Long: `With --for-glyph or --for-asset/--amount, print the rank of that offer
on the book. Without, print the number of open offers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sell, err := parseGlyphID(args[0])
		if err != nil {
			return err
		}

		var buy *market.OfferBuy
		if cmd.Flags().Changed("for-glyph") || cmd.Flags().Changed("for-asset") {
			b, err := buyFromFlags(cmd)
			if err != nil {
				return err
			}
			buy = &b
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		result, err := eng.market.OfferSellGlyphGet(cmd.Context(), sell, buy)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"sell": sell, "result": result})
	},
}

var offerGetAssetCmd = &cobra.Command{
	Use:   "offer:get-asset <glyph>",
	Short: "Show a glyph's queued asset offers",
	Long: `With --seller, print that buyer's rank in the queue for the exact
(asset, amount) pair. Without, print the queue length.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buy, err := parseGlyphID(args[0])
		if err != nil {
			return err
		}
		asset, _ := cmd.Flags().GetString("asset")
		amount, _ := cmd.Flags().GetInt64("amount")
		if asset == "" || amount <= 0 {
			return fmt.Errorf("--asset and a positive --amount are required")
		}

		var seller *market.Principal
		if v, _ := cmd.Flags().GetString("seller"); v != "" {
			p := market.Principal(v)
			seller = &p
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		result, err := eng.market.OfferSellAssetGet(cmd.Context(), seller, market.Asset(asset), amount, buy)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"buy": buy, "result": result})
	},
}

func assetOfferFlags(cmd *cobra.Command) (market.Principal, market.Asset, market.Amount, error) {
	seller, _ := cmd.Flags().GetString("seller")
	asset, _ := cmd.Flags().GetString("asset")
	amount, _ := cmd.Flags().GetInt64("amount")
	if seller == "" {
		return "", "", 0, fmt.Errorf("--seller is required")
	}
	if asset == "" || amount <= 0 {
		return "", "", 0, fmt.Errorf("--asset and a positive --amount are required")
	}
	return market.Principal(seller), market.Asset(asset), amount, nil
}

func buySideFlags(cmd *cobra.Command) {
	cmd.Flags().String("for-glyph", "", "Ask for this glyph id")
	cmd.Flags().String("for-asset", "", "Ask for this asset")
	cmd.Flags().Int64("amount", 0, "Asked amount (with --for-asset)")
}

func init() {
	buySideFlags(offerSellGlyphCmd)
	buySideFlags(offerRemoveGlyphCmd)
	buySideFlags(offerGetGlyphCmd)

	for _, cmd := range []*cobra.Command{offerSellAssetCmd, offerRemoveAssetCmd} {
		cmd.Flags().String("seller", "", "Principal offering the asset")
		cmd.Flags().String("asset", "", "Offered asset")
		cmd.Flags().Int64("amount", 0, "Offered amount")
	}
	offerGetAssetCmd.Flags().String("seller", "", "Queued buyer to look up")
	offerGetAssetCmd.Flags().String("asset", "", "Offered asset")
	offerGetAssetCmd.Flags().Int64("amount", 0, "Offered amount")

	rootCmd.AddCommand(offerSellGlyphCmd)
	rootCmd.AddCommand(offerSellAssetCmd)
	rootCmd.AddCommand(offerRemoveGlyphCmd)
	rootCmd.AddCommand(offerRemoveAssetCmd)
	rootCmd.AddCommand(offerGetGlyphCmd)
	rootCmd.AddCommand(offerGetAssetCmd)
}
