package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kalepail/smol-sc/internal/config"
	"github.com/kalepail/smol-sc/internal/market"
)

var adminInitCmd = &cobra.Command{
	Use:   "admin:init",
	Short: "Initialize the marketplace configuration",
	Long: `Write the one-time marketplace configuration: admin, fee routing and
royalty rates. Values come from the market section of the config file and can
be overridden with flags. Fails if the marketplace is already initialized.

Examples:
  smol admin:init --admin GADMIN --fee-asset USDC --fee-recipient GTREASURY
  smol admin:init --color-claim-fee 1 --color-owner-rate 2 --glyph-author-rate 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := cfg.Market
		if v, _ := cmd.Flags().GetString("admin"); v != "" {
			m.Admin = v
		}
		if v, _ := cmd.Flags().GetString("fee-asset"); v != "" {
			m.FeeAsset = v
		}
		if v, _ := cmd.Flags().GetString("fee-recipient"); v != "" {
			m.FeeRecipient = v
		}
		if cmd.Flags().Changed("color-claim-fee") {
			m.ColorClaimFee, _ = cmd.Flags().GetInt64("color-claim-fee")
		}
		if cmd.Flags().Changed("color-owner-rate") {
			m.ColorOwnerRate, _ = cmd.Flags().GetInt64("color-owner-rate")
		}
		if cmd.Flags().Changed("glyph-author-rate") {
			m.GlyphAuthorRate, _ = cmd.Flags().GetInt64("glyph-author-rate")
		}

		if m.Admin == "" {
			return fmt.Errorf("admin is required (flag --admin or market.admin in config)")
		}
		if m.FeeAsset == "" || m.FeeRecipient == "" {
			return fmt.Errorf("fee-asset and fee-recipient are required")
		}
		if err := config.ValidateMarket(m); err != nil {
			return err
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		err = eng.market.Initialize(cmd.Context(), market.InitConfig{
			Admin:           market.Principal(m.Admin),
			FeeAsset:        market.Asset(m.FeeAsset),
			FeeRecipient:    market.Principal(m.FeeRecipient),
			ColorClaimFee:   m.ColorClaimFee,
			ColorOwnerRate:  m.ColorOwnerRate,
			GlyphAuthorRate: m.GlyphAuthorRate,
		})
		if err != nil {
			return err
		}

		// Keep the config file in sync with what was written.
		if path := viper.ConfigFileUsed(); path != "" {
			if err := config.SaveMarket(path, m); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not update config file: %v\n", err)
			}
		}

		return printJSON(map[string]any{"initialized": true, "admin": m.Admin})
	},
}

var adminUpdateCmd = &cobra.Command{
	Use:   "admin:update",
	Short: "Update marketplace configuration fields",
	Long: `Overwrite individual configuration fields. Only the flags you pass are
changed; everything else keeps its current value. Requires authorization as
the current admin.

Examples:
  smol admin:update --color-claim-fee 2
  smol admin:update --admin GNEWADMIN`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var upd market.ConfigUpdate
		if v, _ := cmd.Flags().GetString("admin"); v != "" {
			p := market.Principal(v)
			upd.Admin = &p
		}
		if v, _ := cmd.Flags().GetString("fee-asset"); v != "" {
			a := market.Asset(v)
			upd.FeeAsset = &a
		}
		if v, _ := cmd.Flags().GetString("fee-recipient"); v != "" {
			p := market.Principal(v)
			upd.FeeRecipient = &p
		}
		if cmd.Flags().Changed("color-claim-fee") {
			v, _ := cmd.Flags().GetInt64("color-claim-fee")
			upd.ColorClaimFee = &v
		}
		if cmd.Flags().Changed("color-owner-rate") {
			v, _ := cmd.Flags().GetInt64("color-owner-rate")
			upd.ColorOwnerRate = &v
		}
		if cmd.Flags().Changed("glyph-author-rate") {
			v, _ := cmd.Flags().GetInt64("glyph-author-rate")
			upd.GlyphAuthorRate = &v
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		if err := eng.market.UpdateConfig(cmd.Context(), upd); err != nil {
			return err
		}
		return printJSON(map[string]any{"updated": true})
	},
}

func adminFlags(cmd *cobra.Command) {
	cmd.Flags().String("admin", "", "Admin principal")
	cmd.Flags().String("fee-asset", "", "Asset the color claim fee is charged in")
	cmd.Flags().String("fee-recipient", "", "Principal receiving color claim fees")
	cmd.Flags().Int64("color-claim-fee", 0, "Fee charged per color claim")
	cmd.Flags().Int64("color-owner-rate", 0, "Percent of each sale split across color owners")
	cmd.Flags().Int64("glyph-author-rate", 0, "Percent of each sale paid to the glyph author")
}

func init() {
	adminFlags(adminInitCmd)
	adminFlags(adminUpdateCmd)
	rootCmd.AddCommand(adminInitCmd)
	rootCmd.AddCommand(adminUpdateCmd)
}
