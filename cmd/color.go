package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalepail/smol-sc/internal/market"
)

// parseColor accepts decimal or 0x/# prefixed hex color values.
func parseColor(arg string) (uint32, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(arg, "0x"), "#")
	base := 10
	if s != arg {
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", arg, err)
	}
	return uint32(v), nil
}

var colorClaimCmd = &cobra.Command{
	Use:   "color:claim <color>",
	Short: "Claim a 24-bit color",
	Long: `Claim ownership of a color. The configured claim fee is charged to the
payer (defaults to the owner). Colors are written 0xRRGGBB, #RRGGBB or
decimal.

Examples:
  smol color:claim 0xFF0000 --owner alice
  smol color:claim 16711680 --owner alice --payer bob`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := parseColor(args[0])
		if err != nil {
			return err
		}
		owner, _ := cmd.Flags().GetString("owner")
		if owner == "" {
			return fmt.Errorf("--owner is required")
		}
		payer, _ := cmd.Flags().GetString("payer")
		if payer == "" {
			payer = owner
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		if err := eng.market.ColorClaim(cmd.Context(), market.Principal(payer), market.Principal(owner), color); err != nil {
			return err
		}
		return printJSON(map[string]any{"color": color, "owner": owner})
	},
}

var colorOwnerCmd = &cobra.Command{
	Use:   "color:owner <color>",
	Short: "Show the owner of a color",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := parseColor(args[0])
		if err != nil {
			return err
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		owner, err := eng.market.ColorOwnerGet(cmd.Context(), color)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"color": color, "owner": owner})
	},
}

var colorTransferCmd = &cobra.Command{
	Use:   "color:transfer <color> <to>",
	Short: "Transfer a color to a new owner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := parseColor(args[0])
		if err != nil {
			return err
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		if err := eng.market.ColorOwnerTransfer(cmd.Context(), color, market.Principal(args[1])); err != nil {
			return err
		}
		return printJSON(map[string]any{"color": color, "owner": args[1]})
	},
}

func init() {
	colorClaimCmd.Flags().String("owner", "", "Principal that will own the color")
	colorClaimCmd.Flags().String("payer", "", "Principal charged the claim fee (default: owner)")
	rootCmd.AddCommand(colorClaimCmd)
	rootCmd.AddCommand(colorOwnerCmd)
	rootCmd.AddCommand(colorTransferCmd)
}
