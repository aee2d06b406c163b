package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kalepail/smol-sc/internal/market"
)

func parseGlyphID(arg string) (market.GlyphID, error) {
	v, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid glyph id %q: %w", arg, err)
	}
	return market.GlyphID(v), nil
}

var glyphMintCmd = &cobra.Command{
	Use:   "glyph:mint",
	Short: "Mint a new glyph",
	Long: `Mint a glyph from pixel data. Pixels are palette indices, one byte per
pixel, given as a hex string or read from a file. The legend maps each index
to a 24-bit color. Identity is the content hash of (pixels, width): minting
the same pair twice fails.

Examples:
  smol glyph:mint --pixels 00010001 --legend 0xFF0000,0x00FF00 --width 2 --author alice
  smol glyph:mint --pixels-file ./art.bin --width 45 --author alice --title "Sunset"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pixelsHex, _ := cmd.Flags().GetString("pixels")
		pixelsFile, _ := cmd.Flags().GetString("pixels-file")

		var pixels []byte
		var err error
		switch {
		case pixelsHex != "" && pixelsFile != "":
			return fmt.Errorf("--pixels and --pixels-file are mutually exclusive")
		case pixelsHex != "":
			pixels, err = hex.DecodeString(pixelsHex)
			if err != nil {
				return fmt.Errorf("invalid --pixels hex: %w", err)
			}
		case pixelsFile != "":
			pixels, err = os.ReadFile(pixelsFile)
			if err != nil {
				return fmt.Errorf("reading pixels file: %w", err)
			}
		default:
			return fmt.Errorf("one of --pixels or --pixels-file is required")
		}

		legendArgs, _ := cmd.Flags().GetStringSlice("legend")
		legend := make([]uint32, 0, len(legendArgs))
		for _, l := range legendArgs {
			c, err := parseColor(l)
			if err != nil {
				return fmt.Errorf("invalid legend entry: %w", err)
			}
			legend = append(legend, c)
		}

		width, _ := cmd.Flags().GetUint32("width")
		author, _ := cmd.Flags().GetString("author")
		if author == "" {
			return fmt.Errorf("--author is required")
		}
		owner, _ := cmd.Flags().GetString("owner")
		if owner == "" {
			owner = author
		}
		title, _ := cmd.Flags().GetString("title")
		story, _ := cmd.Flags().GetString("story")

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		id, err := eng.market.GlyphMint(cmd.Context(),
			market.Principal(author), market.Principal(owner),
			pixels, legend, width, title, story)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"id": id, "owner": owner})
	},
}

var glyphGetCmd = &cobra.Command{
	Use:   "glyph:get <id>",
	Short: "Show a glyph's stored record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseGlyphID(args[0])
		if err != nil {
			return err
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		glyph, err := eng.market.GlyphGet(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"id":     id,
			"author": glyph.Author,
			"pixels": hex.EncodeToString(glyph.Pixels),
			"legend": glyph.Legend,
			"width":  glyph.Width,
		})
	},
}

var glyphOwnerCmd = &cobra.Command{
	Use:   "glyph:owner <id>",
	Short: "Show the owner of a glyph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseGlyphID(args[0])
		if err != nil {
			return err
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		owner, err := eng.market.GlyphOwnerGet(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"id": id, "owner": owner})
	},
}

var glyphTransferCmd = &cobra.Command{
	Use:   "glyph:transfer <id> <to>",
	Short: "Transfer a glyph to a new owner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseGlyphID(args[0])
		if err != nil {
			return err
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.close()

		if err := eng.market.GlyphOwnerTransfer(cmd.Context(), id, market.Principal(args[1])); err != nil {
			return err
		}
		return printJSON(map[string]any{"id": id, "owner": args[1]})
	},
}

func init() {
	glyphMintCmd.Flags().String("pixels", "", "Pixel data as hex (one byte per pixel)")
	glyphMintCmd.Flags().String("pixels-file", "", "File holding raw pixel bytes")
	glyphMintCmd.Flags().StringSlice("legend", nil, "Palette legend, comma-separated colors (e.g. 0xFF0000,0x00FF00)")
	glyphMintCmd.Flags().Uint32("width", 0, "Glyph width in pixels")
	glyphMintCmd.Flags().String("author", "", "Glyph author (receives author royalties)")
	glyphMintCmd.Flags().String("owner", "", "Initial owner (default: author)")
	glyphMintCmd.Flags().String("title", "", "Title, carried on the mint event")
	glyphMintCmd.Flags().String("story", "", "Story, carried on the mint event")
	rootCmd.AddCommand(glyphMintCmd)
	rootCmd.AddCommand(glyphGetCmd)
	rootCmd.AddCommand(glyphOwnerCmd)
	rootCmd.AddCommand(glyphTransferCmd)
}
