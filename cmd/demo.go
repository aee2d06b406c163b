package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kalepail/smol-sc/internal/assets"
	"github.com/kalepail/smol-sc/internal/auth"
	"github.com/kalepail/smol-sc/internal/infrastructure/sqlite"
	"github.com/kalepail/smol-sc/internal/market"
	"github.com/kalepail/smol-sc/internal/pubsub"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted marketplace session against a throwaway database",
	Long: `Spin up a marketplace in a temporary database, run a short scripted
session (claim colors, mint a glyph, trade it, claim royalties) and print
every event it emits. Nothing touches the configured database.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	tmpDir, err := os.MkdirTemp("", "smol-demo-*")
	if err != nil {
		return fmt.Errorf("creating demo directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	db, err := sqlite.NewDB(filepath.Join(tmpDir, "demo.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	// The ledger needs its own database: transfers run while a marketplace
	// transaction holds the write lock on the marketplace one.
	ledgerDB, err := sqlite.NewDB(filepath.Join(tmpDir, "ledger.db"))
	if err != nil {
		return err
	}
	defer ledgerDB.Close()

	store := db.Store()
	ledger := assets.NewLedger(ledgerDB.Store())
	broker := pubsub.NewBroker[market.Notification]()
	defer broker.Close()

	events := broker.Subscribe(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			fmt.Printf("event %-24s %v\n", ev.Type, ev.Payload.Data)
		}
	}()

	m := market.New(store, auth.NewStatic(), ledger, market.WithEvents(broker))

	if err := runDemoScript(ctx, m, ledger); err != nil {
		return err
	}

	broker.Close()
	<-done
	return nil
}

func runDemoScript(ctx context.Context, m *market.Marketplace, ledger *assets.Ledger) error {
	const usdc = market.Asset("USDC")

	if err := m.Initialize(ctx, market.InitConfig{
		Admin:           "admin",
		FeeAsset:        usdc,
		FeeRecipient:    "treasury",
		ColorClaimFee:   1,
		ColorOwnerRate:  2,
		GlyphAuthorRate: 5,
	}); err != nil {
		return err
	}

	for _, p := range []market.Principal{"alice", "bob"} {
		if err := ledger.Mint(ctx, usdc, p, 1_000); err != nil {
			return err
		}
	}

	if err := m.ColorClaim(ctx, "alice", "alice", 0xFF0000); err != nil {
		return err
	}
	if err := m.ColorClaim(ctx, "alice", "alice", 0x00FF00); err != nil {
		return err
	}

	pixels := make([]byte, 16)
	for i := range pixels {
		pixels[i] = byte(i % 2)
	}
	id, err := m.GlyphMint(ctx, "alice", "alice", pixels, []uint32{0xFF0000, 0x00FF00}, 4, "Checkers", "A demo glyph")
	if err != nil {
		return err
	}

	if _, err := m.OfferSellGlyph(ctx, id, market.BuyAsset(usdc, 100)); err != nil {
		return err
	}
	if _, err := m.OfferSellAsset(ctx, "bob", usdc, 100, id); err != nil {
		return err
	}

	if _, err := m.RoyaltiesClaim(ctx, "alice", usdc); err != nil {
		return err
	}
	return nil
}
