package market_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kalepail/smol-sc/internal/assets"
	"github.com/kalepail/smol-sc/internal/market"
	"github.com/kalepail/smol-sc/internal/pubsub"
	"github.com/kalepail/smol-sc/internal/storage"
	"github.com/kalepail/smol-sc/internal/testutil"
)

// TestMarketplaceLifecycle runs a full trade: two color claims, a full-size
// mint, a listing, a matching bid and both royalty claims, checking that
// every unit of the fee asset ends up somewhere accountable.
func TestMarketplaceLifecycle(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewMarket(t, "alice", "bob", "carol")

	red := testutil.StandardLegend()[0]
	green := testutil.StandardLegend()[1]
	require.NoError(t, m.ColorClaim(ctx, "alice", "alice", red))
	require.NoError(t, m.ColorClaim(ctx, "carol", "carol", green))

	pixels := testutil.FullGlyphPixels()
	id, err := m.GlyphMint(ctx, "alice", "alice", pixels, testutil.StandardLegend(), testutil.StandardWidth, "checkers", "alternating red and green")
	require.NoError(t, err)

	matched, err := m.OfferSellGlyph(ctx, id, market.BuyAsset(testutil.FeeAsset, 100))
	require.NoError(t, err)
	require.Nil(t, matched)

	isMatch, err := m.OfferSellAsset(ctx, "bob", testutil.FeeAsset, 100, id)
	require.NoError(t, err)
	require.True(t, isMatch)

	owner, err := m.GlyphOwnerGet(ctx, id)
	require.NoError(t, err)
	require.Equal(t, market.Principal("bob"), owner)

	// 2025 alternating pixels: 1013 on red, 1012 on green. With a 5% author
	// rate and a 2% color budget on a 100-unit sale, both color shares floor
	// to zero and are lifted to the 1-unit minimum. alice accrues the author
	// share, her color share and the seller remainder.
	aliceRoyalties, err := m.RoyaltiesGet(ctx, "alice", testutil.FeeAsset)
	require.NoError(t, err)
	require.Equal(t, market.Amount(5+1+93), aliceRoyalties)

	carolRoyalties, err := m.RoyaltiesGet(ctx, "carol", testutil.FeeAsset)
	require.NoError(t, err)
	require.Equal(t, market.Amount(1), carolRoyalties)

	claimed, err := m.RoyaltiesClaim(ctx, "alice", testutil.FeeAsset)
	require.NoError(t, err)
	require.Equal(t, market.Amount(99), claimed)
	claimed, err = m.RoyaltiesClaim(ctx, "carol", testutil.FeeAsset)
	require.NoError(t, err)
	require.Equal(t, market.Amount(1), claimed)

	// Claiming twice finds nothing.
	_, err = m.RoyaltiesClaim(ctx, "alice", testutil.FeeAsset)
	require.ErrorIs(t, err, market.ErrNoRoyaltiesToClaim)

	// Final accounting. Custody is empty once every claim is paid out, and
	// the sum across all parties is exactly what was minted.
	require.Equal(t, testutil.InitialBalance-1+99, m.Balance(t, "alice"))
	require.Equal(t, testutil.InitialBalance-100, m.Balance(t, "bob"))
	require.Equal(t, testutil.InitialBalance-1+1, m.Balance(t, "carol"))
	require.Equal(t, market.Amount(2), m.Balance(t, testutil.FeeRecipient))
	require.Equal(t, market.Amount(0), m.Balance(t, m.Custody()))

	total := m.Balance(t, "alice") + m.Balance(t, "bob") + m.Balance(t, "carol") +
		m.Balance(t, testutil.FeeRecipient) + m.Balance(t, m.Custody())
	require.Equal(t, 3*testutil.InitialBalance, total)
}

// TestMarketplaceSequentialSales resells a glyph through two queued buyers.
// The second sale's seller is not the author, so the author share and the
// seller remainder accrue to different principals.
func TestMarketplaceSequentialSales(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewMarket(t, "alice", "bob", "carol", "dan")

	red := testutil.StandardLegend()[0]
	green := testutil.StandardLegend()[1]
	require.NoError(t, m.ColorClaim(ctx, "alice", "alice", red))
	require.NoError(t, m.ColorClaim(ctx, "carol", "carol", green))

	id, err := m.GlyphMint(ctx, "alice", "alice", testutil.FullGlyphPixels(), testutil.StandardLegend(), testutil.StandardWidth, "", "")
	require.NoError(t, err)

	// Both buyers escrow at the same price before any listing exists.
	_, err = m.OfferSellAsset(ctx, "bob", testutil.FeeAsset, 100, id)
	require.NoError(t, err)
	_, err = m.OfferSellAsset(ctx, "dan", testutil.FeeAsset, 100, id)
	require.NoError(t, err)
	require.Equal(t, market.Amount(200), m.Balance(t, m.Custody()))

	// First sale: alice lists and the queue head (bob) wins.
	matched, err := m.OfferSellGlyph(ctx, id, market.BuyAsset(testutil.FeeAsset, 100))
	require.NoError(t, err)
	require.NotNil(t, matched)
	require.Equal(t, market.Principal("bob"), *matched)

	// Second sale: bob relists at the queued price and dan matches
	// immediately. bob sells a glyph he did not author.
	matched, err = m.OfferSellGlyph(ctx, id, market.BuyAsset(testutil.FeeAsset, 100))
	require.NoError(t, err)
	require.NotNil(t, matched)
	require.Equal(t, market.Principal("dan"), *matched)

	owner, err := m.GlyphOwnerGet(ctx, id)
	require.NoError(t, err)
	require.Equal(t, market.Principal("dan"), owner)

	// Per sale: author 5, each owned color lifted to 1, seller 93. alice
	// accrues 99 as seller of the first sale plus 6 from the second; bob
	// only the second sale's remainder.
	claimed, err := m.RoyaltiesClaim(ctx, "alice", testutil.FeeAsset)
	require.NoError(t, err)
	require.Equal(t, market.Amount(99+6), claimed)
	claimed, err = m.RoyaltiesClaim(ctx, "bob", testutil.FeeAsset)
	require.NoError(t, err)
	require.Equal(t, market.Amount(93), claimed)
	claimed, err = m.RoyaltiesClaim(ctx, "carol", testutil.FeeAsset)
	require.NoError(t, err)
	require.Equal(t, market.Amount(2), claimed)

	require.Equal(t, testutil.InitialBalance-1+105, m.Balance(t, "alice"))
	require.Equal(t, testutil.InitialBalance-100+93, m.Balance(t, "bob"))
	require.Equal(t, testutil.InitialBalance-1+2, m.Balance(t, "carol"))
	require.Equal(t, testutil.InitialBalance-100, m.Balance(t, "dan"))
	require.Equal(t, market.Amount(2), m.Balance(t, testutil.FeeRecipient))
	require.Equal(t, market.Amount(0), m.Balance(t, m.Custody()))

	total := m.Balance(t, "alice") + m.Balance(t, "bob") + m.Balance(t, "carol") +
		m.Balance(t, "dan") + m.Balance(t, testutil.FeeRecipient) + m.Balance(t, m.Custody())
	require.Equal(t, 4*testutil.InitialBalance, total)
}

func TestMarketplacePublishesEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := pubsub.NewBroker[market.Notification]()
	defer broker.Close()
	events := broker.Subscribe(ctx)

	auth := testutil.NewAuthorizer()
	ledger := assets.NewLedger(storage.NewMemoryStore())
	require.NoError(t, ledger.Mint(ctx, testutil.FeeAsset, "alice", testutil.InitialBalance))

	m := market.New(storage.NewMemoryStore(), auth, ledger, market.WithEvents(broker))
	require.NoError(t, m.Initialize(ctx, market.InitConfig{
		Admin:           testutil.Admin,
		FeeAsset:        testutil.FeeAsset,
		FeeRecipient:    testutil.FeeRecipient,
		ColorClaimFee:   testutil.ColorClaimFee,
		ColorOwnerRate:  testutil.ColorOwnerRate,
		GlyphAuthorRate: testutil.GlyphAuthorRate,
	}))

	require.NoError(t, m.ColorClaim(ctx, "alice", "alice", 0xFF0000))

	select {
	case ev := <-events:
		require.Equal(t, market.TopicColorClaim, ev.Type)
		require.NotEmpty(t, ev.Payload.ID)
		require.Equal(t, market.Principal("alice"), ev.Payload.Data["owner"])
	case <-time.After(time.Second):
		t.Fatal("no color claim event published")
	}
}

func TestMarketplaceFailedOperationEmitsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := pubsub.NewBroker[market.Notification]()
	defer broker.Close()
	events := broker.Subscribe(ctx)

	auth := testutil.NewAuthorizer()
	ledger := assets.NewLedger(storage.NewMemoryStore())

	m := market.New(storage.NewMemoryStore(), auth, ledger, market.WithEvents(broker))

	// Uninitialized market: the claim rolls back and stays silent.
	require.Error(t, m.ColorClaim(ctx, "alice", "alice", 1))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %q after a failed operation", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMarketplaceCustomCustody(t *testing.T) {
	ctx := context.Background()

	auth := testutil.NewAuthorizer()
	ledger := assets.NewLedger(storage.NewMemoryStore())
	require.NoError(t, ledger.Mint(ctx, testutil.FeeAsset, "alice", testutil.InitialBalance))
	require.NoError(t, ledger.Mint(ctx, testutil.FeeAsset, "bob", testutil.InitialBalance))

	m := market.New(storage.NewMemoryStore(), auth, ledger, market.WithCustody("vault"))
	require.Equal(t, market.Principal("vault"), m.Custody())
	require.NoError(t, m.Initialize(ctx, market.InitConfig{
		Admin:           testutil.Admin,
		FeeAsset:        testutil.FeeAsset,
		FeeRecipient:    testutil.FeeRecipient,
		ColorClaimFee:   testutil.ColorClaimFee,
		ColorOwnerRate:  testutil.ColorOwnerRate,
		GlyphAuthorRate: testutil.GlyphAuthorRate,
	}))

	id, err := m.GlyphMint(ctx, "alice", "alice", testutil.AlternatingPixels(4), testutil.StandardLegend(), 2, "", "")
	require.NoError(t, err)
	_, err = m.OfferSellAsset(ctx, "bob", testutil.FeeAsset, 100, id)
	require.NoError(t, err)

	balance, err := ledger.Balance(ctx, testutil.FeeAsset, "vault")
	require.NoError(t, err)
	require.Equal(t, market.Amount(100), balance)
}
