package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kalepail/smol-sc/internal/assets"
	"github.com/kalepail/smol-sc/internal/market"
	"github.com/kalepail/smol-sc/internal/storage"
)

// Default marketplace configuration used by NewMarket.
const (
	FeeAsset        = market.Asset("USDC")
	FeeRecipient    = market.Principal("treasury")
	Admin           = market.Principal("admin")
	ColorClaimFee   = market.Amount(1)
	ColorOwnerRate  = int64(2)
	GlyphAuthorRate = int64(5)
	InitialBalance  = market.Amount(1_000_000)
)

// Market bundles a marketplace with the collaborators tests poke at.
type Market struct {
	*market.Marketplace
	Store  *storage.MemoryStore
	Auth   *Authorizer
	Ledger *assets.Ledger
}

// NewMarket builds an initialized marketplace over an in-memory store, with
// an allow-all authorizer and a ledger funding each given principal with
// InitialBalance of FeeAsset.
func NewMarket(t *testing.T, principals ...market.Principal) *Market {
	t.Helper()

	store := storage.NewMemoryStore()
	auth := NewAuthorizer()
	ledger := assets.NewLedger(storage.NewMemoryStore())

	ctx := context.Background()
	for _, p := range principals {
		require.NoError(t, ledger.Mint(ctx, FeeAsset, p, InitialBalance))
	}

	m := market.New(store, auth, ledger)
	require.NoError(t, m.Initialize(ctx, market.InitConfig{
		Admin:           Admin,
		FeeAsset:        FeeAsset,
		FeeRecipient:    FeeRecipient,
		ColorClaimFee:   ColorClaimFee,
		ColorOwnerRate:  ColorOwnerRate,
		GlyphAuthorRate: GlyphAuthorRate,
	}))

	return &Market{Marketplace: m, Store: store, Auth: auth, Ledger: ledger}
}

// Balance reads a principal's FeeAsset balance, failing the test on error.
func (m *Market) Balance(t *testing.T, principal market.Principal) market.Amount {
	t.Helper()
	balance, err := m.Ledger.Balance(context.Background(), FeeAsset, principal)
	require.NoError(t, err)
	return balance
}
