package market_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kalepail/smol-sc/internal/assets"
	"github.com/kalepail/smol-sc/internal/market"
	"github.com/kalepail/smol-sc/internal/storage"
	"github.com/kalepail/smol-sc/internal/testutil"
)

// bareMarket builds a marketplace that has not been initialized.
func bareMarket() (*market.Marketplace, *testutil.Authorizer) {
	auth := testutil.NewAuthorizer()
	m := market.New(storage.NewMemoryStore(), auth, assets.NewLedger(storage.NewMemoryStore()))
	return m, auth
}

func TestInitializeOnce(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewMarket(t)

	err := m.Initialize(ctx, market.InitConfig{Admin: "someone-else"})
	require.ErrorIs(t, err, market.ErrAlreadyInitialized)
}

func TestUpdateConfigRequiresInitialize(t *testing.T) {
	ctx := context.Background()
	m, _ := bareMarket()

	admin := market.Principal("admin")
	err := m.UpdateConfig(ctx, market.ConfigUpdate{Admin: &admin})
	require.ErrorIs(t, err, market.ErrNotInitialized)
}

func TestUpdateConfigRequiresAdminAuth(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewMarket(t)

	m.Auth.Deny(testutil.Admin)
	fee := market.Amount(10)
	err := m.UpdateConfig(ctx, market.ConfigUpdate{ColorClaimFee: &fee})
	require.Error(t, err)
}

func TestUpdateConfigPartialOverwrite(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewMarket(t, "alice")

	// Raise only the claim fee; the recipient stays as configured.
	fee := market.Amount(10)
	require.NoError(t, m.UpdateConfig(ctx, market.ConfigUpdate{ColorClaimFee: &fee}))

	require.NoError(t, m.ColorClaim(ctx, "alice", "alice", 0xABCDEF))
	require.Equal(t, testutil.InitialBalance-10, m.Balance(t, "alice"))
	require.Equal(t, market.Amount(10), m.Balance(t, testutil.FeeRecipient))
}

func TestUpdateConfigHandsOverAdmin(t *testing.T) {
	ctx := context.Background()
	m := testutil.NewMarket(t)

	next := market.Principal("successor")
	require.NoError(t, m.UpdateConfig(ctx, market.ConfigUpdate{Admin: &next}))

	// The old admin no longer authorizes updates.
	m.Auth.Deny(testutil.Admin)
	fee := market.Amount(3)
	require.NoError(t, m.UpdateConfig(ctx, market.ConfigUpdate{ColorClaimFee: &fee}))
	require.Contains(t, m.Auth.Calls(), next)
}

func TestColorClaimOnUninitializedMarket(t *testing.T) {
	ctx := context.Background()
	m, _ := bareMarket()

	err := m.ColorClaim(ctx, "alice", "alice", 1)
	require.ErrorIs(t, err, market.ErrNotInitialized)

	// The rollback must also discard the ownership write.
	_, err = m.ColorOwnerGet(ctx, 1)
	require.ErrorIs(t, err, market.ErrColorNotClaimed)
}
