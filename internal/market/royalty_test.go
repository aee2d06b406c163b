package market

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kalepail/smol-sc/internal/storage"
)

func testGlyph(author Principal, pixels []byte, legend []uint32) Glyph {
	return Glyph{
		Author: author,
		Pixels: pixels,
		Width:  1,
		Legend: legend,
	}
}

// distribute runs the split in a single transaction and returns the
// resulting royalty balances for the given principals.
func distribute(t *testing.T, store storage.Store, rates royaltyRates, glyph Glyph, seller Principal, amount Amount, colorOwners map[uint32]Principal, principals ...Principal) map[Principal]Amount {
	t.Helper()

	balances := make(map[Principal]Amount)
	err := store.Update(func(tx storage.Tx) error {
		for color, owner := range colorOwners {
			if err := setColorOwner(tx, color, owner); err != nil {
				return err
			}
		}
		if err := distributeRoyalties(tx, rates, glyph, seller, "USDC", amount); err != nil {
			return err
		}
		for _, p := range principals {
			balance, err := royaltyBalance(tx, p, "USDC")
			if err != nil {
				return err
			}
			balances[p] = balance
		}
		return nil
	})
	require.NoError(t, err)
	return balances
}

func TestPaletteHistogram(t *testing.T) {
	hist := paletteHistogram([]byte{0, 1, 1, 3, 0, 0})
	require.Equal(t, int64(3), hist[0])
	require.Equal(t, int64(2), hist[1])
	require.Equal(t, int64(0), hist[2])
	require.Equal(t, int64(1), hist[3])
}

func TestDistributeRoyalties_ExactSplit(t *testing.T) {
	store := storage.NewMemoryStore()
	rates := royaltyRates{author: 5, colorOwner: 2}

	// 100 pixels, 80 of index 0 and 20 of index 1.
	pixels := make([]byte, 100)
	for i := 80; i < 100; i++ {
		pixels[i] = 1
	}
	glyph := testGlyph("author", pixels, []uint32{0xFF0000, 0x00FF00})

	balances := distribute(t, store, rates, glyph, "seller", 1000,
		map[uint32]Principal{0xFF0000: "red-owner", 0x00FF00: "green-owner"},
		"author", "red-owner", "green-owner", "seller")

	// author: 1000*5/100 = 50
	// color budget: 1000*2/100 = 20; red: 20*80/100 = 16, green: 20*20/100 = 4
	// seller: 1000 - 50 - 16 - 4 = 930
	require.Equal(t, Amount(50), balances["author"])
	require.Equal(t, Amount(16), balances["red-owner"])
	require.Equal(t, Amount(4), balances["green-owner"])
	require.Equal(t, Amount(930), balances["seller"])
}

func TestDistributeRoyalties_MinimumCredit(t *testing.T) {
	store := storage.NewMemoryStore()
	rates := royaltyRates{author: 5, colorOwner: 2}

	// A 1-unit sale floors every share to zero; each eligible party is
	// still credited 1, with the seller absorbing the inflation.
	pixels := []byte{0, 0, 1, 1}
	glyph := testGlyph("author", pixels, []uint32{0xAA, 0xBB})

	balances := distribute(t, store, rates, glyph, "seller", 1,
		map[uint32]Principal{0xAA: "a-owner", 0xBB: "b-owner"},
		"author", "a-owner", "b-owner", "seller")

	require.Equal(t, Amount(1), balances["author"])
	require.Equal(t, Amount(1), balances["a-owner"])
	require.Equal(t, Amount(1), balances["b-owner"])
	require.Equal(t, Amount(-2), balances["seller"], "seller remainder absorbs the minimum credits")
}

func TestDistributeRoyalties_UnclaimedColorsSkipped(t *testing.T) {
	store := storage.NewMemoryStore()
	rates := royaltyRates{author: 5, colorOwner: 2}

	pixels := []byte{0, 1, 0, 1}
	glyph := testGlyph("author", pixels, []uint32{0xAA, 0xBB})

	// Only 0xAA has an owner; 0xBB's share is never carved out.
	balances := distribute(t, store, rates, glyph, "seller", 1000,
		map[uint32]Principal{0xAA: "a-owner"},
		"author", "a-owner", "seller")

	// author: 50; budget 20; a-owner: 20*2/4 = 10; seller: 1000-50-10 = 940
	require.Equal(t, Amount(50), balances["author"])
	require.Equal(t, Amount(10), balances["a-owner"])
	require.Equal(t, Amount(940), balances["seller"])
}

func TestDistributeRoyalties_LoopBoundedByLegend(t *testing.T) {
	store := storage.NewMemoryStore()
	rates := royaltyRates{author: 5, colorOwner: 2}

	// Pixels reference index 2 but the legend only has two entries; the
	// out-of-legend bucket pays nothing even though its owner exists.
	pixels := []byte{0, 2, 2, 2}
	glyph := testGlyph("author", pixels, []uint32{0xAA, 0xBB})

	balances := distribute(t, store, rates, glyph, "seller", 1000,
		map[uint32]Principal{0xAA: "a-owner", 0xBB: "b-owner", 0xCC: "c-owner"},
		"author", "a-owner", "b-owner", "c-owner", "seller")

	// a-owner (index 0): 20*1/4 = 5. b-owner (index 1): count 0, min credit 1.
	require.Equal(t, Amount(50), balances["author"])
	require.Equal(t, Amount(5), balances["a-owner"])
	require.Equal(t, Amount(1), balances["b-owner"])
	require.Equal(t, Amount(0), balances["c-owner"])
	require.Equal(t, Amount(944), balances["seller"])
}

func TestDistributeRoyalties_Conservation(t *testing.T) {
	rates := royaltyRates{author: 5, colorOwner: 2}

	pixels := make([]byte, 45)
	for i := range pixels {
		pixels[i] = byte(i % 3)
	}
	glyph := testGlyph("author", pixels, []uint32{0x10, 0x20, 0x30})

	for _, amount := range []Amount{1, 7, 99, 100, 12345} {
		balances := distribute(t, storage.NewMemoryStore(), rates, glyph, "seller", amount,
			map[uint32]Principal{0x10: "o1", 0x20: "o2", 0x30: "o3"},
			"author", "o1", "o2", "o3", "seller")

		var total Amount
		for _, b := range balances {
			total += b
		}
		require.Equal(t, amount, total, "accruals must sum to the sale amount (amount=%d)", amount)
	}
}

func TestRoyaltyLedgerAccrual(t *testing.T) {
	store := storage.NewMemoryStore()

	err := store.Update(func(tx storage.Tx) error {
		if err := accrueRoyalty(tx, "alice", "USDC", 10); err != nil {
			return err
		}
		if err := accrueRoyalty(tx, "alice", "USDC", 5); err != nil {
			return err
		}
		if err := accrueRoyalty(tx, "alice", "XLM", 3); err != nil {
			return err
		}

		balance, err := royaltyBalance(tx, "alice", "USDC")
		if err != nil {
			return err
		}
		require.Equal(t, Amount(15), balance)

		balance, err = royaltyBalance(tx, "alice", "XLM")
		if err != nil {
			return err
		}
		require.Equal(t, Amount(3), balance)

		if err := setRoyaltyBalance(tx, "alice", "USDC", 0); err != nil {
			return err
		}
		balance, err = royaltyBalance(tx, "alice", "USDC")
		if err != nil {
			return err
		}
		require.Zero(t, balance)
		return nil
	})
	require.NoError(t, err)
}
