package market

import "github.com/kalepail/smol-sc/internal/storage"

// RoyaltyEngine: splits a sale amount among the glyph author, the owners of
// the glyph's legend colors, and the seller, accruing everything into the
// royalty ledger for later claiming. Integer math throughout; the rounding
// policy (floor, then a minimum credit of 1) guarantees every eligible party
// receives at least the smallest unit per sale, with the seller's remainder
// absorbing the rounding loss.

// paletteHistogram counts palette-index usage across the pixel sequence.
// One bucket per possible index byte.
func paletteHistogram(pixels []byte) [256]int64 {
	var hist [256]int64
	for _, idx := range pixels {
		hist[idx]++
	}
	return hist
}

func minOne(v Amount) Amount {
	if v < 1 {
		return 1
	}
	return v
}

// distributeRoyalties runs the split for a sale of amount of asset, with
// seller as the glyph's owner before the match.
//
//  1. author: max(1, floor(amount*authorRate/100))
//  2. each legend color with a registered owner:
//     max(1, floor(floor(amount*colorRate/100)*count/len(pixels)))
//  3. seller: the exact remainder
//
// The color loop is bounded by the legend length: histogram buckets past it
// are never visited even when nonzero. That caps iteration cost and does not
// prioritize the highest-frequency colors; the behavior is kept as-is
// because changing it changes payout amounts.
func distributeRoyalties(tx storage.Tx, rates royaltyRates, glyph Glyph, seller Principal, asset Asset, amount Amount) error {
	authorAmount := minOne(amount * rates.author / 100)
	if err := accrueRoyalty(tx, glyph.Author, asset, authorAmount); err != nil {
		return err
	}

	hist := paletteHistogram(glyph.Pixels)
	totalPixels := int64(len(glyph.Pixels))
	colorBudget := amount * rates.colorOwner / 100

	var colorAmounts Amount
	for i, color := range glyph.Legend {
		owner, ok, err := colorOwner(tx, color)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		colorAmount := minOne(colorBudget * hist[i] / totalPixels)
		if err := accrueRoyalty(tx, owner, asset, colorAmount); err != nil {
			return err
		}
		colorAmounts += colorAmount
	}

	// Remainder to the seller. May be less than amount-rate suggests when
	// the min-1 credits fire; goes negative only if the configured rates sum
	// past 100%, which the admin component must prevent.
	return accrueRoyalty(tx, seller, asset, amount-authorAmount-colorAmounts)
}

// RoyaltyLedger state: (principal, asset) -> claimable amount.

func royaltyBalance(tx storage.Tx, owner Principal, asset Asset) (Amount, error) {
	balance, _, err := storage.GetJSON[Amount](tx, keyRoyalties(owner, asset))
	return balance, err
}

func accrueRoyalty(tx storage.Tx, owner Principal, asset Asset, amount Amount) error {
	balance, err := royaltyBalance(tx, owner, asset)
	if err != nil {
		return err
	}
	return storage.SetJSON(tx, keyRoyalties(owner, asset), balance+amount)
}

func setRoyaltyBalance(tx storage.Tx, owner Principal, asset Asset, amount Amount) error {
	return storage.SetJSON(tx, keyRoyalties(owner, asset), amount)
}
