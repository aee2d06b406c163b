package market

import "github.com/kalepail/smol-sc/internal/storage"

// OfferBook state. Two sorted sub-tables per glyph: the glyph's own sell
// offers (ordered by the offer total order) and, per (glyph, asset, amount),
// the queue of escrowed buyers (ordered by principal). Absent keys read as
// empty sets; a set emptied by a match is persisted empty rather than
// removed, matching the original book-keeping.

func sellGlyphOffers(tx storage.Tx, id GlyphID) ([]OfferBuy, error) {
	offers, _, err := storage.GetJSON[[]OfferBuy](tx, keyOfferSellGlyph(id))
	return offers, err
}

func setSellGlyphOffers(tx storage.Tx, id GlyphID, offers []OfferBuy) error {
	return storage.SetJSON(tx, keyOfferSellGlyph(id), offers)
}

func removeSellGlyphOffers(tx storage.Tx, id GlyphID) error {
	return tx.Remove(keyOfferSellGlyph(id))
}

func assetOfferQueue(tx storage.Tx, id GlyphID, asset Asset, amount Amount) ([]Principal, error) {
	queue, _, err := storage.GetJSON[[]Principal](tx, keyOfferSellAsset(id, asset, amount))
	return queue, err
}

func setAssetOfferQueue(tx storage.Tx, id GlyphID, asset Asset, amount Amount, queue []Principal) error {
	return storage.SetJSON(tx, keyOfferSellAsset(id, asset, amount), queue)
}
