package market

import (
	"encoding/hex"
	"strconv"

	"github.com/kalepail/smol-sc/internal/storage"
)

// Key prefixes: one logical table per prefix.
const (
	prefixAdmin        = "admin"
	prefixFeeAsset     = "fee_asset"
	prefixFeeRecipient = "fee_recipient"
	prefixColorFee     = "color_claim_fee"
	prefixColorRate    = "color_owner_royalty_rate"
	prefixAuthorRate   = "glyph_author_royalty_rate"
	prefixGlyphIndex   = "glyph_index"

	prefixColorOwner     = "color_owner"      // color -> owner
	prefixGlyph          = "glyph"            // glyph id -> glyph
	prefixGlyphHash      = "glyph_hash"       // content hash -> glyph id
	prefixGlyphOwner     = "glyph_owner"      // glyph id -> owner
	prefixOfferSellGlyph = "offer_sell_glyph" // glyph id -> sorted []OfferBuy
	prefixOfferSellAsset = "offer_sell_asset" // glyph id, asset, amount -> sorted []Principal
	prefixRoyalties      = "royalties"        // owner, asset -> amount
)

func keyAdmin() storage.Key        { return storage.NewKey(prefixAdmin) }
func keyFeeAsset() storage.Key     { return storage.NewKey(prefixFeeAsset) }
func keyFeeRecipient() storage.Key { return storage.NewKey(prefixFeeRecipient) }
func keyColorFee() storage.Key     { return storage.NewKey(prefixColorFee) }
func keyColorRate() storage.Key    { return storage.NewKey(prefixColorRate) }
func keyAuthorRate() storage.Key   { return storage.NewKey(prefixAuthorRate) }
func keyGlyphIndex() storage.Key   { return storage.NewKey(prefixGlyphIndex) }

func keyColorOwner(color uint32) storage.Key {
	return storage.NewKey(prefixColorOwner, strconv.FormatUint(uint64(color), 10))
}

func keyGlyph(id GlyphID) storage.Key {
	return storage.NewKey(prefixGlyph, strconv.FormatUint(uint64(id), 10))
}

func keyGlyphHash(hash [32]byte) storage.Key {
	return storage.NewKey(prefixGlyphHash, hex.EncodeToString(hash[:]))
}

func keyGlyphOwner(id GlyphID) storage.Key {
	return storage.NewKey(prefixGlyphOwner, strconv.FormatUint(uint64(id), 10))
}

func keyOfferSellGlyph(id GlyphID) storage.Key {
	return storage.NewKey(prefixOfferSellGlyph, strconv.FormatUint(uint64(id), 10))
}

func keyOfferSellAsset(id GlyphID, asset Asset, amount Amount) storage.Key {
	return storage.NewKey(prefixOfferSellAsset,
		strconv.FormatUint(uint64(id), 10),
		string(asset),
		strconv.FormatInt(amount, 10),
	)
}

func keyRoyalties(owner Principal, asset Asset) storage.Key {
	return storage.NewKey(prefixRoyalties, string(owner), string(asset))
}
