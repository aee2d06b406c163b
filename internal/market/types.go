// Package market implements the marketplace core: the color registry, the
// content-addressed glyph store, the sorted offer books with their matching
// algorithm, and the proportional royalty split.
package market

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"
)

// Principal is an externally authenticated account identity. The core never
// creates or destroys principals; it only records ownership and balances
// against them.
type Principal string

// Asset identifies a fungible asset contract/address.
type Asset string

// GlyphID is the monotonically increasing public identifier of a glyph.
// IDs start at 1; the content hash is kept as a secondary index only.
type GlyphID uint32

// Amount is a fungible asset amount in the asset's smallest unit.
type Amount = int64

// MaxGlyphPixels bounds a glyph's pixel data (45x45).
const MaxGlyphPixels = 45 * 45

// MaxColor is the largest claimable 24-bit color value.
const MaxColor = 0xFFFFFF

// Glyph is an immutable pixel-art artifact. Pixels hold palette indices;
// Legend maps a palette index to a full 24-bit color value.
type Glyph struct {
	Author Principal `json:"author"`
	Pixels []byte    `json:"pixels"`
	Legend []uint32  `json:"legend"`
	Width  uint32    `json:"width"`
}

// GlyphHash is the content hash of (pixels, width): identical pixel/width
// pairs always hash to the same identity, which is what makes minting
// idempotent-by-rejection.
func GlyphHash(pixels []byte, width uint32) [32]byte {
	h := sha256.New()
	h.Write(pixels)
	var wb [4]byte
	binary.BigEndian.PutUint32(wb[:], width)
	h.Write(wb[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// OfferKind tags the variant of an OfferBuy.
type OfferKind uint8

const (
	// OfferAsset asks for a fungible (asset, amount) pair.
	OfferAsset OfferKind = iota
	// OfferGlyph asks for a specific other glyph.
	OfferGlyph
)

// OfferBuy is the "buy" side of a sell-glyph offer: either a specific
// (asset, amount) pair or a specific glyph.
type OfferBuy struct {
	Kind   OfferKind `json:"kind"`
	Asset  Asset     `json:"asset,omitempty"`
	Amount Amount    `json:"amount,omitempty"`
	Glyph  GlyphID   `json:"glyph,omitempty"`
}

// BuyAsset builds an asset-variant OfferBuy.
func BuyAsset(asset Asset, amount Amount) OfferBuy {
	return OfferBuy{Kind: OfferAsset, Asset: asset, Amount: amount}
}

// BuyGlyph builds a glyph-variant OfferBuy.
func BuyGlyph(id GlyphID) OfferBuy {
	return OfferBuy{Kind: OfferGlyph, Glyph: id}
}

// compareOffers defines the total order over sell-glyph offers: variant tag
// first (asset offers sort before glyph offers), then payload fields. The
// order is explicit rather than structural so it stays portable and
// auditable.
func compareOffers(a, b OfferBuy) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case OfferAsset:
		if c := strings.Compare(string(a.Asset), string(b.Asset)); c != 0 {
			return c
		}
		switch {
		case a.Amount < b.Amount:
			return -1
		case a.Amount > b.Amount:
			return 1
		}
		return 0
	default:
		switch {
		case a.Glyph < b.Glyph:
			return -1
		case a.Glyph > b.Glyph:
			return 1
		}
		return 0
	}
}

// comparePrincipals orders the buyers queued on an asset-sell offer. The
// head of this order is serviced first: a deliberate, documented tie-break
// by principal identifier, not first-come-first-served.
func comparePrincipals(a, b Principal) int {
	return strings.Compare(string(a), string(b))
}

// AuthorizationProvider proves that the current invocation acts with the
// named principal's authority. A returned error aborts the whole operation
// before any mutation becomes visible.
type AuthorizationProvider interface {
	RequireAuth(ctx context.Context, principal Principal) error
}

// AssetTransferService executes fungible asset transfers: fee payment,
// escrow, refund and royalty payout. The marketplace never assumes more than
// this narrow interface.
type AssetTransferService interface {
	Transfer(ctx context.Context, asset Asset, from, to Principal, amount Amount) error
}
