package market

import "github.com/kalepail/smol-sc/internal/storage"

// GlyphStore state: content hash -> id, id -> glyph record, id -> owner,
// plus the monotonically increasing id counter. Glyph records are immutable
// once written; only the owner entry ever changes.

func glyphByID(tx storage.Tx, id GlyphID) (Glyph, bool, error) {
	return storage.GetJSON[Glyph](tx, keyGlyph(id))
}

func glyphOwner(tx storage.Tx, id GlyphID) (Principal, bool, error) {
	return storage.GetJSON[Principal](tx, keyGlyphOwner(id))
}

func setGlyphOwner(tx storage.Tx, id GlyphID, owner Principal) error {
	return storage.SetJSON(tx, keyGlyphOwner(id), owner)
}

// nextGlyphID bumps and persists the id counter. The first minted glyph
// gets id 1.
func nextGlyphID(tx storage.Tx) (GlyphID, error) {
	current, _, err := storage.GetJSON[GlyphID](tx, keyGlyphIndex())
	if err != nil {
		return 0, err
	}
	next := current + 1
	if err := storage.SetJSON(tx, keyGlyphIndex(), next); err != nil {
		return 0, err
	}
	return next, nil
}
