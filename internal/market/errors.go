package market

import "errors"

// Error taxonomy surfaced to callers. Every operation either fully succeeds
// or returns exactly one of these (or the authorizer's error); nothing is
// retried internally.
var (
	// Configuration errors.
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")

	// Input-domain errors.
	ErrColorOutOfRange = errors.New("color out of range")
	ErrGlyphTooBig     = errors.New("glyph too big")

	// State-conflict errors.
	ErrColorAlreadyClaimed = errors.New("color already claimed")
	ErrGlyphAlreadyMinted  = errors.New("glyph already minted")
	ErrOfferDuplicate      = errors.New("offer duplicate")

	// Not-found errors.
	ErrColorNotClaimed    = errors.New("color not claimed")
	ErrGlyphNotMinted     = errors.New("glyph not minted")
	ErrOfferNotFound      = errors.New("offer not found")
	ErrNoRoyaltiesToClaim = errors.New("no royalties to claim")
)
