package testutil

import "github.com/kalepail/smol-sc/internal/market"

// StandardWidth is the width used by the full-size test glyph.
const StandardWidth = uint32(45)

// StandardLegend is a two-entry palette: index 0 maps to pure red, index 1 to
// pure green.
func StandardLegend() []uint32 {
	return []uint32{0xFF0000, 0x00FF00}
}

// AlternatingPixels returns n palette indices alternating 0, 1, 0, 1, ...
// With a two-entry legend this puts ceil(n/2) pixels on index 0 and
// floor(n/2) on index 1.
func AlternatingPixels(n int) []byte {
	pixels := make([]byte, n)
	for i := range pixels {
		pixels[i] = byte(i % 2)
	}
	return pixels
}

// FullGlyphPixels returns the largest allowed pixel buffer, alternating
// between the two legend entries.
func FullGlyphPixels() []byte {
	return AlternatingPixels(market.MaxGlyphPixels)
}
