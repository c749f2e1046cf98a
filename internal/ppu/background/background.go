// Package background holds the scroll position and DMG palette shared by
// the background and window layers.
package background

import "github.com/Caprini/ViboyColor-sub003/internal/ppu/palette"

// Background represents the 256x256 tile-map scroll window and its DMG
// palette (BGP). The 32x32 tile maps themselves live in the PPU's VRAM.
type Background struct {
	ScrollY uint8
	ScrollX uint8
	Palette palette.Palette
}

// NewBackground returns a Background with the scroll position at the
// origin; Palette is left zero-valued until BGP is first written.
func NewBackground() *Background {
	return &Background{}
}
