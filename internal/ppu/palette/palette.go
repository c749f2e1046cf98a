// Package palette provides the DMG 4-shade and CGB 32768-colour palette
// representations used by the PPU when compositing a scanline.
package palette

// Palette is a DMG-style palette register (BGP/OBP0/OBP1): four 2-bit shade
// indices, one per source colour number 0-3.
type Palette [4]uint8

// shades is the default DMG colour ramp, indexed by shade 0-3: plain
// 4-level grayscale, white through black.
var shades = Greyscale

// Greyscale and Green are the two selectable DMG colour ramps; Greyscale
// is the default assigned to shades.
var (
	Greyscale = [4][3]uint8{
		{0xFF, 0xFF, 0xFF},
		{0xCC, 0xCC, 0xCC},
		{0x77, 0x77, 0x77},
		{0x00, 0x00, 0x00},
	}
	Green = [4][3]uint8{
		{0x9B, 0xBC, 0x0F},
		{0x8B, 0xAC, 0x0F},
		{0x30, 0x62, 0x30},
		{0x0F, 0x38, 0x0F},
	}
)

// ByteToPalette decodes a BGP/OBP register write into its four shade
// indices, packed two bits per colour number starting at bit 0.
func ByteToPalette(v uint8) Palette {
	return Palette{v & 0x3, (v >> 2) & 0x3, (v >> 4) & 0x3, (v >> 6) & 0x3}
}

// ToByte re-packs the palette into the form read back from BGP/OBP.
func (p Palette) ToByte() uint8 {
	return p[0] | p[1]<<2 | p[2]<<4 | p[3]<<6
}

// Colour returns the RGB triple for a source colour number 0-3.
func (p Palette) Colour(colourNumber uint8) [3]uint8 {
	return shades[p[colourNumber&0x3]]
}
