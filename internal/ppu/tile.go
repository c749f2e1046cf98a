package ppu

// Tile holds the raw two-bits-per-pixel bitplane data for one 8x8 tile, one
// row at a time: row[0] is the low bitplane byte, row[1] the high bitplane.
type Tile [8][2]uint8

// ColourNumber decodes the 2-bit source colour of pixel x (0 = leftmost)
// within the given row.
func (t *Tile) ColourNumber(row, x uint8) uint8 {
	bit := 7 - x
	lo := (t[row][0] >> bit) & 1
	hi := (t[row][1] >> bit) & 1
	return lo | hi<<1
}

// TileAttributes decodes a CGB tile-map attribute byte (only meaningful in
// CGB mode; DMG tile-map entries carry a zero-value TileAttributes).
type TileAttributes struct {
	value uint8
}

func (a *TileAttributes) Write(v uint8) { a.value = v }

func (a TileAttributes) PaletteNumber() uint8 { return a.value & 0x07 }
func (a TileAttributes) VRAMBank() uint8      { return (a.value >> 3) & 0x01 }
func (a TileAttributes) XFlip() bool          { return a.value&0x20 != 0 }
func (a TileAttributes) YFlip() bool          { return a.value&0x40 != 0 }
func (a TileAttributes) BGPriority() bool     { return a.value&0x80 != 0 }

// TileMapEntry is one cell of a 32x32 background/window tile map.
type TileMapEntry struct {
	TileID     uint8
	Attributes TileAttributes
}

// ID resolves the entry's tile map byte to a tile index into tileData,
// applying the LCDC-selected signed/unsigned addressing mode.
func (e TileMapEntry) ID(signed bool) uint16 {
	if !signed {
		return uint16(e.TileID)
	}
	return uint16(256 + int16(int8(e.TileID)))
}

// TileMap is one of the two 32x32 background/window tile maps.
type TileMap [32][32]TileMapEntry

func NewTileMap() TileMap {
	return TileMap{}
}
