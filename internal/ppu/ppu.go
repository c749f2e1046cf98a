// Package ppu provides the pixel processing unit for the DMG and CGB: a
// scanline-mode state machine that composites background, window, and
// sprite tiles into a completed frame buffer once per V-Blank.
package ppu

import (
	"github.com/Caprini/ViboyColor-sub003/internal/interrupts"
	"github.com/Caprini/ViboyColor-sub003/internal/ppu/background"
	"github.com/Caprini/ViboyColor-sub003/internal/ppu/lcd"
	"github.com/Caprini/ViboyColor-sub003/internal/ppu/palette"
	"github.com/Caprini/ViboyColor-sub003/internal/ram"
)

const (
	// ScreenWidth is the width of the screen in pixels.
	ScreenWidth = 160
	// ScreenHeight is the height of the screen in pixels.
	ScreenHeight = 144
	// maxSpritesPerLine is the hardware limit on sprites composited into a
	// single scanline; later OAM entries beyond this are simply dropped.
	maxSpritesPerLine = 10
)

// dmaTransferChecker is satisfied by *DMA; OAM is inaccessible to the CPU
// while a transfer is underway.
type dmaTransferChecker interface {
	IsTransferring() bool
}

// PPU emulates the DMG/CGB pixel processing unit.
type PPU struct {
	Debug struct {
		SpritesDisabled    bool
		BackgroundDisabled bool
		WindowDisabled     bool
	}

	*background.Background
	*lcd.Controller
	*lcd.Status

	CurrentScanline uint8
	LYCompare       uint8
	SpritePalettes  [2]palette.Palette

	WindowX         uint8
	WindowY         uint8
	WindowYInternal uint8

	cgb      bool
	vRAMBank uint8

	oam                 *OAM
	vRAM                [2]*ram.Ram // second bank only allocated in CGB mode
	ColourPalette       *palette.CGBPalette
	ColourSpritePalette *palette.CGBPalette

	tileData [2][384]Tile
	tileMaps [2]TileMap

	irq *interrupts.Service

	PreparedFrame [ScreenHeight][ScreenWidth][3]uint8

	currentCycle       uint16
	statInterruptDelay bool
	cleared            bool
	refreshScreen      bool
	delayedTick        bool

	// DMA gates OAM access while an OAM DMA transfer is underway; wired in
	// by the caller once the system bus exists, since the DMA controller
	// needs that bus to copy bytes.
	DMA dmaTransferChecker

	// onHBlank, when set, is invoked every time the PPU enters HBlank
	// (mode 0) in CGB mode, so HDMA can advance an in-progress transfer.
	onHBlank func()
}

// New returns a PPU reset to its post-boot state. cgb selects whether the
// second VRAM bank and the CGB palette RAM are live.
func New(cgb bool, irq *interrupts.Service) *PPU {
	p := &PPU{
		Background: background.NewBackground(),
		cgb:        cgb,
		oam:        NewOAM(),
		irq:        irq,

		Controller: lcd.NewController(),
		Status:     lcd.NewStatus(),

		ColourPalette:       palette.NewCGBPallette(),
		ColourSpritePalette: palette.NewCGBPallette(),

		cleared: true,
	}
	p.vRAM[0] = ram.NewRAM(0x2000)
	if cgb {
		p.vRAM[1] = ram.NewRAM(0x2000)
	}
	for i := range p.tileMaps {
		p.tileMaps[i] = NewTileMap()
	}
	return p
}

// SetHBlankFunc registers a callback invoked on every HBlank entry, used to
// drive an HDMA transfer in progress.
func (p *PPU) SetHBlankFunc(fn func()) {
	p.onHBlank = fn
}

func (p *PPU) vramUnlocked() bool {
	return p.Mode != lcd.VRAM
}

func (p *PPU) oamUnlocked() bool {
	return p.Mode != lcd.OAM && p.Mode != lcd.VRAM
}

func (p *PPU) colorPaletteUnlocked() bool {
	return p.Mode != lcd.VRAM
}

func (p *PPU) dmaTransferring() bool {
	return p.DMA != nil && p.DMA.IsTransferring()
}

// Read services CPU/HDMA reads of VRAM (0x8000-0x9FFF) and OAM
// (0xFE00-0xFE9F); any other address returns the open-bus value 0xFF
// rather than panicking.
func (p *PPU) Read(address uint16) uint8 {
	switch {
	case address >= 0x8000 && address <= 0x9FFF:
		if !p.vramUnlocked() {
			return 0xFF
		}
		return p.vRAM[p.vRAMBank].Read(address - 0x8000)
	case address >= 0xFE00 && address <= 0xFE9F:
		if !p.oamUnlocked() || p.dmaTransferring() {
			return 0xFF
		}
		return p.oam.Read(address - 0xFE00)
	}
	return 0xFF
}

// Write services CPU/HDMA writes to VRAM and OAM; out-of-range addresses
// are silently ignored.
func (p *PPU) Write(address uint16, value uint8) {
	switch {
	case address >= 0x8000 && address <= 0x9FFF:
		p.writeVRAM(address-0x8000, value)
	case address >= 0xFE00 && address <= 0xFE9F:
		if p.oamUnlocked() && !p.dmaTransferring() {
			p.oam.Write(address-0xFE00, value)
		}
	}
}

func (p *PPU) writeVRAM(address uint16, value uint8) {
	if !p.vramUnlocked() {
		return
	}
	p.vRAM[p.vRAMBank].Write(address, value)

	switch {
	case address <= 0x17FF:
		p.updateTile(address, value)
	case address <= 0x1BFF:
		p.updateTileMap(address, 0, value)
	case address <= 0x1FFF:
		p.updateTileMap(address, 1, value)
	}
}

// updateTile keeps the decoded Tile bitplanes in sync with raw VRAM writes
// to the 0x8000-0x97FF tile data region.
func (p *PPU) updateTile(address uint16, value uint8) {
	index := address & 0x1FFE
	tileID := index >> 4
	row := (address >> 1) & 0x7
	p.tileData[p.vRAMBank][tileID][row][address%2] = value
}

// updateTileMap keeps the decoded TileMap in sync with raw VRAM writes to
// one of the two 0x9800/0x9C00 tile map regions. Bank 0 writes carry a tile
// ID; bank 1 writes (CGB only) carry the tile's attribute byte.
func (p *PPU) updateTileMap(address uint16, mapIndex uint8, value uint8) {
	offset := address - (0x1800 + uint16(mapIndex)*0x400)
	y := (offset / 32) & 0x1F
	x := offset & 0x1F
	if p.vRAMBank == 0 {
		p.tileMaps[mapIndex][y][x].TileID = value
	} else {
		p.tileMaps[mapIndex][y][x].Attributes.Write(value)
	}
}

// ReadRegister dispatches a read of one of the PPU's memory-mapped
// registers (LCDC, STAT, SCY, SCX, LY, LYC, BGP, OBP0/1, WY, WX, and on CGB
// VBK/BCPS/BCPD/OCPS/OCPD).
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address {
	case 0xFF40:
		return p.Controller.Read(address)
	case 0xFF41:
		return p.Status.Read(address) | 0x80
	case 0xFF42:
		return p.ScrollY
	case 0xFF43:
		return p.ScrollX
	case 0xFF44:
		return p.CurrentScanline
	case 0xFF45:
		return p.LYCompare
	case 0xFF47:
		return p.Palette.ToByte()
	case 0xFF48:
		return p.SpritePalettes[0].ToByte()
	case 0xFF49:
		return p.SpritePalettes[1].ToByte()
	case 0xFF4A:
		return p.WindowY
	case 0xFF4B:
		return p.WindowX
	case 0xFF4F:
		if p.cgb {
			return p.vRAMBank | 0xFE
		}
		return 0xFF
	case 0xFF68:
		if p.cgb {
			return p.ColourPalette.GetIndex()
		}
		return 0xFF
	case 0xFF69:
		if p.cgb && p.colorPaletteUnlocked() {
			return p.ColourPalette.Read()
		}
		return 0xFF
	case 0xFF6A:
		if p.cgb {
			return p.ColourSpritePalette.GetIndex()
		}
		return 0xFF
	case 0xFF6B:
		if p.cgb && p.colorPaletteUnlocked() {
			return p.ColourSpritePalette.Read()
		}
		return 0xFF
	}
	return 0xFF
}

// WriteRegister dispatches a write to one of the PPU's memory-mapped
// registers.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0xFF40:
		p.writeLCDC(value)
	case 0xFF41:
		p.Status.Write(address, value)
		if p.Enabled {
			p.checkStatInterrupts(false)
		}
	case 0xFF42:
		p.ScrollY = value
	case 0xFF43:
		p.ScrollX = value
	case 0xFF44:
		p.CurrentScanline = 0
	case 0xFF45:
		p.LYCompare = value
		if p.Enabled {
			p.checkLYC()
			p.checkStatInterrupts(false)
		}
	case 0xFF47:
		p.Palette = palette.ByteToPalette(value)
	case 0xFF48:
		p.SpritePalettes[0] = palette.ByteToPalette(value)
	case 0xFF49:
		p.SpritePalettes[1] = palette.ByteToPalette(value)
	case 0xFF4A:
		p.WindowY = value
	case 0xFF4B:
		p.WindowX = value
	case 0xFF4F:
		if p.cgb {
			p.vRAMBank = value & 0x01
		}
	case 0xFF68:
		if p.cgb {
			p.ColourPalette.SetIndex(value)
		}
	case 0xFF69:
		if p.cgb && p.colorPaletteUnlocked() {
			p.ColourPalette.Write(value)
		}
	case 0xFF6A:
		if p.cgb {
			p.ColourSpritePalette.SetIndex(value)
		}
	case 0xFF6B:
		if p.cgb && p.colorPaletteUnlocked() {
			p.ColourSpritePalette.Write(value)
		}
	}
}

// writeLCDC applies an LCDC write and handles the side effects of toggling
// the LCD enable bit: turning it off blanks the screen and resets to the
// start of frame; turning it on re-arms the line-0 mode timing quirk.
func (p *PPU) writeLCDC(value uint8) {
	wasOn := p.Enabled
	p.Controller.Write(0xFF40, value)

	if wasOn && !p.Enabled {
		p.renderBlank()
		p.Mode = lcd.HBlank
		p.CurrentScanline = 0
		p.currentCycle = 0
	} else if !wasOn && p.Enabled {
		p.checkLYC()
		p.checkStatInterrupts(false)
		p.currentCycle = 4
		p.delayedTick = true
		p.cleared = false
	}
}

// checkLYC updates the coincidence flag.
func (p *PPU) checkLYC() {
	p.Status.Coincidence = p.CurrentScanline == p.LYCompare
}

// checkStatInterrupts requests the LCD STAT interrupt on the rising edge
// of any of its four enabled sources.
func (p *PPU) checkStatInterrupts(vblankTrigger bool) {
	lyInt := p.Coincidence && p.CoincidenceInterrupt
	mode0Int := p.Mode == lcd.HBlank && p.HBlankInterrupt
	mode1Int := p.Mode == lcd.VBlank && p.VBlankInterrupt
	mode2Int := p.Mode == lcd.OAM && p.OAMInterrupt
	vBlankInt := vblankTrigger && p.Mode == lcd.OAM // vblank is requested at the end of OAM search

	if lyInt || mode0Int || mode1Int || mode2Int || vBlankInt {
		if !p.statInterruptDelay {
			p.irq.Request(interrupts.LCDFlag)
			p.statInterruptDelay = true
		}
	} else {
		p.statInterruptDelay = false
	}
}

// HasFrame reports whether a complete frame is ready in PreparedFrame.
func (p *PPU) HasFrame() bool {
	return p.refreshScreen
}

// ClearRefresh acknowledges a frame collected via HasFrame/PreparedFrame.
func (p *PPU) ClearRefresh() {
	p.refreshScreen = false
}

// hblankCycles is indexed by SCX&7: sub-tile scroll misalignment shortens
// the HBlank period by up to 8 dots, since the first fetch at VRAM entry
// must discard that many pixels of the leftmost tile. Tick lengthens mode 3
// by the same number of dots, so every line stays 456 dots long.
var hblankCycles = [8]uint16{204, 200, 200, 200, 200, 196, 196, 196}

// Tick advances the PPU by one T-cycle. The scanline-mode state machine
// only needs to act at the boundaries of each mode, so most calls are a
// cheap counter bump.
func (p *PPU) Tick() {
	if !p.Enabled {
		return
	}

	p.currentCycle++
	if !(p.currentCycle == 80 || p.currentCycle == 456 ||
		(p.currentCycle >= 172 && p.currentCycle <= 204)) {
		return
	}

	switch p.Status.Mode {
	case lcd.HBlank:
		if p.delayedTick {
			if p.currentCycle == 80 {
				p.delayedTick = false
				p.currentCycle = 0
				p.checkLYC()
				p.checkStatInterrupts(false)
				p.Mode = lcd.VRAM
				return
			}
			return
		}

		if p.currentCycle == hblankCycles[p.ScrollX&0x07] {
			p.currentCycle = 0
			p.CurrentScanline++
			p.checkLYC()

			if p.CurrentScanline == ScreenHeight {
				p.Mode = lcd.VBlank
				p.checkStatInterrupts(true)
				p.irq.Request(interrupts.VBlankFlag)
				p.refreshScreen = true
				if !p.cleared {
					p.renderBlank()
				}
			} else {
				p.Mode = lcd.OAM
				p.checkStatInterrupts(false)
			}
		}
	case lcd.VRAM:
		if p.currentCycle == 172+204-hblankCycles[p.ScrollX&0x07] {
			p.currentCycle = 0
			p.Mode = lcd.HBlank
			if p.cgb && p.onHBlank != nil {
				p.onHBlank()
			}
			p.checkStatInterrupts(false)
			p.renderScanline()
		}
	case lcd.OAM:
		if p.currentCycle == 80 {
			p.currentCycle = 0
			p.Mode = lcd.VRAM
		}
	case lcd.VBlank:
		if p.currentCycle == 456 {
			p.currentCycle = 0
			p.CurrentScanline++
			p.checkLYC()
			p.checkStatInterrupts(false)

			if p.CurrentScanline > 153 {
				p.Mode = lcd.OAM
				p.CurrentScanline = 0
				p.WindowYInternal = 0
				p.checkLYC()
				p.checkStatInterrupts(false)
			}
		}
	}
}

// renderBlank fills the frame buffer with colour 0 of the background
// palette; used both when the LCD is switched off and for the one frame
// that follows the LCD being switched back on, which real hardware never
// actually scans out.
func (p *PPU) renderBlank() {
	blank := p.Palette.Colour(0)
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			p.PreparedFrame[y][x] = blank
		}
	}
	p.cleared = true
}

// renderScanline composites the background, window, and sprite layers for
// CurrentScanline directly into PreparedFrame.
func (p *PPU) renderScanline() {
	line := p.CurrentScanline
	var bgColourNum [ScreenWidth]uint8
	var bgPriority [ScreenWidth]bool

	if (p.cgb || p.BackgroundEnabled) && !p.Debug.BackgroundDisabled {
		p.renderBackground(line, &bgColourNum, &bgPriority)
	} else {
		blank := p.Palette.Colour(0)
		for x := 0; x < ScreenWidth; x++ {
			p.PreparedFrame[line][x] = blank
		}
	}

	if p.WindowEnabled && !p.Debug.WindowDisabled {
		p.renderWindow(line, &bgColourNum, &bgPriority)
	}

	if p.SpriteEnabled && !p.Debug.SpritesDisabled {
		p.renderSprites(line, &bgColourNum, &bgPriority)
	}
}

func (p *PPU) bgMapBank() uint8 {
	if p.BackgroundTileMapAddress == 0x9C00 {
		return 1
	}
	return 0
}

func (p *PPU) winMapBank() uint8 {
	if p.WindowTileMapAddress == 0x9C00 {
		return 1
	}
	return 0
}

func (p *PPU) renderBackground(line uint8, colourNum *[ScreenWidth]uint8, prio *[ScreenWidth]bool) {
	mapIdx := p.bgMapBank()
	signed := p.UsingSignedTileData()
	y := line + p.ScrollY

	for x := uint8(0); x < ScreenWidth; x++ {
		effX := x + p.ScrollX
		entry := p.tileMaps[mapIdx][y/8][effX/8]

		bank := uint8(0)
		row := y % 8
		col := effX % 8
		if p.cgb {
			bank = entry.Attributes.VRAMBank()
			if entry.Attributes.YFlip() {
				row = 7 - row
			}
			if entry.Attributes.XFlip() {
				col = 7 - col
			}
		}

		tile := p.tileData[bank][entry.ID(signed)]
		cn := tile.ColourNumber(row, col)

		colourNum[x] = cn
		prio[x] = p.cgb && entry.Attributes.BGPriority()

		if p.cgb {
			p.PreparedFrame[line][x] = p.ColourPalette.GetColour(entry.Attributes.PaletteNumber(), cn)
		} else {
			p.PreparedFrame[line][x] = p.Palette.Colour(cn)
		}
	}
}

func (p *PPU) renderWindow(line uint8, colourNum *[ScreenWidth]uint8, prio *[ScreenWidth]bool) {
	if line < p.WindowY || p.WindowX > 166 {
		return
	}

	mapIdx := p.winMapBank()
	signed := p.UsingSignedTileData()
	y := p.WindowYInternal
	drawn := false

	for x := uint8(0); x < ScreenWidth; x++ {
		winX := int(x) - (int(p.WindowX) - 7)
		if winX < 0 {
			continue
		}
		drawn = true

		entry := p.tileMaps[mapIdx][y/8][uint8(winX)/8]

		bank := uint8(0)
		row := y % 8
		col := uint8(winX) % 8
		if p.cgb {
			bank = entry.Attributes.VRAMBank()
			if entry.Attributes.YFlip() {
				row = 7 - row
			}
			if entry.Attributes.XFlip() {
				col = 7 - col
			}
		}

		tile := p.tileData[bank][entry.ID(signed)]
		cn := tile.ColourNumber(row, col)

		colourNum[x] = cn
		prio[x] = p.cgb && entry.Attributes.BGPriority()

		if p.cgb {
			p.PreparedFrame[line][x] = p.ColourPalette.GetColour(entry.Attributes.PaletteNumber(), cn)
		} else {
			p.PreparedFrame[line][x] = p.Palette.Colour(cn)
		}
	}

	if drawn {
		p.WindowYInternal++
	}
}

// renderSprites composites up to 10 of the 40 OAM sprites intersecting
// line, in hardware priority order: on DMG the leftmost X wins ties broken
// by OAM index; on CGB priority is OAM index alone.
func (p *PPU) renderSprites(line uint8, bgColourNum *[ScreenWidth]uint8, bgPriority *[ScreenWidth]bool) {
	height := uint8(8)
	if p.SpriteSize == 16 {
		height = 16
	}

	var candidates [maxSpritesPerLine]int
	count := 0
	for i := range p.oam.Sprites {
		s := &p.oam.Sprites[i]
		ly := int16(line)
		if ly < s.Y || ly >= s.Y+int16(height) {
			continue
		}
		candidates[count] = i
		count++
		if count == maxSpritesPerLine {
			break
		}
	}

	// Draw lowest-priority sprite first so higher-priority sprites drawn
	// later correctly overwrite them.
	for a := 0; a < count; a++ {
		for b := a + 1; b < count; b++ {
			ai, bi := candidates[a], candidates[b]
			if p.higherPriority(ai, bi) {
				candidates[a], candidates[b] = candidates[b], candidates[a]
			}
		}
	}

	for i := 0; i < count; i++ {
		s := &p.oam.Sprites[candidates[i]]
		p.drawSprite(s, line, height, bgColourNum, bgPriority)
	}
}

// higherPriority reports whether the sprite at index a takes priority over
// the sprite at index b, per the rules renderSprites documents.
func (p *PPU) higherPriority(a, b int) bool {
	sa, sb := &p.oam.Sprites[a], &p.oam.Sprites[b]
	if !p.cgb && sa.X != sb.X {
		return sa.X < sb.X
	}
	return a < b
}

func (p *PPU) drawSprite(s *Sprite, line, height uint8, bgColourNum *[ScreenWidth]uint8, bgPriority *[ScreenWidth]bool) {
	row := uint8(int16(line) - s.Y)
	if s.Attributes.FlipY() {
		row = height - 1 - row
	}

	tileID := uint16(s.TileID)
	if height == 16 {
		tileID &^= 1
		if row >= 8 {
			tileID |= 1
		}
	}
	row %= 8

	bank := uint8(0)
	if p.cgb {
		bank = s.Attributes.VRAMBank()
	}
	tile := p.tileData[bank][tileID]

	for col := uint8(0); col < 8; col++ {
		screenX := int(s.X) + int(col)
		if screenX < 0 || screenX >= ScreenWidth {
			continue
		}

		srcCol := col
		if s.Attributes.FlipX() {
			srcCol = 7 - col
		}
		cn := tile.ColourNumber(row, srcCol)
		if cn == 0 {
			continue
		}

		x := uint8(screenX)
		if s.Attributes.Priority() && (bgColourNum[x] != 0 || bgPriority[x]) {
			continue
		}

		if p.cgb {
			p.PreparedFrame[line][x] = p.ColourSpritePalette.GetColour(s.Attributes.CGBPalette(), cn)
		} else {
			p.PreparedFrame[line][x] = p.SpritePalettes[s.Attributes.DMGPalette()].Colour(cn)
		}
	}
}
