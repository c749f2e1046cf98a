package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestROM builds a minimal well-formed ROM of the given size with a
// parseable header: cartridgeType at 0x147, the ROM-size exponent at 0x148
// (computed from size), and ramSizeCode at 0x149.
func newTestROM(size int, cartridgeType Type, ramSizeCode uint8) []byte {
	rom := make([]byte, size)
	rom[0x147] = byte(cartridgeType)
	for exp := uint8(0); exp < 8; exp++ {
		if (32*1024)*(1<<exp) == size {
			rom[0x148] = exp
			break
		}
	}
	rom[0x149] = ramSizeCode
	copy(rom[0x134:0x144], []byte("TESTGAME"))
	return rom
}

func TestNewCartridgeRejectsShortROM(t *testing.T) {
	_, err := NewCartridge(make([]byte, 0x10))
	require.Error(t, err)
}

func TestNewCartridgeSelectsMBCByHeaderType(t *testing.T) {
	rom := newTestROM(128*1024, MBC1RAM, 0x02)
	c, err := NewCartridge(rom)
	require.NoError(t, err)

	_, isMBC1 := c.mbc.(*mbc1)
	assert.True(t, isMBC1)
	assert.Equal(t, MBC1RAM, c.Header().CartridgeType)
}

func TestNewCartridgeDefaultsToNoMBC(t *testing.T) {
	rom := newTestROM(32*1024, ROM, 0x00)
	c, err := NewCartridge(rom)
	require.NoError(t, err)

	_, isNoMBC := c.mbc.(*noMBC)
	assert.True(t, isNoMBC)
}

func TestCartridgeTitleTrimsToHeaderWindow(t *testing.T) {
	rom := newTestROM(32*1024, ROM, 0x00)
	c, err := NewCartridge(rom)
	require.NoError(t, err)
	assert.Contains(t, c.Title(), "TESTGAME")
}

func TestCartridgeRAMRoundTripsThroughLoadRAM(t *testing.T) {
	rom := newTestROM(128*1024, MBC1RAMBATT, 0x03) // 32KiB RAM
	c, err := NewCartridge(rom)
	require.NoError(t, err)

	saved := make([]byte, len(c.RAM()))
	saved[10] = 0xAB
	c.LoadRAM(saved)
	assert.Equal(t, byte(0xAB), c.RAM()[10])
}

func TestCartridgeFilenameIsStableForIdenticalROMs(t *testing.T) {
	rom := newTestROM(32*1024, ROM, 0x00)
	c1, err := NewCartridge(rom)
	require.NoError(t, err)
	c2, err := NewCartridge(append([]byte(nil), rom...))
	require.NoError(t, err)
	assert.Equal(t, c1.Filename(), c2.Filename())
}
