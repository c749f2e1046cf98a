package mmu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus is a flat 64KiB address space standing in for the rest of the
// system bus HDMA copies between.
type fakeBus struct {
	mem [0x10000]uint8
}

func (b *fakeBus) Read(address uint16) uint8 {
	return b.mem[address]
}

func (b *fakeBus) Write(address uint16, value uint8) {
	b.mem[address] = value
}

func TestHDMAGeneralPurposeTransferCopiesOneBytePerTick(t *testing.T) {
	bus := &fakeBus{}
	for i := 0; i < 16; i++ {
		bus.mem[0x1000+uint16(i)] = byte(0x10 + i)
	}
	h := NewHDMA(bus)

	h.Write(0xFF51, 0x10) // source high
	h.Write(0xFF52, 0x00) // source low
	h.Write(0xFF53, 0x00) // destination high (VRAM-relative)
	h.Write(0xFF54, 0x00) // destination low
	h.Write(0xFF55, 0x00) // GDMA mode, length 1 block (16 bytes)

	require.True(t, h.IsCopying(), "GDMA starts copying immediately on the FF55 write")

	for i := 0; i < 16; i++ {
		h.Tick()
	}

	assert.False(t, h.IsCopying(), "a single 16-byte block completes the transfer")
	for i := 0; i < 16; i++ {
		assert.Equal(t, byte(0x10+i), bus.mem[0x8000+i], "byte %d copied into VRAM", i)
	}
}

func TestHDMAHBlankModeStopsCopyingAfterEachBlock(t *testing.T) {
	bus := &fakeBus{}
	h := NewHDMA(bus)

	h.Write(0xFF51, 0x20)
	h.Write(0xFF52, 0x00)
	h.Write(0xFF53, 0x00)
	h.Write(0xFF54, 0x00)
	h.Write(0xFF55, 0x81) // H-Blank mode, 2 blocks

	require.False(t, h.IsCopying(), "H-Blank HDMA waits for the next HBlank before copying")

	h.SetHBlank()
	require.True(t, h.IsCopying())

	for i := 0; i < 16; i++ {
		h.Tick()
	}
	assert.False(t, h.IsCopying(), "copying pauses again once one block has been moved")

	h.SetHBlank()
	require.True(t, h.IsCopying())
	for i := 0; i < 16; i++ {
		h.Tick()
	}
	assert.False(t, h.IsCopying())
}

func TestHDMAWriteFF55DuringActiveHBlankTransferStopsIt(t *testing.T) {
	bus := &fakeBus{}
	h := NewHDMA(bus)

	h.Write(0xFF51, 0x20)
	h.Write(0xFF52, 0x00)
	h.Write(0xFF53, 0x00)
	h.Write(0xFF54, 0x00)
	h.Write(0xFF55, 0x83) // H-Blank mode, 4 blocks
	h.SetHBlank()
	require.True(t, h.IsCopying())

	h.Write(0xFF55, 0x00) // bit 7 clear while transferring: stop
	assert.False(t, h.transferring)
}

func TestHDMAWriteFF55DuringActiveHBlankTransferRestartsWithNewLength(t *testing.T) {
	bus := &fakeBus{}
	h := NewHDMA(bus)

	h.Write(0xFF51, 0x20)
	h.Write(0xFF52, 0x00)
	h.Write(0xFF53, 0x00)
	h.Write(0xFF54, 0x00)
	h.Write(0xFF55, 0x83) // H-Blank mode, 4 blocks
	h.SetHBlank()

	h.Write(0xFF55, 0x85) // still H-Blank mode (bit 7 set): restart with 6 blocks
	assert.Equal(t, uint8(6), h.blocks)
	assert.True(t, h.transferring)
}

func TestHDMARegisterWritesMaskToHardwareBitWidths(t *testing.T) {
	bus := &fakeBus{}
	h := NewHDMA(bus)

	h.Write(0xFF51, 0xFF)
	h.Write(0xFF52, 0xFF) // low nibble of source is always 0
	assert.Equal(t, uint16(0xFFF0), h.source)

	h.Write(0xFF53, 0xFF) // only the low 5 bits of the destination high byte count
	h.Write(0xFF54, 0xFF)
	assert.Equal(t, uint16(0x1FF0), h.destination)
}
