package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDMABus is a flat 64KiB address space standing in for the system bus
// OAM DMA copies from.
type fakeDMABus struct {
	mem [0x10000]uint8
}

func (b *fakeDMABus) Read(address uint16) uint8 {
	return b.mem[address]
}

func (b *fakeDMABus) Write(address uint16, value uint8) {
	b.mem[address] = value
}

func TestDMACopies160BytesOverTiming(t *testing.T) {
	bus := &fakeDMABus{}
	for i := 0; i < 160; i++ {
		bus.mem[0xC000+i] = byte(i)
	}
	d := NewDMA(bus)

	d.Write(0, 0xC0) // source page 0xC000
	require.False(t, d.IsTransferring(), "a fresh transfer is not active until its startup delay ends")

	// the first 4 T-cycles are a startup delay: no bytes land yet.
	for i := 0; i < 4; i++ {
		d.Tick()
	}
	assert.Equal(t, byte(0), bus.mem[0xFE00], "still warming up")

	// one byte lands roughly every 4 T-cycles after the delay; run to
	// completion (the controller disables itself once its internal timer
	// passes 160*4+4).
	for i := 0; i < 641; i++ {
		d.Tick()
	}

	for i := 0; i < 160; i++ {
		assert.Equal(t, byte(i), bus.mem[0xFE00+i], "byte %d copied into OAM", i)
	}
	assert.False(t, d.IsTransferring(), "transfer completes after 160 blocks")
}

func TestDMARestartingWhileAlreadyTransferring(t *testing.T) {
	bus := &fakeDMABus{}
	d := NewDMA(bus)

	d.Write(0, 0xC0)
	d.Tick()
	d.Write(0, 0xD0) // restart mid-transfer
	assert.True(t, d.IsTransferring(), "a restart keeps the transfer flagged active")
}

func TestDMAReadReturnsLastWrittenSourcePage(t *testing.T) {
	bus := &fakeDMABus{}
	d := NewDMA(bus)
	d.Write(0, 0x9F)
	assert.Equal(t, uint8(0x9F), d.Read(0))
}

func TestDMASourceAboveOAMWrapsBelowIt(t *testing.T) {
	bus := &fakeDMABus{}
	for i := 0; i < 8; i++ {
		bus.mem[0xDE00+i] = byte(0x40 + i)
	}
	d := NewDMA(bus)

	d.Write(0, 0xFE) // source 0xFE00: reading OAM from itself is redirected -0x2000
	for i := 0; i < 4+8*4; i++ {
		d.Tick()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, byte(0x40+i), bus.mem[0xFE00+i], "byte %d redirected from 0xDE00, not read back from OAM", i)
	}
}
