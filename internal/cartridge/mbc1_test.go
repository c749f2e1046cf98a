package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBankedROM builds a ROM with `banks` 0x4000-byte banks, each bank's
// first byte set to its own bank number so reads can be attributed to a
// bank unambiguously.
func newBankedROM(banks int) []byte {
	rom := make([]byte, banks*0x4000)
	for b := 0; b < banks; b++ {
		rom[b*0x4000] = byte(b)
	}
	return rom
}

func TestMBC1Bank0WriteTreatedAsBank1(t *testing.T) {
	rom := newBankedROM(8)
	m := newMBC1(rom, &Header{RAMSize: 0})

	m.Write(0x2000, 0x00) // select bank 0
	assert.Equal(t, byte(1), m.Read(0x4000), "bank register 0 reads back as bank 1")
}

func TestMBC1SwitchableBankSelection(t *testing.T) {
	rom := newBankedROM(8)
	m := newMBC1(rom, &Header{RAMSize: 0})

	m.Write(0x2000, 0x05)
	assert.Equal(t, byte(5), m.Read(0x4000))
}

func TestMBC1Bank2ExtendsROMBankBeyond32(t *testing.T) {
	rom := newBankedROM(128)
	m := newMBC1(rom, &Header{RAMSize: 0})

	m.Write(0x2000, 0x03) // bank1 = 3
	m.Write(0x4000, 0x02) // bank2 = 2 -> bank = (2<<5)|3 = 67
	assert.Equal(t, byte(67), m.Read(0x4000))
}

func TestMBC1AdvancedModeBanksRAMAndLowerROMWindow(t *testing.T) {
	rom := newBankedROM(128)
	m := newMBC1(rom, &Header{RAMSize: 32 * 1024})
	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0x4000, 0x01) // bank2 = 1
	m.Write(0x6000, 0x01) // advanced banking mode

	require.Equal(t, byte(1<<5), m.Read(0x0000), "mode 1 banks the 0x0000-0x3FFF window too")

	m.Write(0xA000, 0x42)
	assert.Equal(t, byte(0x42), m.Read(0xA000), "mode 1 selects RAM bank 1 from bank2")
}

func TestMBC1RAMDisabledReadsOpenBus(t *testing.T) {
	rom := newBankedROM(2)
	m := newMBC1(rom, &Header{RAMSize: 8 * 1024})
	m.Write(0xA000, 0x99) // RAM not enabled: write dropped
	assert.Equal(t, byte(0xFF), m.Read(0xA000))
}

func TestMBC1RAMEnableRequiresLowNibble0A(t *testing.T) {
	rom := newBankedROM(2)
	m := newMBC1(rom, &Header{RAMSize: 8 * 1024})
	m.Write(0x0000, 0x0F) // wrong value: RAM stays disabled
	m.Write(0xA000, 0x55)
	assert.Equal(t, byte(0xFF), m.Read(0xA000))

	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x55)
	assert.Equal(t, byte(0x55), m.Read(0xA000))
}

func TestMBC1ROMBankWrapsModuloActualBankCount(t *testing.T) {
	rom := newBankedROM(4) // smaller cartridge than the 5-bit register allows
	m := newMBC1(rom, &Header{RAMSize: 0})
	m.Write(0x2000, 0x1F) // bank1 = 31, far beyond the 4 banks present
	assert.Equal(t, byte(31%4), m.Read(0x4000))
}
