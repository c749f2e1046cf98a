// Package mmu provides the memory management unit binding the CPU to
// every other component's address space: cartridge ROM/RAM, work RAM,
// VRAM/OAM (via the PPU), and the full I/O register page.
package mmu

import (
	"github.com/Caprini/ViboyColor-sub003/internal/boot"
	"github.com/Caprini/ViboyColor-sub003/internal/cartridge"
	"github.com/Caprini/ViboyColor-sub003/internal/interrupts"
	"github.com/Caprini/ViboyColor-sub003/internal/joypad"
	"github.com/Caprini/ViboyColor-sub003/internal/ppu"
	"github.com/Caprini/ViboyColor-sub003/internal/ram"
	"github.com/Caprini/ViboyColor-sub003/internal/serial"
	"github.com/Caprini/ViboyColor-sub003/internal/timer"
	"github.com/Caprini/ViboyColor-sub003/pkg/log"
)

// IOBus is the minimal interface satisfied by any device the MMU
// dispatches a register range to.
type IOBus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// speedSwitcher lets the MMU arm and read back the CGB double-speed
// switch without importing the cpu package (which already imports mmu).
type speedSwitcher interface {
	RequestSpeedSwitch()
	DoubleSpeed() bool
}

// MMU is the Game Boy's 64KiB address space router. It owns work RAM and
// the zero-page RAM directly, and holds references to every other
// component it forwards reads and writes to.
type MMU struct {
	biosFinished bool
	bootROM      *boot.ROM
	cgb          bool

	Cart *cartridge.Cartridge

	wram *WRAM
	zram *ram.Ram

	HDMA *HDMA

	ppu    *ppu.PPU
	dma    *ppu.DMA
	timer  *timer.Controller
	serial *serial.Controller
	joypad *joypad.Controller
	irq    *interrupts.Service

	speed speedSwitcher

	key0 uint8
	key1 uint8

	Log log.Logger
}

// NewMMU wires an MMU to every peripheral it routes I/O to. bootROM may be
// nil, in which case the cartridge is mapped from address 0 immediately.
func NewMMU(
	cart *cartridge.Cartridge,
	bootROM *boot.ROM,
	irq *interrupts.Service,
	tmr *timer.Controller,
	ser *serial.Controller,
	jp *joypad.Controller,
	p *ppu.PPU,
	logger log.Logger,
) *MMU {
	header := cart.Header()
	m := &MMU{
		bootROM:      bootROM,
		biosFinished: bootROM == nil,
		cgb:          header.GameboyColor(),

		Cart: cart,
		wram: NewWRAM(),
		zram: ram.NewRAM(0x80),

		irq:    irq,
		timer:  tmr,
		serial: ser,
		joypad: jp,
		ppu:    p,

		Log: logger,
	}
	m.HDMA = NewHDMA(m)
	return m
}

// SetDMA wires the OAM DMA controller; it is constructed after the MMU
// since it uses the MMU itself as its source/destination bus.
func (m *MMU) SetDMA(dma *ppu.DMA) {
	m.dma = dma
}

// IsGBC reports whether the running cartridge is a CGB title.
func (m *MMU) IsGBC() bool {
	return m.cgb
}

// SetSpeedSwitcher wires the CPU's double-speed toggle so that writes to
// KEY1 (0xFF4D) can arm it.
func (m *MMU) SetSpeedSwitcher(s speedSwitcher) {
	m.speed = s
}

// Read returns the byte at address. Every branch of the address space
// returns a value — there is no invalid address, only open bus (0xFF).
func (m *MMU) Read(address uint16) uint8 {
	switch {
	case address <= 0x7FFF:
		if !m.biosFinished && m.bootROM != nil {
			if address < 0x100 {
				return m.bootROM.Read(address)
			}
			if m.cgb && address >= 0x200 && address < 0x900 {
				return m.bootROM.Read(address)
			}
		}
		return m.Cart.Read(address)
	case address <= 0x9FFF:
		return m.ppu.Read(address)
	case address <= 0xBFFF:
		return m.Cart.Read(address)
	case address <= 0xFDFF:
		return m.wram.Read(address)
	case address <= 0xFE9F:
		return m.ppu.Read(address)
	case address <= 0xFEFF:
		if m.cgb {
			return 0x00
		}
		return 0xFF
	case address <= 0xFF7F:
		return m.readIO(address)
	case address <= 0xFFFE:
		return m.zram.Read(address - 0xFF80)
	default: // 0xFFFF
		return m.irq.Read(address)
	}
}

// Write writes value to address. Writes to unmapped or read-only regions
// are silently dropped rather than rejected.
func (m *MMU) Write(address uint16, value uint8) {
	switch {
	case address <= 0x7FFF:
		m.Cart.Write(address, value)
	case address <= 0x9FFF:
		m.ppu.Write(address, value)
	case address <= 0xBFFF:
		m.Cart.Write(address, value)
	case address <= 0xFDFF:
		m.wram.Write(address, value)
	case address <= 0xFE9F:
		m.ppu.Write(address, value)
	case address <= 0xFEFF:
		// unusable memory
	case address <= 0xFF7F:
		m.writeIO(address, value)
	case address <= 0xFFFE:
		m.zram.Write(address-0xFF80, value)
	default: // 0xFFFF
		m.irq.Write(address, value)
	}
}

func (m *MMU) readIO(address uint16) uint8 {
	switch address {
	case 0xFF00:
		return m.joypad.Read()
	case 0xFF01:
		return m.serial.SB()
	case 0xFF02:
		return m.serial.SC()
	case 0xFF04:
		return m.timer.Div()
	case 0xFF05:
		return m.timer.TIMA()
	case 0xFF06:
		return m.timer.TMA()
	case 0xFF07:
		return m.timer.TAC()
	case 0xFF0F:
		return m.irq.Read(address)
	case 0xFF46:
		return m.dma.Read(address)
	case 0xFF4C:
		if m.cgb {
			return m.key0
		}
		return 0xFF
	case 0xFF4D:
		var v uint8 = 0x7E
		if m.speed != nil && m.speed.DoubleSpeed() {
			v |= 0x80
		}
		if !m.cgb {
			v = 0xFF
		}
		return v
	case 0xFF50:
		return 0xFF
	case 0xFF51, 0xFF52, 0xFF53, 0xFF54, 0xFF55:
		return m.HDMA.Read(address)
	case 0xFF70:
		if m.cgb {
			return m.wram.Bank()
		}
		return 0xFF
	case 0xFF40, 0xFF41, 0xFF42, 0xFF43, 0xFF44, 0xFF45, 0xFF47, 0xFF48, 0xFF49, 0xFF4A, 0xFF4B,
		0xFF4F, 0xFF68, 0xFF69, 0xFF6A, 0xFF6B:
		return m.ppu.ReadRegister(address)
	}
	// sound registers (0xFF10-0xFF3F) and any other unmapped I/O: no APU
	// is implemented, so these read back as open bus.
	return 0xFF
}

func (m *MMU) writeIO(address uint16, value uint8) {
	switch address {
	case 0xFF00:
		m.joypad.Write(value)
	case 0xFF01:
		m.serial.SetSB(value)
	case 0xFF02:
		m.serial.SetSC(value)
	case 0xFF04:
		m.timer.ResetDiv()
	case 0xFF05:
		m.timer.SetTIMA(value)
	case 0xFF06:
		m.timer.SetTMA(value)
	case 0xFF07:
		m.timer.SetTAC(value)
	case 0xFF0F:
		m.irq.Write(address, value)
	case 0xFF46:
		m.dma.Write(address, value)
	case 0xFF4C:
		if m.cgb {
			m.key0 = value & 0x0F
		}
	case 0xFF4D:
		if m.cgb {
			m.key1 = value & 0x01
			if value&0x01 != 0 && m.speed != nil {
				m.speed.RequestSpeedSwitch()
			}
		}
	case 0xFF50:
		m.biosFinished = true
	case 0xFF51, 0xFF52, 0xFF53, 0xFF54, 0xFF55:
		m.HDMA.Write(address, value)
	case 0xFF70:
		if m.cgb {
			m.wram.SetBank(value)
		}
	case 0xFF40, 0xFF41, 0xFF42, 0xFF43, 0xFF44, 0xFF45, 0xFF47, 0xFF48, 0xFF49, 0xFF4A, 0xFF4B,
		0xFF4F, 0xFF68, 0xFF69, 0xFF6A, 0xFF6B:
		m.ppu.WriteRegister(address, value)
	}
	// sound registers and any other unmapped I/O are no-ops: no APU is
	// implemented.
}
