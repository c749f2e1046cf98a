package gameboy

import (
	"github.com/Caprini/ViboyColor-sub003/internal/boot"
	"github.com/Caprini/ViboyColor-sub003/pkg/log"
)

// Debug sets the CPU's Debug flag, which makes the LD B,B opcode set
// CPU.DebugBreakpoint. An illegal opcode freezes the CPU whether or not
// this option is given.
func Debug() Opt {
	return func(gb *GameBoy) {
		gb.debug = true
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger log.Logger) Opt {
	return func(gb *GameBoy) {
		gb.Logger = logger
	}
}

// WithBootROM attaches a boot ROM, which is executed from 0x0000 instead
// of jumping straight to the cartridge's entry point at 0x0100.
func WithBootROM(rom []byte) Opt {
	return func(gb *GameBoy) {
		b, err := boot.LoadBootROM(rom)
		if err != nil {
			gb.Errorf("boot rom: %v", err)
			return
		}
		gb.bootROM = b
	}
}

// NoBios is an alias for applying no boot ROM option at all; it exists so
// call sites can be explicit about skipping the boot sequence.
func NoBios() Opt {
	return func(gb *GameBoy) {}
}
