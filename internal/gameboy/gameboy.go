// Package gameboy wires the CPU, PPU, and every peripheral into a single
// runnable unit, and drives it one frame at a time.
package gameboy

import (
	"time"

	"github.com/Caprini/ViboyColor-sub003/internal/boot"
	"github.com/Caprini/ViboyColor-sub003/internal/cartridge"
	"github.com/Caprini/ViboyColor-sub003/internal/cpu"
	"github.com/Caprini/ViboyColor-sub003/internal/interrupts"
	"github.com/Caprini/ViboyColor-sub003/internal/joypad"
	"github.com/Caprini/ViboyColor-sub003/internal/mmu"
	"github.com/Caprini/ViboyColor-sub003/internal/ppu"
	"github.com/Caprini/ViboyColor-sub003/internal/serial"
	"github.com/Caprini/ViboyColor-sub003/internal/timer"
	"github.com/Caprini/ViboyColor-sub003/pkg/log"
)

// ClockSpeed is the Game Boy's base (single-speed) clock rate, in Hz.
const ClockSpeed = cpu.ClockSpeed

// FrameRate is the nominal refresh rate of the LCD.
var FrameRate = 59.73

// TicksPerFrame is the number of T-cycles a single frame takes at single
// speed: 154 scanlines of 456 T-cycles.
var TicksPerFrame = uint32(456 * 154)

// GameBoy ties every component together and exposes the frame/input
// protocol a front end drives it with.
type GameBoy struct {
	CPU    *cpu.CPU
	MMU    *mmu.MMU
	PPU    *ppu.PPU
	Cart   *cartridge.Cartridge
	Joypad *joypad.Controller

	Interrupts *interrupts.Service
	Timer      *timer.Controller
	Serial     *serial.Controller

	log.Logger

	bootROM       *boot.ROM
	debug         bool
	paused        bool
	previousFrame [ppu.ScreenHeight][ppu.ScreenWidth][3]uint8
}

// Opt customizes a GameBoy at construction time.
type Opt func(gb *GameBoy)

// NewGameBoy constructs and wires a complete GameBoy from ROM bytes. The
// cartridge header's CGB-compatibility byte selects DMG or CGB mode; opts
// are applied once the cartridge, interrupts, timer, serial, joypad, PPU
// and default logger exist, and before the MMU, DMA and CPU are built from
// the boot ROM and logger they leave behind; the CPU's initial register
// state is set last.
func NewGameBoy(rom []byte, opts ...Opt) (*GameBoy, error) {
	cart, err := cartridge.NewCartridge(rom)
	if err != nil {
		return nil, err
	}
	header := cart.Header()
	cgb := header.GameboyColor()

	irq := interrupts.NewService()
	tmr := timer.NewController(irq)
	ser := serial.NewController(irq)
	pad := joypad.NewController(irq)
	video := ppu.New(cgb, irq)

	logger := log.New()

	g := &GameBoy{
		Cart:       cart,
		Joypad:     pad,
		Interrupts: irq,
		Timer:      tmr,
		Serial:     ser,
		PPU:        video,
		Logger:     logger,
	}

	for _, opt := range opts {
		opt(g)
	}

	memBus := mmu.NewMMU(cart, g.bootROM, irq, tmr, ser, pad, video, g.Logger)
	dma := ppu.NewDMA(memBus)
	memBus.SetDMA(dma)
	video.DMA = dma
	video.SetHBlankFunc(memBus.HDMA.SetHBlank)

	c := cpu.NewCPU(memBus, irq, dma, tmr, video, ser, g.Logger)
	memBus.SetSpeedSwitcher(c)
	c.Debug = g.debug

	g.MMU = memBus
	g.CPU = c

	if g.bootROM == nil {
		g.bootToCartridge(cgb)
	}

	return g, nil
}

// bootToCartridge synthesizes the post-boot register state a real boot ROM
// would have left behind, for the common case of running without one.
func (g *GameBoy) bootToCartridge(cgb bool) {
	g.CPU.PC = 0x100
	g.CPU.SP = 0xFFFE
	if cgb {
		g.CPU.A, g.CPU.F = 0x11, 0xB0
		g.CPU.B, g.CPU.C = 0x00, 0x13
		g.CPU.D, g.CPU.E = 0x00, 0xD8
		g.CPU.H, g.CPU.L = 0x01, 0x4D
	} else {
		g.CPU.A, g.CPU.F = 0x01, 0xB0
		g.CPU.B, g.CPU.C = 0x00, 0x13
		g.CPU.D, g.CPU.E = 0x00, 0xD8
		g.CPU.H, g.CPU.L = 0x01, 0x4D
	}
}

// Pause stops Frame from advancing the CPU; the last rendered frame is
// returned repeatedly instead.
func (g *GameBoy) Pause()       { g.paused = true }
func (g *GameBoy) Unpause()     { g.paused = false }
func (g *GameBoy) Paused() bool { return g.paused }

// Frame steps the CPU until the PPU completes a frame, or until a frame's
// worth of T-cycles have elapsed without one (which only happens while the
// LCD is disabled), and returns the completed RGB framebuffer.
func (g *GameBoy) Frame() [ppu.ScreenHeight][ppu.ScreenWidth][3]uint8 {
	if g.paused {
		return g.previousFrame
	}

	var ticks uint32
	for ticks < TicksPerFrame {
		ticks += uint32(g.CPU.Step())
		if g.PPU.HasFrame() {
			break
		}
	}

	if g.PPU.HasFrame() {
		g.PPU.ClearRefresh()
		g.previousFrame = g.PPU.PreparedFrame
	}
	return g.previousFrame
}

// Press and Release update the joypad's live button state.
func (g *GameBoy) Press(button joypad.Button)   { g.Joypad.SetButtonState(button, true) }
func (g *GameBoy) Release(button joypad.Button) { g.Joypad.SetButtonState(button, false) }

// FrameInterval is the wall-clock duration a front end should pace its
// render loop to, matching the LCD's nominal refresh rate.
func FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / FrameRate)
}

// BootROMModel reports the boot ROM model string from boot.ROM.Model() (a
// hardware name such as "Game Boy (DMG-01)", or "unknown" for an
// unrecognized dump), or "" if no boot ROM is attached.
func (g *GameBoy) BootROMModel() string {
	if g.bootROM == nil {
		return ""
	}
	return g.bootROM.Model()
}
