package cpu

import (
	"fmt"

	"github.com/Caprini/ViboyColor-sub003/internal/interrupts"
	"github.com/Caprini/ViboyColor-sub003/internal/mmu"
	"github.com/Caprini/ViboyColor-sub003/internal/ppu"
	"github.com/Caprini/ViboyColor-sub003/internal/serial"
	"github.com/Caprini/ViboyColor-sub003/internal/timer"
	"github.com/Caprini/ViboyColor-sub003/internal/types"
	"github.com/Caprini/ViboyColor-sub003/pkg/log"
)

// ClockSpeed is the base (single-speed) clock rate of the CPU, in Hz.
const ClockSpeed = 4194304

type Register = types.Register
type RegisterPair = types.RegisterPair
type Registers = types.Registers

type mode = uint8

const (
	ModeNormal mode = iota
	ModeHalt
	ModeStop
	ModeHaltBug
	ModeEnableIME
)

// CPU emulates the Sharp LR35902, the master clock of the whole system:
// every other component is ticked in lockstep with the T-cycles the CPU
// spends fetching and executing each instruction.
type CPU struct {
	PC uint16
	SP uint16
	Registers

	Model types.Model

	Speed            float32
	doubleSpeed      bool
	speedSwitchArmed bool

	mmu *mmu.MMU
	IRQ *interrupts.Service

	Debug           bool
	DebugBreakpoint bool

	// Frozen is set when the CPU decodes an opcode the hardware never
	// defines; execution halts in place, matching a real unit's lockup.
	Frozen bool
	log    log.Logger

	dma    *ppu.DMA
	timer  *timer.Controller
	ppu    *ppu.PPU
	serial *serial.Controller

	currentTick uint8
	mode        mode
}

// NewCPU creates a CPU wired to the shared MMU, interrupt service, and the
// devices it must tick every M-cycle.
func NewCPU(m *mmu.MMU, irq *interrupts.Service, dma *ppu.DMA, tim *timer.Controller, p *ppu.PPU, ser *serial.Controller, logger log.Logger) *CPU {
	c := &CPU{
		Registers: Registers{},
		mmu:       m,
		Speed:     1,
		IRQ:       irq,
		dma:       dma,
		timer:     tim,
		ppu:       p,
		serial:    ser,
		log:       logger,
	}
	c.BC = &RegisterPair{&c.B, &c.C}
	c.DE = &RegisterPair{&c.D, &c.E}
	c.HL = &RegisterPair{&c.H, &c.L}
	c.AF = &RegisterPair{&c.A, &c.F}

	return c
}

// registerIndex returns the register pointer for a 3-bit register index, in
// the order the opcode encoding uses (6, (HL), is never passed here).
func (c *CPU) registerIndex(index uint8) *Register {
	switch index {
	case 0:
		return &c.B
	case 1:
		return &c.C
	case 2:
		return &c.D
	case 3:
		return &c.E
	case 4:
		return &c.H
	case 5:
		return &c.L
	case 7:
		return &c.A
	}
	panic(fmt.Sprintf("invalid register index: %d", index))
}

// registerName returns the mnemonic name of a register pointer, used only
// for instruction naming/debug output.
func (c *CPU) registerName(reg *Register) string {
	switch reg {
	case &c.A:
		return "A"
	case &c.B:
		return "B"
	case &c.C:
		return "C"
	case &c.D:
		return "D"
	case &c.E:
		return "E"
	case &c.H:
		return "H"
	case &c.L:
		return "L"
	}
	return ""
}

// Step executes one instruction's worth of CPU activity (or one tick of
// HALT/STOP idling) and returns the number of T-cycles consumed.
func (c *CPU) Step() uint8 {
	c.currentTick = 0

	if c.Frozen {
		c.tickCycle()
		return c.currentTick
	}

	if c.mmu.HDMA != nil && c.mmu.HDMA.IsCopying() {
		c.hdmaTick4()
		return c.currentTick
	}

	reqInt := false
	if c.mode == ModeNormal {
		c.runInstruction(c.readInstruction())
		reqInt = c.IRQ.IME && c.hasInterrupts()
	} else {
		switch c.mode {
		case ModeHalt, ModeStop:
			c.tickCycle()
			reqInt = c.hasInterrupts()
		case ModeEnableIME:
			c.IRQ.IME = true
			c.mode = ModeNormal
			c.runInstruction(c.readInstruction())
			reqInt = c.IRQ.IME && c.hasInterrupts()
		case ModeHaltBug:
			instr := c.readInstruction()
			c.PC--
			c.mode = ModeNormal
			c.runInstruction(instr)
			reqInt = c.IRQ.IME && c.hasInterrupts()
		}
	}

	if reqInt {
		c.executeInterrupt()
	}

	return c.currentTick
}

// tickDoubleSpeed ticks the components that run at double rate in CGB
// double-speed mode.
func (c *CPU) tickDoubleSpeed() {
	c.dma.Tick()
	c.timer.Step(1)
	c.serial.Tick(uint16(c.timer.Div()) << 8)
}

func (c *CPU) hdmaTick4() {
	if c.doubleSpeed {
		c.tick()
		c.tickDoubleSpeed()
		c.tick()
		c.tickDoubleSpeed()
		c.mmu.HDMA.Tick()
	} else {
		c.tick()
		c.tick()
		c.tick()
		c.tick()
		c.mmu.HDMA.Tick()
		c.mmu.HDMA.Tick()
	}
}

func (c *CPU) hasInterrupts() bool {
	return c.IRQ.Pending()
}

// readInstruction fetches the opcode at PC, ticking one M-cycle.
func (c *CPU) readInstruction() uint8 {
	c.tickCycle()
	value := c.mmu.Read(c.PC)
	c.PC++
	return value
}

// readOperand reads the next instruction byte, identical to readInstruction
// but named separately for instructions that fetch operands rather than
// opcodes.
func (c *CPU) readOperand() uint8 {
	c.tickCycle()
	value := c.mmu.Read(c.PC)
	c.PC++
	return value
}

func (c *CPU) skipOperand() {
	c.tickCycle()
	c.PC++
}

// readByte reads a byte from memory, ticking one M-cycle.
func (c *CPU) readByte(addr uint16) uint8 {
	c.tickCycle()
	return c.mmu.Read(addr)
}

// writeByte writes a byte to memory, ticking one M-cycle.
func (c *CPU) writeByte(addr uint16, val uint8) {
	c.tickCycle()
	c.mmu.Write(addr, val)
}

func (c *CPU) runInstruction(opcode uint8) {
	var instruction Instruction
	if opcode == 0xCB {
		instruction = InstructionSetCB[c.readOperand()]
	} else {
		instruction = InstructionSet[opcode]
	}

	if instruction.fn == nil {
		if c.log != nil {
			c.log.Errorf("cpu: illegal opcode 0x%02X at 0x%04X, freezing", opcode, c.PC-1)
		}
		c.Frozen = true
		return
	}

	instruction.fn(c)

	if c.Debug && instruction.name == "LD B, B" {
		c.DebugBreakpoint = true
	}
}

// executeInterrupt pushes PC, clears IME, and jumps to the highest-priority
// pending interrupt's vector.
func (c *CPU) executeInterrupt() {
	if c.IRQ.IME {
		c.SP--
		c.writeByte(c.SP, uint8(c.PC>>8))

		vector := c.IRQ.Vector()

		c.SP--
		c.writeByte(c.SP, uint8(c.PC&0xFF))

		c.PC = vector
		c.IRQ.IME = false

		c.tickCycle()
	}

	c.mode = ModeNormal
}

// tick advances every device the CPU drives by one T-cycle.
func (c *CPU) tick() {
	c.dma.Tick()
	c.timer.Step(1)
	c.serial.Tick(uint16(c.timer.Div()) << 8)
	c.ppu.Tick()
	c.currentTick++
}

// tickCycle advances one M-cycle (4 T-cycles), doubled up in CGB double
// speed mode so the wall-clock rate of every device stays correct relative
// to the faster CPU.
func (c *CPU) tickCycle() {
	if c.doubleSpeed {
		c.tick()
		c.tickDoubleSpeed()
		c.tick()
		c.tickDoubleSpeed()
	} else {
		c.tick()
		c.tick()
		c.tick()
		c.tick()
	}
}
