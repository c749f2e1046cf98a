package cpu

import "fmt"

// InstructionSetCB holds the 256 CB-prefixed instructions.
var InstructionSetCB = [256]Instruction{}

// cbOp is one of the eight CB rotate/shift operations in opcode order
// 0x00-0x3F: RLC, RRC, RL, RR, SLA, SRA, SWAP, SRL.
var cbOps = [8]struct {
	name string
	fn   func(c *CPU, value uint8) uint8
}{
	{"RLC", func(c *CPU, v uint8) uint8 { return c.rotateLeft(v) }},
	{"RRC", func(c *CPU, v uint8) uint8 { return c.rotateRight(v) }},
	{"RL", func(c *CPU, v uint8) uint8 { return c.rotateLeftThroughCarry(v) }},
	{"RR", func(c *CPU, v uint8) uint8 { return c.rotateRightThroughCarry(v) }},
	{"SLA", func(c *CPU, v uint8) uint8 { return c.shiftLeftIntoCarry(v) }},
	{"SRA", func(c *CPU, v uint8) uint8 { return c.shiftRightIntoCarry(v) }},
	{"SWAP", func(c *CPU, v uint8) uint8 { return c.swapByte(v) }},
	{"SRL", func(c *CPU, v uint8) uint8 { return c.shiftRightLogical(v) }},
}

func init() {
	for row := uint8(0); row < 8; row++ {
		op := cbOps[row]
		for reg := uint8(0); reg < 8; reg++ {
			opcode := row*8 + reg
			if reg == 6 {
				InstructionSetCB[opcode] = Instruction{
					fmt.Sprintf("%s (HL)", op.name),
					func(c *CPU) {
						addr := c.HL.Uint16()
						c.writeByte(addr, op.fn(c, c.readByte(addr)))
					},
				}
				continue
			}
			r := cbRegister(reg)
			InstructionSetCB[opcode] = Instruction{
				fmt.Sprintf("%s %s", op.name, cbRegisterName(reg)),
				func(c *CPU) {
					reg := r(c)
					*reg = op.fn(c, *reg)
				},
			}
		}
	}

	for bit := uint8(0); bit < 8; bit++ {
		for reg := uint8(0); reg < 8; reg++ {
			bit, reg := bit, reg
			bitOpcode := 0x40 + bit*8 + reg
			resOpcode := 0x80 + bit*8 + reg
			setOpcode := 0xC0 + bit*8 + reg

			if reg == 6 {
				InstructionSetCB[bitOpcode] = Instruction{
					fmt.Sprintf("BIT %d, (HL)", bit),
					func(c *CPU) { c.testBit(c.readByte(c.HL.Uint16()), bit) },
				}
				InstructionSetCB[resOpcode] = Instruction{
					fmt.Sprintf("RES %d, (HL)", bit),
					func(c *CPU) {
						addr := c.HL.Uint16()
						c.writeByte(addr, c.clearBit(c.readByte(addr), bit))
					},
				}
				InstructionSetCB[setOpcode] = Instruction{
					fmt.Sprintf("SET %d, (HL)", bit),
					func(c *CPU) {
						addr := c.HL.Uint16()
						c.writeByte(addr, c.setBit(c.readByte(addr), bit))
					},
				}
				continue
			}

			r := cbRegister(reg)
			InstructionSetCB[bitOpcode] = Instruction{
				fmt.Sprintf("BIT %d, %s", bit, cbRegisterName(reg)),
				func(c *CPU) { c.testBit(*r(c), bit) },
			}
			InstructionSetCB[resOpcode] = Instruction{
				fmt.Sprintf("RES %d, %s", bit, cbRegisterName(reg)),
				func(c *CPU) { reg := r(c); *reg = c.clearBit(*reg, bit) },
			}
			InstructionSetCB[setOpcode] = Instruction{
				fmt.Sprintf("SET %d, %s", bit, cbRegisterName(reg)),
				func(c *CPU) { reg := r(c); *reg = c.setBit(*reg, bit) },
			}
		}
	}
}

// cbRegister returns a closure fetching the register pointer for a CB
// register index (0-5, 7; 6 is handled separately as (HL)).
func cbRegister(index uint8) func(c *CPU) *Register {
	return func(c *CPU) *Register { return c.registerIndex(index) }
}

func cbRegisterName(index uint8) string {
	switch index {
	case 0:
		return "B"
	case 1:
		return "C"
	case 2:
		return "D"
	case 3:
		return "E"
	case 4:
		return "H"
	case 5:
		return "L"
	case 7:
		return "A"
	}
	return "(HL)"
}
