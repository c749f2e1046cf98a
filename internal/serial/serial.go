// Package serial provides the SB/SC register pair. No link cable peer is
// ever attached, so a transfer requested with the internal clock (SC bit 0
// set) always shifts in 1 bits (the pulled-high idle line of a
// disconnected cable) and completes after 8 bits, raising the serial
// interrupt exactly as real hardware does when nothing is plugged in. A
// transfer requested with the external clock never shifts and never
// completes.
package serial

import "github.com/Caprini/ViboyColor-sub003/internal/interrupts"

type Controller struct {
	data    uint8 // SB (0xFF01)
	control uint8 // SC (0xFF02)

	bitsRemaining uint8
	divBit        bool

	irq *interrupts.Service
}

func NewController(irq *interrupts.Service) *Controller {
	return &Controller{irq: irq, control: 0x7E}
}

func (c *Controller) SB() uint8 { return c.data }
func (c *Controller) SetSB(v uint8) { c.data = v }

func (c *Controller) SC() uint8 { return c.control | 0x7E }

func (c *Controller) SetSC(v uint8) {
	c.control = v
	if c.transferRequested() && c.internalClock() {
		c.bitsRemaining = 8
	}
}

func (c *Controller) transferRequested() bool { return c.control&0x80 != 0 }
func (c *Controller) internalClock() bool     { return c.control&0x01 != 0 }

// Tick advances the shift clock by one falling edge of DIV bit 8, shifting
// in a 1 bit (no peer attached) on every transfer in progress.
func (c *Controller) Tick(div uint16) {
	bit := div&(1<<8) != 0
	fallingEdge := c.divBit && !bit
	c.divBit = bit

	if !fallingEdge || c.bitsRemaining == 0 {
		return
	}

	c.data = (c.data << 1) | 1
	c.bitsRemaining--
	if c.bitsRemaining == 0 {
		c.control &^= 0x80
		c.irq.Request(interrupts.SerialFlag)
	}
}
