// Package joypad emulates the P1 (0xFF00) selection matrix and the
// press/release bookkeeping needed to raise the joypad interrupt.
package joypad

import (
	"github.com/Caprini/ViboyColor-sub003/internal/interrupts"
)

// Button identifies one of the eight physical buttons, named the way the
// external input protocol names them rather than by matrix position.
type Button = uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
)

// Controller tracks the P1 register and the live button mask, requesting
// the joypad interrupt through the shared interrupts.Service on any
// selected-row high-to-low transition.
type Controller struct {
	register uint8 // bits 4-5: selectors, written by software
	state    uint8 // bitmask of currently-pressed buttons (1 = pressed)
	irq      *interrupts.Service
}

// NewController returns a Controller with no selector active and no
// buttons pressed.
func NewController(irq *interrupts.Service) *Controller {
	return &Controller{register: 0x3F, irq: irq}
}

// Read returns the value of P1 as observed by the CPU: bits 6-7 fixed at 1,
// bits 0-3 the OR of whichever row(s) the software has selected.
func (c *Controller) Read() uint8 {
	result := c.register | 0xC0
	if c.register&0x10 == 0 { // direction keys selected
		result &^= (c.state >> 4) & 0x0F
	}
	if c.register&0x20 == 0 { // button keys selected
		result &^= c.state & 0x0F
	}
	return result
}

// Write stores a value written to P1; only the two selector bits are
// software-controlled, the low nibble is read-only input state.
func (c *Controller) Write(value uint8) {
	c.register = (c.register & 0xCF) | (value & 0x30)
}

// SetButtonState updates one button's pressed state, requesting the
// joypad interrupt if this causes a selected row to transition 1->0.
func (c *Controller) SetButtonState(button Button, pressed bool) {
	if pressed {
		c.press(button)
	} else {
		c.release(button)
	}
}

func (c *Controller) press(button Button) {
	alreadyPressed := c.state&button != 0
	c.state |= button

	selected := false
	if button <= ButtonStart && c.register&0x20 == 0 {
		selected = true
	} else if button > ButtonStart && c.register&0x10 == 0 {
		selected = true
	}

	if !alreadyPressed && selected {
		c.irq.Request(interrupts.JoypadFlag)
	}
}

func (c *Controller) release(button Button) {
	c.state &^= button
}
