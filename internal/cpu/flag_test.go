package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestCPU() *CPU {
	c := &CPU{}
	c.BC = &RegisterPair{&c.B, &c.C}
	c.DE = &RegisterPair{&c.D, &c.E}
	c.HL = &RegisterPair{&c.H, &c.L}
	c.AF = &RegisterPair{&c.A, &c.F}
	return c
}

func TestFlagSetClear(t *testing.T) {
	c := newTestCPU()
	for _, f := range []Flag{FlagZero, FlagSubtract, FlagHalfCarry, FlagCarry} {
		c.setFlag(f)
		assert.True(t, c.isFlagSet(f))
		c.clearFlag(f)
		assert.False(t, c.isFlagSet(f))
	}
}

func TestFlagLowNibbleAlwaysZero(t *testing.T) {
	c := newTestCPU()
	c.setFlag(FlagZero)
	c.setFlag(FlagCarry)
	assert.Equal(t, uint8(0), c.F&0x0F)
}

func TestSetFlagsReplacesAllFour(t *testing.T) {
	c := newTestCPU()
	c.setFlag(FlagSubtract)
	c.setFlags(true, false, true, false)
	assert.True(t, c.isFlagSet(FlagZero))
	assert.False(t, c.isFlagSet(FlagSubtract))
	assert.True(t, c.isFlagSet(FlagHalfCarry))
	assert.False(t, c.isFlagSet(FlagCarry))
}

func TestShouldZeroFlag(t *testing.T) {
	c := newTestCPU()
	c.shouldZeroFlag(0)
	assert.True(t, c.isFlagSet(FlagZero))
	c.shouldZeroFlag(1)
	assert.False(t, c.isFlagSet(FlagZero))
}
