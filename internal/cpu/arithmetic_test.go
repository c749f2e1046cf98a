package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddSetsHalfCarryAndCarry(t *testing.T) {
	c := newTestCPU()
	c.A = 0x0F
	c.add(0x01, false)
	assert.Equal(t, uint8(0x10), c.A)
	assert.True(t, c.isFlagSet(FlagHalfCarry))
	assert.False(t, c.isFlagSet(FlagCarry))

	c.A = 0xFF
	c.add(0x01, false)
	assert.Equal(t, uint8(0x00), c.A)
	assert.True(t, c.isFlagSet(FlagZero))
	assert.True(t, c.isFlagSet(FlagCarry))
}

func TestAddWithCarryIncludesCarryIn(t *testing.T) {
	c := newTestCPU()
	c.A = 0x01
	c.setFlag(FlagCarry)
	c.add(0x01, true)
	assert.Equal(t, uint8(0x03), c.A)
}

func TestSubSetsBorrowFlags(t *testing.T) {
	c := newTestCPU()
	c.A = 0x10
	c.sub(0x01, false)
	assert.Equal(t, uint8(0x0F), c.A)
	assert.True(t, c.isFlagSet(FlagHalfCarry))
	assert.True(t, c.isFlagSet(FlagSubtract))
	assert.False(t, c.isFlagSet(FlagCarry))
}

func TestIncrementDoesNotTouchCarry(t *testing.T) {
	c := newTestCPU()
	c.setFlag(FlagCarry)
	result := c.increment(0xFF)
	assert.Equal(t, uint8(0x00), result)
	assert.True(t, c.isFlagSet(FlagCarry))
	assert.True(t, c.isFlagSet(FlagZero))
}

func TestDAAAfterBCDAddition(t *testing.T) {
	c := newTestCPU()
	// 0x45 + 0x38 in BCD should read back as 0x83, not the raw hex 0x7D.
	c.A = 0x45
	c.add(0x38, false)
	assert.Equal(t, uint8(0x7D), c.A)
	c.daa()
	assert.Equal(t, uint8(0x83), c.A)
	assert.False(t, c.isFlagSet(FlagCarry))
}

func TestAddHLRRCarriesFromBit15(t *testing.T) {
	c := newTestCPU()
	c.HL.SetUint16(0xFFFF)
	c.BC.SetUint16(0x0001)
	c.addHLRR(c.BC)
	assert.Equal(t, uint16(0x0000), c.HL.Uint16())
	assert.True(t, c.isFlagSet(FlagCarry))
	assert.True(t, c.isFlagSet(FlagHalfCarry))
}
