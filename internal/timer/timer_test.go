package timer

import (
	"testing"

	"github.com/Caprini/ViboyColor-sub003/internal/interrupts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController() (*Controller, *interrupts.Service) {
	irq := interrupts.NewService()
	return NewController(irq), irq
}

func TestDivIsHighByteOfInternalCounter(t *testing.T) {
	c, _ := newTestController()
	c.Step(255)
	assert.Equal(t, uint8(0), c.Div())
	c.Step(1)
	assert.Equal(t, uint8(1), c.Div())
}

func TestResetDivQuirkSpuriouslyIncrementsTIMA(t *testing.T) {
	c, _ := newTestController()
	c.SetTAC(0x04) // enabled, bit 9 selected (every 1024 T-cycles)
	for i := 0; i < 4; i++ {
		c.Step(1 << 7) // 4 x 128 T-cycles: set bit 9 of the internal counter (0x200)
	}

	require.Equal(t, uint8(0), c.TIMA())
	c.ResetDiv()
	assert.Equal(t, uint8(1), c.TIMA(), "DIV reset while the monitored bit was high is itself a falling edge")
}

func TestResetDivWithoutMonitoredBitDoesNotIncrement(t *testing.T) {
	c, _ := newTestController()
	c.SetTAC(0x04)
	c.ResetDiv()
	assert.Equal(t, uint8(0), c.TIMA())
}

func TestTACChangeSpuriousIncrement(t *testing.T) {
	c, _ := newTestController()
	c.SetTAC(0x04) // select bit 9
	for i := 0; i < 4; i++ {
		c.Step(1 << 7) // 4 x 128 T-cycles: bit 9 set (0x200), no overflow yet
	}

	// Disabling the timer while the monitored bit is set is itself treated
	// as a falling edge.
	c.SetTAC(0x00)
	assert.Equal(t, uint8(1), c.TIMA())
}

func TestTIMAOverflowReloadsFromTMAAfterDelay(t *testing.T) {
	c, irq := newTestController()
	c.SetTMA(0x42)
	c.SetTAC(0x05) // enabled, fastest rate (bit 3)

	for i := 0; i < 0xFF; i++ {
		c.Step(1 << 4)
	}
	require.Equal(t, uint8(0xFF), c.TIMA())

	c.Step(1 << 4) // one more falling edge: TIMA overflows to 0, reload armed
	assert.Equal(t, uint8(0), c.TIMA())
	assert.False(t, irq.Pending(), "reload is delayed, not immediate")

	c.Step(4) // reload delay elapses
	assert.Equal(t, uint8(0x42), c.TIMA())
	assert.False(t, irq.Pending(), "IE is still zero; Pending requires enabled+requested")
	irq.Enable = 1 << interrupts.TimerFlag
	assert.True(t, irq.Pending())
}

func TestSetTIMACancelsPendingReload(t *testing.T) {
	c, _ := newTestController()
	c.SetTAC(0x05)
	for i := 0; i < 256; i++ {
		c.Step(1 << 4)
	}
	require.Equal(t, uint8(0), c.TIMA())

	c.SetTIMA(0x10)
	c.Step(4)
	assert.Equal(t, uint8(0x10), c.TIMA(), "a write during the reload window wins over the delayed TMA reload")
}

func TestTACHighBitsAlwaysReadAsSet(t *testing.T) {
	c, _ := newTestController()
	c.SetTAC(0x00)
	assert.Equal(t, uint8(0xF8), c.TAC())
}
