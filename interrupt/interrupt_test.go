package interrupt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/willemolding/rgy/addr"
)

func TestController_priorityOrder(t *testing.T) {
	c := New()
	c.WriteIE(0xFF)

	// Raise two lines out of priority order; the lowest bit must always win.
	c.Raise(addr.Joypad)
	c.Raise(addr.Timer)
	line, ok := c.NextToService()
	assert.True(t, ok)
	assert.Equal(t, addr.Timer, line)

	c.Acknowledge(addr.Timer)
	line, ok = c.NextToService()
	assert.True(t, ok)
	assert.Equal(t, addr.Joypad, line)

	c.Acknowledge(addr.Joypad)
	_, ok = c.NextToService()
	assert.False(t, ok)
}

func TestController_lineMustBeEnabledToBePending(t *testing.T) {
	c := New()
	c.Raise(addr.VBlank)
	assert.False(t, c.Pending(), "a raised but un-enabled line is not pending")

	c.WriteIE(addr.VBlank.Bit())
	assert.True(t, c.Pending())
}

func TestController_readIFSetsUpperBits(t *testing.T) {
	c := New()
	c.WriteIF(0x01)
	assert.Equal(t, uint8(0xE1), c.ReadIF(), "upper 3 bits of IF always read as 1")
}

func TestController_writeIFMasksToFiveBits(t *testing.T) {
	c := New()
	c.WriteIF(0xFF)
	assert.Equal(t, uint8(0x1F), c.ReadIF()&0x1F)
}

func TestController_resetClearsBothRegisters(t *testing.T) {
	c := New()
	c.WriteIE(0xFF)
	c.WriteIF(0xFF)
	c.Reset()
	assert.Equal(t, uint8(0), c.ReadIE())
	assert.Equal(t, uint8(0), c.ReadIF()&0x1F)
}
