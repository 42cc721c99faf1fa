package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willemolding/rgy/addr"
	"github.com/willemolding/rgy/bus"
	"github.com/willemolding/rgy/interrupt"
)

func newTestCPU() (*CPU, *bus.Bus, *interrupt.Controller) {
	b := bus.New()
	irq := interrupt.New()
	irq.Attach(b)
	c := New(b, irq)
	return c, b, irq
}

// TestCPU_nopLoop is scenario S1: a program of NOPs followed by a jump back
// to itself advances PC by one byte per step and costs 4 T-cycles per NOP.
func TestCPU_nopLoop(t *testing.T) {
	c, b, _ := newTestCPU()
	b.Write8(0x0100, 0x00) // NOP
	b.Write8(0x0101, 0x00) // NOP
	b.Write8(0x0102, 0xC3) // JP 0x0100
	b.Write16(0x0103, 0x0100)

	require.Equal(t, uint16(0x0100), c.PC())

	cycles := c.Step()
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x0101), c.PC())

	cycles = c.Step()
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x0102), c.PC())

	cycles = c.Step()
	assert.Equal(t, 16, cycles)
	assert.Equal(t, uint16(0x0100), c.PC())
}

// TestCPU_inc covers flag determinism (property 1) for the 8-bit INC path:
// zero and half-carry flags must match the documented table, and the carry
// flag is untouched by INC.
func TestCPU_inc(t *testing.T) {
	cases := []struct {
		name     string
		arg      uint8
		wantVal  uint8
		wantFlag uint8
	}{
		{"increments", 0x0A, 0x0B, 0},
		{"wraps to zero", 0xFF, 0x00, uint8(zeroFlag | halfCarryFlag)},
		{"sets half carry", 0x0F, 0x10, uint8(halfCarryFlag)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _, _ := newTestCPU()
			c.f = uint8(carryFlag) // carry must survive INC untouched
			c.a = tc.arg
			c.inc(&c.a)
			assert.Equal(t, tc.wantVal, c.a)
			assert.Equal(t, tc.wantFlag|uint8(carryFlag), c.f)
		})
	}
}

// TestCPU_interruptPriority is scenario S4: with IF=0x03 (V-Blank and STAT
// both pending), IE=0x03, IME=1, the CPU must service V-Blank first (lowest
// bit wins), push the original PC, and clear only that IF bit.
func TestCPU_interruptPriority(t *testing.T) {
	c, _, irq := newTestCPU()
	c.pc = 0x0200
	c.sp = 0xFFFE
	c.ime = true
	irq.WriteIE(0x03)
	irq.WriteIF(0x03)

	cycles := c.Step()

	assert.Equal(t, 20, cycles)
	assert.Equal(t, addr.VBlank.Vector(), c.pc)
	assert.False(t, c.ime)
	assert.Equal(t, uint8(0x02), irq.ReadIF()&0x1F)
	assert.Equal(t, uint16(0xFFFC), c.sp)
}

// TestCPU_haltWakesOnPendingInterrupt covers invariant 4: HALT ends as soon
// as an enabled line is raised, even with IME cleared.
func TestCPU_haltWakesOnPendingInterrupt(t *testing.T) {
	c, _, irq := newTestCPU()
	c.halted = true
	c.ime = false
	irq.WriteIE(0x01)
	irq.WriteIF(0x01)

	c.Step()

	assert.False(t, c.Halted())
}
