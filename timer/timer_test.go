package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willemolding/rgy/addr"
	"github.com/willemolding/rgy/interrupt"
)

// TestTimer_overflowRaisesIRQAndReloadsTMA is testable property 8: with
// TAC=0x05 (enabled, 262144 Hz => falling edge on bit 3), TIMA overflows
// after (0x100-TMA)*16 cycles and, 4 cycles later, raises the Timer IRQ and
// reloads TMA.
func TestTimer_overflowRaisesIRQAndReloadsTMA(t *testing.T) {
	irq := interrupt.New()
	tr := New(irq)

	irq.WriteIE(addr.Timer.Bit())
	tr.OnWrite(addr.TMA, 0x00)
	tr.OnWrite(addr.TAC, 0x05)

	overflowAt := (0x100 - 0) * 16

	tr.Tick(overflowAt)
	tima, _ := tr.OnRead(addr.TIMA)
	require.Equal(t, uint8(0), tima, "TIMA reaches 0 the instant it overflows, before the reload delay")
	assert.False(t, irq.Pending(), "IRQ is deferred by 4 cycles after overflow")

	tr.Tick(4) // delay elapses: TIMA reloads from TMA, IRQ is latched for the next Tick
	assert.False(t, irq.Pending(), "the IRQ itself is only raised on entry to the following Tick")

	tr.Tick(0)
	assert.True(t, irq.Pending())

	line, ok := irq.NextToService()
	assert.True(t, ok)
	assert.Equal(t, addr.Timer, line)

	tima, _ = tr.OnRead(addr.TIMA)
	assert.Equal(t, uint8(0x00), tima, "TIMA reloads from TMA")
}

// TestTimer_disabledNeverTicks covers the TAC enable bit: with TAC=0, TIMA
// never moves regardless of elapsed cycles.
func TestTimer_disabledNeverTicks(t *testing.T) {
	irq := interrupt.New()
	tr := New(irq)
	tr.OnWrite(addr.TAC, 0x00)

	tr.Tick(100000)

	tima, _ := tr.OnRead(addr.TIMA)
	assert.Equal(t, uint8(0), tima)
}

// TestTimer_divResetsOnWrite matches the documented quirk: any write to DIV
// resets the full internal counter, not just the visible upper byte.
func TestTimer_divResetsOnWrite(t *testing.T) {
	irq := interrupt.New()
	tr := New(irq)
	tr.OnWrite(addr.TAC, 0x04) // enabled, bit 9 -> slowest rate
	tr.Tick(300)

	div, _ := tr.OnRead(addr.DIV)
	assert.NotEqual(t, uint8(0), div)

	tr.OnWrite(addr.DIV, 0xFF) // any value resets to 0
	div, _ = tr.OnRead(addr.DIV)
	assert.Equal(t, uint8(0), div)
}
