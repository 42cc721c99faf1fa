package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willemolding/rgy/addr"
	"github.com/willemolding/rgy/interrupt"
)

func TestPort_immediateTransferCompletesAndRaisesIRQ(t *testing.T) {
	irq := interrupt.New()
	irq.WriteIE(addr.Serial.Bit())
	p := New(irq)

	p.OnWrite(addr.SB, 'A')
	p.OnWrite(addr.SC, 0x81) // start, internal clock

	sb, _ := p.OnRead(addr.SB)
	assert.Equal(t, uint8(0xFF), sb, "SB reloads with the default RX byte once the transfer completes")

	sc, _ := p.OnRead(addr.SC)
	assert.Equal(t, uint8(0x7E), sc, "start bit clears once the transfer completes")

	assert.True(t, irq.Pending())
}

func TestPort_fixedTimingTransferCompletesAfter4096Cycles(t *testing.T) {
	irq := interrupt.New()
	irq.WriteIE(addr.Serial.Bit())
	p := New(irq, WithFixedTiming())

	p.OnWrite(addr.SB, 'B')
	p.OnWrite(addr.SC, 0x81)

	sbMid, _ := p.OnRead(addr.SB)
	assert.Equal(t, uint8('B'), sbMid, "SB is unchanged until the countdown elapses")
	assert.False(t, irq.Pending())

	p.Tick(4095)
	assert.False(t, irq.Pending())

	p.Tick(1)
	assert.True(t, irq.Pending())

	sb, _ := p.OnRead(addr.SB)
	assert.Equal(t, uint8(0xFF), sb)
}

func TestPort_writeWithoutBothControlBitsDoesNotStartTransfer(t *testing.T) {
	irq := interrupt.New()
	p := New(irq)

	p.OnWrite(addr.SB, 'C')
	p.OnWrite(addr.SC, 0x80) // start bit set but not internal clock

	sb, _ := p.OnRead(addr.SB)
	require.Equal(t, uint8('C'), sb, "no transfer means SB is untouched")
	assert.False(t, irq.Pending())
}
