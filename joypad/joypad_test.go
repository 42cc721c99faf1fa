package joypad

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/willemolding/rgy/addr"
	"github.com/willemolding/rgy/interrupt"
)

func TestJoypad_columnSelectReportsCorrectNibble(t *testing.T) {
	irq := interrupt.New()
	j := New(irq)
	j.Press(A)  // buttons bit 0
	j.Press(Up) // d-pad bit 2

	j.OnWrite(addr.P1, 0x10) // select d-pad
	v, _ := j.OnRead(addr.P1)
	assert.Equal(t, uint8(0xDB), v, "Up cleared in the d-pad nibble, buttons column not reflected")

	j.OnWrite(addr.P1, 0x20) // select buttons
	v, _ = j.OnRead(addr.P1)
	assert.Equal(t, uint8(0xEE), v, "A cleared in the buttons nibble")
}

func TestJoypad_pressRaisesIRQOnlyWhenColumnSelected(t *testing.T) {
	irq := interrupt.New()
	irq.WriteIE(addr.Joypad.Bit())
	j := New(irq)

	j.OnWrite(addr.P1, 0x20) // buttons selected
	j.Press(Up)              // d-pad key, wrong column
	assert.False(t, irq.Pending())

	j.Press(A) // buttons key, selected column
	assert.True(t, irq.Pending())
}

func TestJoypad_pressIsIdempotentNoDoubleIRQOnRepeat(t *testing.T) {
	irq := interrupt.New()
	irq.WriteIE(addr.Joypad.Bit())
	j := New(irq)
	j.OnWrite(addr.P1, 0x10)

	j.Press(Left)
	irq.Acknowledge(addr.Joypad)
	j.Press(Left) // already pressed: no new falling edge
	assert.False(t, irq.Pending())
}

func TestJoypad_releaseSetsBitBack(t *testing.T) {
	irq := interrupt.New()
	j := New(irq)
	j.OnWrite(addr.P1, 0x10)

	j.Press(Down)
	v, _ := j.OnRead(addr.P1)
	assert.Equal(t, uint8(0), v&(1<<3), "Down bit clear while pressed")

	j.Release(Down)
	v, _ = j.OnRead(addr.P1)
	assert.NotEqual(t, uint8(0), v&(1<<3), "Down bit set again once released")
}

func TestJoypad_noColumnSelectedReadsAllOnes(t *testing.T) {
	irq := interrupt.New()
	j := New(irq)
	j.OnWrite(addr.P1, 0x30)

	v, _ := j.OnRead(addr.P1)
	assert.Equal(t, uint8(0xFF), v)
}
