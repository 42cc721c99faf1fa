package dma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willemolding/rgy/addr"
	"github.com/willemolding/rgy/bus"
)

// TestSequencer_transferTiming is testable property 6's timing half: a
// 160-byte OAM DMA transfer takes 640 T-cycles (160 M-cycles), not 160
// T-cycles.
func TestSequencer_transferTiming(t *testing.T) {
	b := bus.New()
	var oam [0xA0]byte
	seq := New(b, &oam)
	seq.Attach(b)

	for i := 0; i < 160; i++ {
		b.RawWrite(0xC000+uint16(i), byte(i+1))
	}

	b.Write8(addr.DMA, 0xC0)
	require.True(t, seq.Active())

	seq.Tick(159)
	assert.True(t, seq.Active(), "159 T-cycles lands only 39 of the 160 bytes at 4 cycles/byte")

	seq.Tick(1)
	assert.True(t, seq.Active(), "still mid-transfer after only 160 of the required 640 T-cycles")

	seq.Tick(479)
	assert.True(t, seq.Active())

	seq.Tick(1)
	assert.False(t, seq.Active(), "transfer completes at exactly 640 T-cycles")

	for i := 0; i < 160; i++ {
		assert.Equal(t, byte(i+1), oam[i])
	}
}

// TestGate_blocksNonHRAMDuringTransfer is testable property 6's atomicity
// half: while DMA is active, reads outside HRAM return FF and writes are
// dropped; HRAM itself remains reachable.
func TestGate_blocksNonHRAMDuringTransfer(t *testing.T) {
	b := bus.New()
	var oam [0xA0]byte
	seq := New(b, &oam)
	gate := NewGate(seq)
	gate.Attach(b)
	seq.Attach(b)

	b.RawWrite(0xC000, 0x77)
	b.Write8(addr.DMA, 0x00)
	require.True(t, seq.Active())

	assert.Equal(t, uint8(0xFF), b.Read8(0xC000), "WRAM reads are gated during DMA")

	b.Write8(0xC000, 0x01)
	assert.Equal(t, uint8(0x77), b.RawRead(0xC000), "WRAM writes are dropped during DMA")

	b.Write8(addr.HRAMStart, 0x42)
	assert.Equal(t, uint8(0x42), b.Read8(addr.HRAMStart), "HRAM stays reachable during DMA")

	seq.Tick(640)
	require.False(t, seq.Active())

	assert.Equal(t, uint8(0x77), b.Read8(0xC000), "gate lifts once the transfer completes")
}
