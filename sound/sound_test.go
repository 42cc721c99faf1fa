package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willemolding/rgy/addr"
)

type fakeSpeaker struct {
	triggers []Descriptor
	volume   []masterVolumeCall
}

type masterVolumeCall struct {
	left, right         uint8
	leftOn, rightOn     [4]bool
	enabled             bool
}

func (f *fakeSpeaker) OnTrigger(d Descriptor) { f.triggers = append(f.triggers, d) }
func (f *fakeSpeaker) OnMasterVolume(left, right uint8, leftOn, rightOn [4]bool, enabled bool) {
	f.volume = append(f.volume, masterVolumeCall{left, right, leftOn, rightOn, enabled})
}

func TestBank_squareOneTriggerDecodesSweepAndEnvelope(t *testing.T) {
	speaker := &fakeSpeaker{}
	b := New(speaker)

	b.OnWrite(addr.NR51, 0x11) // channel 0 routed to both left and right
	b.OnWrite(addr.NR10, 0x2B) // sweep pace 2, down, step 3
	b.OnWrite(addr.NR11, 0x80) // duty 2
	b.OnWrite(addr.NR12, 0xF3) // volume 15, envelope down, pace 3
	b.OnWrite(addr.NR13, 0x34)
	b.OnWrite(addr.NR14, 0x87) // trigger, period high bits 0x07

	require.Len(t, speaker.triggers, 1)
	d := speaker.triggers[0]
	assert.Equal(t, 0, d.Channel)
	assert.Equal(t, uint8(2), d.Duty)
	assert.Equal(t, uint8(15), d.Volume)
	assert.False(t, d.EnvelopeUp)
	assert.Equal(t, uint8(3), d.EnvelopePace)
	assert.Equal(t, uint8(2), d.SweepPace)
	assert.True(t, d.SweepDown)
	assert.Equal(t, uint8(3), d.SweepStep)
	assert.Equal(t, uint16(0x734), d.Period)
	assert.True(t, d.Left)
	assert.True(t, d.Right)
}

func TestBank_writingWithoutTriggerBitDoesNotFireSpeaker(t *testing.T) {
	speaker := &fakeSpeaker{}
	b := New(speaker)

	b.OnWrite(addr.NR14, 0x07) // no bit 7 set
	assert.Empty(t, speaker.triggers)
}

func TestBank_nr52Write_onlyMasksPowerBit(t *testing.T) {
	speaker := &fakeSpeaker{}
	b := New(speaker)

	b.OnWrite(addr.NR52, 0xFF)
	v, _ := b.OnRead(addr.NR52)
	assert.Equal(t, uint8(0xF0), v, "upper bit set plus the fixed top-3 read mask")

	require.Len(t, speaker.volume, 1)
	assert.True(t, speaker.volume[0].enabled)
}

func TestBank_waveRAMIsReadWritable(t *testing.T) {
	b := New(nil)
	b.OnWrite(addr.WaveRAMStart, 0xAB)
	v, ok := b.OnRead(addr.WaveRAMStart)
	assert.True(t, ok)
	assert.Equal(t, uint8(0xAB), v)
}

func TestBank_nilSpeakerDefaultsToNop(t *testing.T) {
	b := New(nil)
	assert.NotPanics(t, func() {
		b.OnWrite(addr.NR14, 0x80)
	})
}
