// Package sound implements the register-bank side of the Game Boy's APU:
// decoding writes to 0xFF10-0xFF3F into per-channel trigger/envelope/
// frequency descriptors and forwarding them to a Speaker. It does not
// synthesize waveforms or mix audio — DSP is explicitly out of scope
// (spec.md §4.10 Non-goals) — a Speaker implementation (e.g. a backend
// wrapping a host audio API) owns that.
package sound

import (
	"github.com/willemolding/rgy/addr"
	"github.com/willemolding/rgy/bus"
)

// Descriptor is the decoded state of a channel at the moment it was
// triggered or updated, independent of any particular synthesis backend.
type Descriptor struct {
	Channel int // 0-3: square+sweep, square, wave, noise

	Duty    uint8
	Volume  uint8
	EnvelopeUp   bool
	EnvelopePace uint8

	SweepPace uint8
	SweepDown bool
	SweepStep uint8

	Period       uint16
	LengthEnable bool

	Left, Right bool
}

// Speaker receives decoded register events. A no-op Speaker is used when no
// backend audio device is attached, so the rest of the system never needs to
// nil-check it.
type Speaker interface {
	// OnTrigger fires when a channel's trigger bit is written with 1.
	OnTrigger(d Descriptor)
	// OnMasterVolume fires on any NR50/NR51/NR52 write.
	OnMasterVolume(left, right uint8, leftOn, rightOn [4]bool, enabled bool)
}

// NopSpeaker discards every event; the default when sound output isn't wired.
type NopSpeaker struct{}

func (NopSpeaker) OnTrigger(Descriptor)                                     {}
func (NopSpeaker) OnMasterVolume(uint8, uint8, [4]bool, [4]bool, bool)       {}

const waveRAMSize = 16

// Bank owns the raw NRxx register bytes and wave RAM, and decodes triggers
// out to a Speaker as they're written.
type Bank struct {
	speaker Speaker

	nr10, nr11, nr12, nr13, nr14 uint8
	nr21, nr22, nr23, nr24       uint8
	nr30, nr31, nr32, nr33, nr34 uint8
	nr41, nr42, nr43, nr44       uint8
	nr50, nr51, nr52             uint8
	waveRAM                      [waveRAMSize]uint8
}

func New(speaker Speaker) *Bank {
	if speaker == nil {
		speaker = NopSpeaker{}
	}
	return &Bank{speaker: speaker}
}

func (b *Bank) Attach(bs *bus.Bus) {
	bs.AddHandler(bus.Range{Start: addr.AudioStart, End: addr.AudioEnd}, b)
}

func (b *Bank) OnRead(address uint16) (uint8, bool) {
	switch address {
	case addr.NR10:
		return b.nr10 | 0x80, true
	case addr.NR11:
		return b.nr11 | 0x3F, true
	case addr.NR12:
		return b.nr12, true
	case addr.NR13:
		return 0xFF, true
	case addr.NR14:
		return b.nr14 | 0xBF, true
	case addr.NR21:
		return b.nr21 | 0x3F, true
	case addr.NR22:
		return b.nr22, true
	case addr.NR23:
		return 0xFF, true
	case addr.NR24:
		return b.nr24 | 0xBF, true
	case addr.NR30:
		return b.nr30 | 0x7F, true
	case addr.NR31:
		return 0xFF, true
	case addr.NR32:
		return b.nr32 | 0x9F, true
	case addr.NR33:
		return 0xFF, true
	case addr.NR34:
		return b.nr34 | 0xBF, true
	case addr.NR41:
		return 0xFF, true
	case addr.NR42:
		return b.nr42, true
	case addr.NR43:
		return b.nr43, true
	case addr.NR44:
		return b.nr44 | 0xBF, true
	case addr.NR50:
		return b.nr50, true
	case addr.NR51:
		return b.nr51, true
	case addr.NR52:
		return b.nr52 | 0x70, true
	}
	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		return b.waveRAM[address-addr.WaveRAMStart], true
	}
	return 0xFF, true
}

func (b *Bank) OnWrite(address uint16, value uint8) bool {
	switch address {
	case addr.NR10:
		b.nr10 = value
	case addr.NR11:
		b.nr11 = value
	case addr.NR12:
		b.nr12 = value
	case addr.NR13:
		b.nr13 = value
	case addr.NR14:
		b.nr14 = value
		if value&0x80 != 0 {
			b.speaker.OnTrigger(b.decodeSquare(0, b.nr10, b.nr11, b.nr12, b.nr13, b.nr14))
		}
	case addr.NR21:
		b.nr21 = value
	case addr.NR22:
		b.nr22 = value
	case addr.NR23:
		b.nr23 = value
	case addr.NR24:
		b.nr24 = value
		if value&0x80 != 0 {
			b.speaker.OnTrigger(b.decodeSquare(1, 0, b.nr21, b.nr22, b.nr23, b.nr24))
		}
	case addr.NR30:
		b.nr30 = value
	case addr.NR31:
		b.nr31 = value
	case addr.NR32:
		b.nr32 = value
	case addr.NR33:
		b.nr33 = value
	case addr.NR34:
		b.nr34 = value
		if value&0x80 != 0 {
			b.speaker.OnTrigger(Descriptor{
				Channel: 2,
				Period:  uint16(b.nr33) | uint16(b.nr34&0x07)<<8,
				Left:    b.nr51&0x04 != 0,
				Right:   b.nr51&0x40 != 0,
			})
		}
	case addr.NR41:
		b.nr41 = value
	case addr.NR42:
		b.nr42 = value
	case addr.NR43:
		b.nr43 = value
	case addr.NR44:
		b.nr44 = value
		if value&0x80 != 0 {
			b.speaker.OnTrigger(Descriptor{
				Channel:      3,
				Volume:       b.nr42 >> 4,
				EnvelopeUp:   b.nr42&0x08 != 0,
				EnvelopePace: b.nr42 & 0x07,
				LengthEnable: value&0x40 != 0,
				Left:         b.nr51&0x08 != 0,
				Right:        b.nr51&0x80 != 0,
			})
		}
	case addr.NR50:
		b.nr50 = value
		b.reportMasterVolume()
	case addr.NR51:
		b.nr51 = value
		b.reportMasterVolume()
	case addr.NR52:
		b.nr52 = (b.nr52 & 0x0F) | (value & 0x80)
		b.reportMasterVolume()
	default:
		if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
			b.waveRAM[address-addr.WaveRAMStart] = value
		}
	}
	return true
}

func (b *Bank) decodeSquare(channel int, nrX0, nrX1, nrX2, nrX3, nrX4 uint8) Descriptor {
	d := Descriptor{
		Channel:      channel,
		Duty:         (nrX1 >> 6) & 0x03,
		Volume:       nrX2 >> 4,
		EnvelopeUp:   nrX2&0x08 != 0,
		EnvelopePace: nrX2 & 0x07,
		Period:       uint16(nrX3) | uint16(nrX4&0x07)<<8,
		LengthEnable: nrX4&0x40 != 0,
	}
	if channel == 0 {
		d.SweepPace = (nrX0 >> 4) & 0x07
		d.SweepDown = nrX0&0x08 != 0
		d.SweepStep = nrX0 & 0x07
		d.Left = b.nr51&0x01 != 0
		d.Right = b.nr51&0x10 != 0
	} else {
		d.Left = b.nr51&0x02 != 0
		d.Right = b.nr51&0x20 != 0
	}
	return d
}

func (b *Bank) reportMasterVolume() {
	left := b.nr50 & 0x07
	right := (b.nr50 >> 4) & 0x07
	var leftOn, rightOn [4]bool
	for i := 0; i < 4; i++ {
		leftOn[i] = b.nr51&(1<<uint(i)) != 0
		rightOn[i] = b.nr51&(1<<uint(i+4)) != 0
	}
	b.speaker.OnMasterVolume(left, right, leftOn, rightOn, b.nr52&0x80 != 0)
}
