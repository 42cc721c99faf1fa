// Package dma implements the OAM DMA sequencer: writing the source page to
// 0xFF46 copies 160 bytes into OAM over 160 M-cycles (640 T-cycles) rather
// than all at once,
// and while a transfer is active the CPU may only access HRAM
// (spec.md §4.6).
package dma

import (
	"github.com/willemolding/rgy/addr"
	"github.com/willemolding/rgy/bus"
)

const transferLength = 160

// cyclesPerByte is the T-cycle cost of transferring one byte: OAM DMA moves
// one byte per M-cycle, and every other peripheral in this core is ticked
// in T-cycles, so the sequencer must burn 4 T-cycles per byte to land on
// the real 160 M-cycle (640 T-cycle) transfer duration.
const cyclesPerByte = 4

// Sequencer drives an in-progress OAM DMA transfer, reading source bytes
// through the bus (so it can source from ROM, VRAM, WRAM, or even echo RAM,
// same as real hardware) and writing them directly into the GPU's OAM array.
type Sequencer struct {
	bus *bus.Bus
	oam *[0xA0]byte

	register  byte
	active    bool
	source    uint16
	progress  int
	cycleDebt int
}

func New(b *bus.Bus, oam *[0xA0]byte) *Sequencer {
	return &Sequencer{bus: b, oam: oam}
}

func (s *Sequencer) Attach(b *bus.Bus) {
	b.AddHandler(bus.Range{Start: addr.DMA, End: addr.DMA}, s)
}

// Active reports whether a transfer is in progress — the orchestrator uses
// this to gate CPU bus access to HRAM-only.
func (s *Sequencer) Active() bool { return s.active }

func (s *Sequencer) OnRead(address uint16) (uint8, bool) {
	return s.register, true
}

func (s *Sequencer) OnWrite(address uint16, value uint8) bool {
	s.register = value
	s.source = uint16(value) << 8
	s.progress = 0
	s.cycleDebt = 0
	s.active = true
	return true
}

// Tick advances the in-progress transfer by cycles T-cycles, landing one
// byte every 4 T-cycles until all 160 have been copied.
func (s *Sequencer) Tick(cycles int) {
	if !s.active {
		return
	}
	s.cycleDebt += cycles
	for s.cycleDebt >= cyclesPerByte && s.active {
		s.cycleDebt -= cyclesPerByte
		// The access gate keys off active; clear it around the sequencer's
		// own source read so the byte comes from the source, not the gate.
		s.active = false
		s.oam[s.progress] = s.bus.Read8(s.source + uint16(s.progress))
		s.active = true
		s.progress++
		if s.progress >= transferLength {
			s.active = false
		}
	}
}

// Gate enforces invariant 3 (spec.md §3): while a transfer is active, every
// address outside HRAM reads FF and ignores writes. It is registered over
// the full address space, ahead of every other peripheral, so a gated read
// short-circuits dispatch before it reaches ROM/VRAM/WRAM.
type Gate struct {
	seq *Sequencer
}

// NewGate wraps seq as a bus-wide access gate.
func NewGate(seq *Sequencer) Gate { return Gate{seq: seq} }

// Attach registers the gate over the entire 64 KiB address space.
func (g Gate) Attach(b *bus.Bus) {
	b.AddHandler(bus.Range{Start: 0x0000, End: 0xFFFF}, g)
}

func (g Gate) OnRead(address uint16) (uint8, bool) {
	if g.seq.active && !inHRAM(address) {
		return 0xFF, true
	}
	return 0, false
}

func (g Gate) OnWrite(address uint16, value uint8) bool {
	return g.seq.active && !inHRAM(address)
}

func inHRAM(address uint16) bool {
	return address >= addr.HRAMStart && address <= addr.HRAMEnd
}
