// Package debug implements the inspection surface spec.md §7 asks for: CPU
// register snapshots, OAM/VRAM extraction for sprite and tile viewers, and a
// breakpoint-driven step controller, grounded on the teacher's debug data
// shapes but decoupled from any one backend.
package debug

import (
	"github.com/willemolding/rgy/addr"
	"github.com/willemolding/rgy/bus"
	"github.com/willemolding/rgy/cpu"
)

// CPUState is a point-in-time copy of the register file plus the two
// interrupt registers, used by disassembly and register-pane displays.
type CPUState struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	SP   uint16
	PC   uint16
	IME  bool

	InterruptEnable uint8
	InterruptFlags  uint8
	Cycles          uint64
}

// BusReader is the minimal read capability the debugger needs from the
// system bus — satisfied by *bus.Bus.
type BusReader interface {
	Read8(address uint16) uint8
}

// ExtractCPUState snapshots c's registers and the IE/IF registers read
// through mem.
func ExtractCPUState(c *cpu.CPU, mem BusReader, cycles uint64) CPUState {
	r := c.Snapshot()
	return CPUState{
		A: r.A, F: r.F,
		B: r.B, C: r.C,
		D: r.D, E: r.E,
		H: r.H, L: r.L,
		SP:  r.SP,
		PC:  r.PC,
		IME: r.IME,

		InterruptEnable: mem.Read8(addr.IE),
		InterruptFlags:  mem.Read8(addr.IF),
		Cycles:          cycles,
	}
}

// MemorySnapshot is a contiguous window of memory captured for disassembly
// or a hex-dump view.
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// TakeMemorySnapshot captures length bytes starting at start.
func TakeMemorySnapshot(mem BusReader, start uint16, length int) MemorySnapshot {
	bytes := make([]uint8, length)
	for i := 0; i < length; i++ {
		bytes[i] = mem.Read8(start + uint16(i))
	}
	return MemorySnapshot{StartAddr: start, Bytes: bytes}
}

// RunState is the debugger's own run/pause/step mode, independent of the
// CPU's HALT state.
type RunState int

const (
	Running RunState = iota
	Paused
	SteppingInstruction
	SteppingFrame
)

// CompleteDebugData bundles every inspection surface a debug frontend needs
// to render in one shot.
type CompleteDebugData struct {
	CPU      *CPUState
	OAM      *OAMData
	VRAM     *VRAMData
	Memory   *MemorySnapshot
	RunState RunState
}

// Capture assembles a CompleteDebugData snapshot: register file, OAM and
// VRAM decodes, and a HRAM window, all read through mem at the given
// scanline/sprite-height (spec.md §7's inspection surface).
func Capture(c *cpu.CPU, mem BusReader, cycles uint64, currentLine, spriteHeight int, state RunState) CompleteDebugData {
	cpuState := ExtractCPUState(c, mem, cycles)
	memSnap := TakeMemorySnapshot(mem, addr.HRAMStart, int(addr.HRAMEnd-addr.HRAMStart)+1)
	return CompleteDebugData{
		CPU:      &cpuState,
		OAM:      ExtractOAMData(mem, currentLine, spriteHeight),
		VRAM:     ExtractVRAMData(mem),
		Memory:   &memSnap,
		RunState: state,
	}
}

// Breakpoints tracks PC-indexed breakpoints and the debugger's run state.
// It has no dependency on the CPU or bus types so it can be driven from
// any frontend (terminal, sdl2 overlay, or a future web UI) the same way.
type Breakpoints struct {
	addrs map[uint16]bool
	state RunState
}

// NewBreakpoints returns a controller starting in the Running state.
func NewBreakpoints() *Breakpoints {
	return &Breakpoints{addrs: make(map[uint16]bool)}
}

func (b *Breakpoints) Set(pc uint16)          { b.addrs[pc] = true }
func (b *Breakpoints) Clear(pc uint16)        { delete(b.addrs, pc) }
func (b *Breakpoints) Has(pc uint16) bool     { return b.addrs[pc] }
func (b *Breakpoints) State() RunState        { return b.state }
func (b *Breakpoints) SetState(s RunState)    { b.state = s }

// ShouldBreak reports whether execution should stop before running the
// instruction at pc, given the current run state.
func (b *Breakpoints) ShouldBreak(pc uint16) bool {
	switch b.state {
	case Paused:
		return true
	case SteppingInstruction:
		b.state = Paused
		return true
	default:
		return b.addrs[pc]
	}
}

// Debugger is the hook spec.md §6 describes: a pre-decode observer of every
// CPU fetch, plus a bus handler over the full address space that defaults
// to PassThrough so an attached debugger never changes emulation behavior
// on its own. The system orchestrator calls Init once at startup and
// OnDecode/TakeCPUSnapshot/CheckSignal once per step (spec.md §5 step 1).
type Debugger interface {
	bus.Handler

	// Init is called once, after the bus and every peripheral have been
	// wired, so the debugger can register its own bookkeeping.
	Init(b *bus.Bus)

	// CheckSignal is polled once per step; returning false asks the
	// orchestrator to pause before running the next instruction (used to
	// implement breakpoints and single-stepping).
	CheckSignal() bool

	// TakeCPUSnapshot is handed a fresh register snapshot after every step.
	TakeCPUSnapshot(state CPUState)

	// OnDecode fires immediately before the CPU fetches the opcode at PC —
	// the "debugger pre-decode hook" in the step ordering contract.
	OnDecode(b *bus.Bus)
}

// NoopDebugger is the empty implementation: every method is a no-op, and
// its bus handler always yields PassThrough, exactly as spec.md §6 requires
// of the default debugger.
type NoopDebugger struct{}

var _ Debugger = NoopDebugger{}

func (NoopDebugger) Init(*bus.Bus)                 {}
func (NoopDebugger) CheckSignal() bool              { return true }
func (NoopDebugger) TakeCPUSnapshot(CPUState)       {}
func (NoopDebugger) OnDecode(*bus.Bus)              {}
func (NoopDebugger) OnRead(uint16) (uint8, bool)    { return 0, false }
func (NoopDebugger) OnWrite(uint16, uint8) bool     { return false }

// Attach registers the debugger's overlapping full-address-space handler
// (spec.md §4.2: "a special overlapping range (0x0000, 0xFFFF) is reserved
// for the debugger, which observes every access").
func Attach(d Debugger, b *bus.Bus) {
	b.AddHandler(bus.Range{Start: 0x0000, End: 0xFFFF}, d)
}
