// Package system is the orchestrator (spec.md §4, "System orchestrator"):
// it wires the bus, CPU, interrupt controller, GPU, timer, DMA, joypad,
// serial port, sound bus and cartridge together, and drives the fixed step
// ordering spec.md §5 specifies as a contract:
//
//  1. debugger pre-decode hook
//  2. CPU instruction fetch/execute
//  3. interrupt check
//  4. DMA advance
//  5. GPU advance
//  6. timer advance
//  7. serial advance
//  8. joypad poll
//  9. frequency adjust
//
// Steps 2-3 are collapsed into a single cpu.Step call: servicing a pending
// interrupt and fetching the next instruction are mutually exclusive on any
// given step, and the CPU package already enforces that a newly-raised
// interrupt is only honored on the step *after* the instruction that raised
// it completes (IME/HALT semantics in cpu.CPU.Step), which is what the
// ordering contract is protecting.
package system

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/willemolding/rgy/bus"
	"github.com/willemolding/rgy/cart"
	"github.com/willemolding/rgy/cpu"
	"github.com/willemolding/rgy/debug"
	"github.com/willemolding/rgy/dma"
	"github.com/willemolding/rgy/interrupt"
	"github.com/willemolding/rgy/joypad"
	"github.com/willemolding/rgy/serial"
	"github.com/willemolding/rgy/sound"
	"github.com/willemolding/rgy/timer"
	"github.com/willemolding/rgy/timing"
	"github.com/willemolding/rgy/video"
)

// Host is the set of collaborators spec.md §6 asks an embedder to supply.
// A zero-value NopHost (embedded) answers every call with an inert default
// so a System can run headless without a real frontend.
type Host interface {
	// Sched advances the host's own event loop; returning false terminates
	// the poll loop at the next step boundary (spec.md §5 "Cancellation").
	Sched() bool

	// VideoSend delivers one rendered scanline as it's composed, the way
	// the GPU itself produces frames one line at a time.
	VideoSend(line int, pixels [video.FramebufferWidth]uint32)

	// JoypadPressed polls the host's input surface for one button.
	JoypadPressed(key joypad.Key) bool

	// SoundPlay receives sound-bus trigger events; DSP synthesis itself is
	// the host's responsibility (spec.md §4.10). The sound bus reports
	// triggers only, so the orchestrator never calls SoundStop, and a
	// channel disable reaches the host as no event at all.
	SoundPlay(d sound.Descriptor)
	SoundStop(channel int)

	// Clock reports a monotonic wall-clock timestamp in microseconds, used
	// by the frequency governor (spec.md §4.9).
	Clock() int64

	// LoadRAM/SaveRAM persist battery-backed cartridge RAM across runs.
	LoadRAM() ([]byte, error)
	SaveRAM(data []byte) error
}

// NopHost answers every Host call with an inert default. Embed it in a
// partial host implementation to avoid implementing methods you don't need.
type NopHost struct{}

func (NopHost) Sched() bool                                   { return true }
func (NopHost) VideoSend(int, [video.FramebufferWidth]uint32) {}
func (NopHost) JoypadPressed(joypad.Key) bool                 { return false }
func (NopHost) SoundPlay(sound.Descriptor)                    {}
func (NopHost) SoundStop(int)                                 {}
func (NopHost) Clock() int64                                  { return time.Now().UnixMicro() }
func (NopHost) LoadRAM() ([]byte, error) { return nil, nil }
func (NopHost) SaveRAM([]byte) error     { return nil }

var _ Host = NopHost{}

// Config collects the orchestrator's tunables (spec.md §4.9 and §6).
type Config struct {
	// TargetFrequency is the effective CPU clock rate to pace to, in Hz.
	// Zero defaults to the real hardware rate (timing.CPUFrequency).
	TargetFrequency float64
	// SampleCycles is the governor's resampling window, in T-cycles. Zero
	// defaults to one frame's worth of cycles (timing.CyclesPerFrame).
	SampleCycles int
	// DelayUnit is the smallest sleep granularity the governor corrects in.
	DelayUnit time.Duration
	// NativeSpeed disables pacing entirely — full host throughput.
	NativeSpeed bool
	// CGB enables Color Game Boy register plumbing in the GPU.
	CGB bool
}

func (c Config) withDefaults() Config {
	if c.TargetFrequency == 0 {
		c.TargetFrequency = timing.CPUFrequency
	}
	if c.SampleCycles == 0 {
		c.SampleCycles = timing.CyclesPerFrame
	}
	if c.DelayUnit == 0 {
		c.DelayUnit = time.Millisecond
	}
	return c
}

// System owns every peripheral and drives the step loop.
type System struct {
	bus  *bus.Bus
	irq  *interrupt.Controller
	cpu  *cpu.CPU
	gpu  *video.GPU
	tmr  *timer.Timer
	dmaS *dma.Sequencer
	pad  *joypad.Joypad
	ser  *serial.Port
	snd  *sound.Bank
	cart *cart.Cartridge
	dbg  debug.Debugger

	host Host
	gov  *timing.Governor

	lastLine int
	cycles   uint64
}

// soundAdapter bridges sound.Speaker to the Host interface.
type soundAdapter struct{ host Host }

func (a soundAdapter) OnTrigger(d sound.Descriptor) { a.host.SoundPlay(d) }
func (a soundAdapter) OnMasterVolume(uint8, uint8, [4]bool, [4]bool, bool) {}

// New constructs a System from raw ROM bytes, wiring every peripheral onto
// a fresh bus in the order the handler-table contract (spec.md §4.2) and
// the DMA access gate (invariant 3) require. dbg may be nil, in which case
// debug.NoopDebugger is used.
func New(rom []byte, host Host, cfg Config, dbg debug.Debugger) (*System, error) {
	cfg = cfg.withDefaults()
	if host == nil {
		host = NopHost{}
	}
	if dbg == nil {
		dbg = debug.NoopDebugger{}
	}

	cartridge, err := cart.Load(rom)
	if err != nil {
		return nil, fmt.Errorf("system: %w", err)
	}

	if saved, err := host.LoadRAM(); err != nil {
		slog.Warn("system: load RAM failed", "error", err)
	} else if saved != nil {
		cartridge.LoadRAM(saved)
	}

	b := bus.New()
	irq := interrupt.New()
	gpu := video.New(irq, cfg.CGB)
	t := timer.New(irq)
	oam := gpu.OAMBytes()
	dmaSeq := dma.New(b, oam)
	gate := dma.NewGate(dmaSeq)
	pad := joypad.New(irq)
	ser := serial.New(irq)
	snd := sound.New(soundAdapter{host: host})

	// Registration order matters for reads (spec.md §4.2): the DMA gate
	// and the debugger's overlapping full-range handler go first so they
	// see every access ahead of the region owners.
	gate.Attach(b)
	debug.Attach(dbg, b)

	irq.Attach(b)
	t.Attach(b)
	dmaSeq.Attach(b)
	pad.Attach(b)
	ser.Attach(b)
	snd.Attach(b)
	gpu.Attach(b)
	cartridge.Attach(b)

	c := cpu.New(b, irq)
	dbg.Init(b)

	sys := &System{
		bus:  b,
		irq:  irq,
		cpu:  c,
		gpu:  gpu,
		tmr:  t,
		dmaS: dmaSeq,
		pad:  pad,
		ser:  ser,
		snd:  snd,
		cart: cartridge,
		dbg:  dbg,
		host: host,
		gov:  timing.NewGovernor(cfg.TargetFrequency, cfg.SampleCycles, cfg.DelayUnit, host.Clock),
		lastLine: gpu.Line(),
	}
	sys.gov.NativeSpeed(cfg.NativeSpeed)
	return sys, nil
}

// Step advances every peripheral by the cycle cost of exactly one CPU
// instruction (or interrupt service), in the fixed order spec.md §5
// requires, and returns the number of T-cycles consumed.
func (s *System) Step() int {
	s.dbg.OnDecode(s.bus)

	cycles := s.cpu.Step()

	s.dmaS.Tick(cycles)
	s.gpu.Tick(cycles)
	s.tmr.Tick(cycles)
	s.ser.Tick(cycles)
	s.pollJoypad()

	s.emitCompletedLines()

	s.dbg.TakeCPUSnapshot(s.snapshot())

	s.gov.Advance(cycles)
	s.cycles += uint64(cycles)

	return cycles
}

// Run drives Step in a loop until the host's Sched hook returns false or
// the debugger's CheckSignal requests a pause.
func (s *System) Run() {
	for s.host.Sched() && s.dbg.CheckSignal() {
		s.Step()
	}
}

// RunFrame runs Step until a full 70224-cycle frame has elapsed, for
// batch/headless callers that want one frame per call (spec.md scenario S3).
func (s *System) RunFrame() {
	total := 0
	for total < timing.CyclesPerFrame {
		total += s.Step()
	}
}

// FrameBuffer exposes the GPU's rendered output.
func (s *System) FrameBuffer() *video.FrameBuffer { return s.gpu.FrameBuffer() }

// CPU exposes the CPU for debugger/disassembler tooling.
func (s *System) CPU() *cpu.CPU { return s.cpu }

// Bus exposes the bus for debugger/disassembler tooling.
func (s *System) Bus() *bus.Bus { return s.bus }

// Cartridge exposes cartridge metadata and RAM persistence.
func (s *System) Cartridge() *cart.Cartridge { return s.cart }

// GPU exposes the GPU for debugger/tile-viewer tooling.
func (s *System) GPU() *video.GPU { return s.gpu }

// Shutdown persists battery-backed RAM through the host, if any exists.
func (s *System) Shutdown() error {
	data := s.cart.SaveRAM()
	if data == nil {
		return nil
	}
	return s.host.SaveRAM(data)
}

func (s *System) pollJoypad() {
	for _, key := range allKeys {
		if s.host.JoypadPressed(key) {
			s.pad.Press(key)
		} else {
			s.pad.Release(key)
		}
	}
}

var allKeys = [8]joypad.Key{
	joypad.Right, joypad.Left, joypad.Up, joypad.Down,
	joypad.A, joypad.B, joypad.Select, joypad.Start,
}

// emitCompletedLines forwards every scanline the GPU finished rendering
// since the last step to the host's video_send collaborator (spec.md §6).
// The GPU's LY only moves forward (or wraps at the end of V-Blank), so a
// single comparison against the previous line catches exactly the lines
// that were drawn in between.
func (s *System) emitCompletedLines() {
	line := s.gpu.Line()
	if line == s.lastLine {
		return
	}
	if s.lastLine < video.FramebufferHeight {
		s.host.VideoSend(s.lastLine, s.gpu.FrameBuffer().Row(s.lastLine))
	}
	s.lastLine = line
}

func (s *System) snapshot() debug.CPUState {
	return debug.ExtractCPUState(s.cpu, s.bus, s.cycles)
}
