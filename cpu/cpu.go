// Package cpu implements the LR35902 interpreter: the full primary and
// CB-prefixed opcode tables, flag semantics, and interrupt/HALT servicing
// (spec.md §4.1). Execution is at M-cycle granularity — Step returns the
// T-cycle cost of the instruction it ran, which callers feed to every other
// peripheral's Tick so the whole system advances in lockstep.
package cpu

import (
	"fmt"

	"github.com/willemolding/rgy/bit"
	"github.com/willemolding/rgy/bus"
	"github.com/willemolding/rgy/interrupt"
)

// Flag is one of the 4 flag bits packed into the low byte of AF.
type Flag uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10
)

// opcode is one decoded instruction's executor. It returns the T-cycle cost,
// which varies for conditional jumps/calls/returns depending on whether the
// branch was taken.
type opcode func(c *CPU) int

// CPU holds the full LR35902 register file plus the handful of
// execution-state flags (IME, HALT, the HALT bug latch) the instruction
// stream and interrupt servicing need to agree on.
type CPU struct {
	bus *bus.Bus
	irq *interrupt.Controller

	a, f       uint8
	b, c       uint8
	d, e       uint8
	h, l       uint8
	sp, pc     uint16

	currentOpcode uint8

	ime           bool
	imePending    bool // EI's enable takes effect after the *next* instruction
	halted        bool
	haltBugActive bool // next fetch re-reads the same byte (HALT-with-IME-off quirk)
	stopped       bool
}

// New constructs a CPU wired to bus and irq, with registers at their
// post-boot-ROM power-on values (spec.md §4.1 "reset state").
func New(b *bus.Bus, irq *interrupt.Controller) *CPU {
	c := &CPU{bus: b, irq: irq}
	c.Reset()
	return c
}

// Reset restores DMG post-boot-ROM register values.
func (c *CPU) Reset() {
	c.a, c.f = 0x01, 0xB0
	c.b, c.c = 0x00, 0x13
	c.d, c.e = 0x00, 0xD8
	c.h, c.l = 0x01, 0x4D
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.ime = false
	c.imePending = false
	c.halted = false
	c.haltBugActive = false
	c.stopped = false
}

// PC reports the program counter, used by the debugger and disassembler.
func (c *CPU) PC() uint16 { return c.pc }

// IME reports whether interrupts are currently enabled.
func (c *CPU) IME() bool { return c.ime }

// Halted reports whether the CPU is in the HALT low-power state.
func (c *CPU) Halted() bool { return c.halted }

// Registers is a point-in-time copy of the full register file, used by the
// debugger to take snapshots without exposing the live CPU fields.
type Registers struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	SP   uint16
	PC   uint16
	IME  bool
}

// Snapshot returns the current register file.
func (c *CPU) Snapshot() Registers {
	return Registers{
		A: c.a, F: c.f,
		B: c.b, C: c.c,
		D: c.d, E: c.e,
		H: c.h, L: c.l,
		SP:  c.sp,
		PC:  c.pc,
		IME: c.ime,
	}
}

// Step runs the interrupt check, then either services a pending interrupt or
// decodes and executes one instruction, and returns the T-cycle cost.
func (c *CPU) Step() int {
	if cycles, serviced := c.serviceInterrupt(); serviced {
		return cycles
	}

	if c.halted {
		if c.irq.Pending() {
			c.halted = false
		} else {
			return 4
		}
	}

	if c.imePending {
		c.ime = true
		c.imePending = false
	}

	opByte := c.fetch()
	if c.haltBugActive {
		c.pc--
		c.haltBugActive = false
	}

	return c.dispatch(opByte)
}

// serviceInterrupt runs the interrupt acknowledgment sequence (spec.md §4.4):
// push PC, jump to the line's vector, clear IF, disable IME — 20 cycles,
// plus it's what wakes a HALTed CPU even with IME clear.
func (c *CPU) serviceInterrupt() (int, bool) {
	if c.halted && !c.ime && c.irq.Pending() {
		c.halted = false
	}

	if !c.ime {
		return 0, false
	}

	line, ok := c.irq.NextToService()
	if !ok {
		return 0, false
	}

	c.halted = false
	c.ime = false
	c.irq.Acknowledge(line)
	c.pushStack(c.pc)
	c.pc = line.Vector()
	return 20, true
}

func (c *CPU) fetch() uint8 {
	v := c.bus.Read8(c.pc)
	c.pc++
	return v
}

func (c *CPU) dispatch(opByte uint8) int {
	if opByte == 0xCB {
		cbByte := c.fetch()
		fn := cbTable[cbByte]
		if fn == nil {
			panic(fmt.Sprintf("cpu: unimplemented CB opcode 0x%02X", cbByte))
		}
		return fn(c)
	}

	c.currentOpcode = opByte
	fn := primaryTable[opByte]
	if fn == nil {
		panic(fmt.Sprintf("cpu: unimplemented opcode 0x%02X", opByte))
	}
	return fn(c)
}

// -- flag helpers --

func (c *CPU) setFlag(flag Flag)   { c.f |= uint8(flag) }
func (c *CPU) resetFlag(flag Flag) { c.f &^= uint8(flag) }
func (c *CPU) isSetFlag(flag Flag) bool { return c.f&uint8(flag) != 0 }

func (c *CPU) setFlagToCondition(flag Flag, condition bool) {
	if condition {
		c.setFlag(flag)
	} else {
		c.resetFlag(flag)
	}
}

func (c *CPU) flagToBit(flag Flag) uint8 {
	if c.isSetFlag(flag) {
		return 1
	}
	return 0
}

// -- register pair helpers --

func (c *CPU) getAF() uint16 { return bit.Combine(c.a, c.f&0xF0) }
func (c *CPU) setAF(v uint16) {
	c.a = bit.High(v)
	c.f = bit.Low(v) & 0xF0
}

func (c *CPU) getBC() uint16  { return bit.Combine(c.b, c.c) }
func (c *CPU) setBC(v uint16) { c.b, c.c = bit.High(v), bit.Low(v) }

func (c *CPU) getDE() uint16  { return bit.Combine(c.d, c.e) }
func (c *CPU) setDE(v uint16) { c.d, c.e = bit.High(v), bit.Low(v) }

func (c *CPU) getHL() uint16  { return bit.Combine(c.h, c.l) }
func (c *CPU) setHL(v uint16) { c.h, c.l = bit.High(v), bit.Low(v) }

func (c *CPU) readImmediate() uint8 {
	return c.fetch()
}

func (c *CPU) readImmediateWord() uint16 {
	low := c.fetch()
	high := c.fetch()
	return bit.Combine(high, low)
}
