// Package joypad implements the Game Boy's column-matrix input register at
// 0xFF00: two 4-bit button groups (d-pad, face buttons) multiplexed onto one
// nibble by the P1 select bits, with an edge-triggered interrupt when a
// previously-released key is pressed while its column is selected
// (spec.md §4.8).
package joypad

import (
	"github.com/willemolding/rgy/addr"
	"github.com/willemolding/rgy/bit"
	"github.com/willemolding/rgy/bus"
	"github.com/willemolding/rgy/interrupt"
)

// Key identifies one of the eight physical buttons.
type Key uint8

const (
	Right Key = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Joypad holds the live button state and the host-selected P1 column.
type Joypad struct {
	irq *interrupt.Controller

	buttons uint8 // active-low nibble: A, B, Select, Start
	dpad    uint8 // active-low nibble: Right, Left, Up, Down
	line    uint8 // P1 bits 5:4 as last written
}

func New(irq *interrupt.Controller) *Joypad {
	return &Joypad{irq: irq, buttons: 0x0F, dpad: 0x0F}
}

func (j *Joypad) Attach(b *bus.Bus) {
	b.AddHandler(bus.Range{Start: addr.P1, End: addr.P1}, j)
}

func (j *Joypad) OnRead(address uint16) (uint8, bool) {
	switch j.line {
	case 0x10:
		return j.dpad | 0xC0 | j.line, true
	case 0x20:
		return j.buttons | 0xC0 | j.line, true
	default:
		return 0xCF | j.line, true
	}
}

func (j *Joypad) OnWrite(address uint16, value uint8) bool {
	j.line = value & 0x30
	return true
}

// Press clears the key's bit (active-low) and, if its column is currently
// selected, raises the joypad interrupt on the falling edge.
func (j *Joypad) Press(key Key) {
	wasSet := j.bitFor(key) != 0

	switch keyGroup(key) {
	case 0:
		j.dpad = bit.Clear(keyIndex(key), j.dpad)
	case 1:
		j.buttons = bit.Clear(keyIndex(key), j.buttons)
	}

	if wasSet && j.columnSelected(key) {
		j.irq.Raise(addr.Joypad)
	}
}

// Release sets the key's bit back (active-low released state).
func (j *Joypad) Release(key Key) {
	switch keyGroup(key) {
	case 0:
		j.dpad = bit.Set(keyIndex(key), j.dpad)
	case 1:
		j.buttons = bit.Set(keyIndex(key), j.buttons)
	}
}

func (j *Joypad) bitFor(key Key) uint8 {
	switch keyGroup(key) {
	case 0:
		return j.dpad & (1 << keyIndex(key))
	default:
		return j.buttons & (1 << keyIndex(key))
	}
}

func (j *Joypad) columnSelected(key Key) bool {
	switch keyGroup(key) {
	case 0:
		return j.line == 0x10
	default:
		return j.line == 0x20
	}
}

func keyGroup(key Key) int {
	if key <= Down {
		return 0
	}
	return 1
}

func keyIndex(key Key) uint8 {
	if key <= Down {
		return uint8(key)
	}
	return uint8(key - A)
}
