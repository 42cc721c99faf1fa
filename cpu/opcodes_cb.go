package cpu

import "github.com/willemolding/rgy/bit"

// readReg8/writeReg8 map the standard LR35902 3-bit register encoding to CPU fields:
// 0=B 1=C 2=D 3=E 4=H 5=L 6=(HL) 7=A. Used by both the CB-prefixed table and
// the mechanical LD r,r' / ALU A,r blocks in opcodes.go.
func (c *CPU) readReg8(idx uint8) uint8 {
	switch idx {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.bus.Read8(c.getHL())
	default:
		return c.a
	}
}

func (c *CPU) writeReg8(idx uint8, v uint8) {
	switch idx {
	case 0:
		c.b = v
	case 1:
		c.c = v
	case 2:
		c.d = v
	case 3:
		c.e = v
	case 4:
		c.h = v
	case 5:
		c.l = v
	case 6:
		c.bus.Write8(c.getHL(), v)
	default:
		c.a = v
	}
}

// cbTable is built mechanically: the CB-prefixed map is fully regular, eight
// register operands (including (HL)) repeated across eight operation groups
// (rotate/shift family) plus BIT/RES/SET indexed by bit number 0-7.
var cbTable [256]opcode

func init() {
	rotateOps := [8]func(c *CPU, idx uint8){
		func(c *CPU, idx uint8) { c.cbApply(idx, c.rlc) },
		func(c *CPU, idx uint8) { c.cbApply(idx, c.rrc) },
		func(c *CPU, idx uint8) { c.cbApply(idx, c.rl) },
		func(c *CPU, idx uint8) { c.cbApply(idx, c.rr) },
		func(c *CPU, idx uint8) { c.cbApply(idx, c.sla) },
		func(c *CPU, idx uint8) { c.cbApply(idx, c.sra) },
		func(c *CPU, idx uint8) { c.cbApply(idx, c.swap) },
		func(c *CPU, idx uint8) { c.cbApply(idx, c.srl) },
	}

	for group := uint8(0); group < 8; group++ {
		for reg := uint8(0); reg < 8; reg++ {
			opByte := group*8 + reg
			g, r := group, reg
			cbTable[opByte] = func(c *CPU) int {
				rotateOps[g](c, r)
				c.setZFromResult(c.readReg8(r))
				if r == 6 {
					return 16
				}
				return 8
			}
		}
	}

	for bitIdx := uint8(0); bitIdx < 8; bitIdx++ {
		for reg := uint8(0); reg < 8; reg++ {
			opByte := 0x40 + bitIdx*8 + reg
			bi, r := bitIdx, reg
			cbTable[opByte] = func(c *CPU) int {
				c.testBit(bi, c.readReg8(r))
				if r == 6 {
					return 12
				}
				return 8
			}
		}
	}

	for bitIdx := uint8(0); bitIdx < 8; bitIdx++ {
		for reg := uint8(0); reg < 8; reg++ {
			opByte := 0x80 + bitIdx*8 + reg
			bi, r := bitIdx, reg
			cbTable[opByte] = func(c *CPU) int {
				c.writeReg8(r, bit.Clear(bi, c.readReg8(r)))
				if r == 6 {
					return 16
				}
				return 8
			}
		}
	}

	for bitIdx := uint8(0); bitIdx < 8; bitIdx++ {
		for reg := uint8(0); reg < 8; reg++ {
			opByte := 0xC0 + bitIdx*8 + reg
			bi, r := bitIdx, reg
			cbTable[opByte] = func(c *CPU) int {
				c.writeReg8(r, bit.Set(bi, c.readReg8(r)))
				if r == 6 {
					return 16
				}
				return 8
			}
		}
	}
}

// cbApply runs a rotate/shift helper (which both mutates and returns the new
// value through a pointer) against the register/memory operand named by idx.
func (c *CPU) cbApply(idx uint8, op func(r *uint8) uint8) {
	if idx == 6 {
		v := c.bus.Read8(c.getHL())
		op(&v)
		c.bus.Write8(c.getHL(), v)
		return
	}
	r := c.regPtr(idx)
	op(r)
}

// regPtr returns a pointer to the named 8-bit register field. Only valid for
// idx != 6 — (HL) has no addressable Go field, callers must special-case it
// (see cbApply).
func (c *CPU) regPtr(idx uint8) *uint8 {
	switch idx {
	case 0:
		return &c.b
	case 1:
		return &c.c
	case 2:
		return &c.d
	case 3:
		return &c.e
	case 4:
		return &c.h
	case 5:
		return &c.l
	default:
		return &c.a
	}
}
