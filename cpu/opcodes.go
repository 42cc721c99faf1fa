package cpu

import (
	"fmt"

	"github.com/willemolding/rgy/bit"
)

func illegal(opByte uint8) opcode {
	return func(c *CPU) int {
		panic(fmt.Sprintf("cpu: illegal opcode 0x%02X at 0x%04X", opByte, c.pc-1))
	}
}

var primaryTable [256]opcode

func init() {
	for i := range primaryTable {
		primaryTable[i] = illegal(uint8(i))
	}

	// -- 0x00-0x0F --
	primaryTable[0x00] = func(c *CPU) int { return 4 } // NOP
	primaryTable[0x01] = func(c *CPU) int { c.setBC(c.readImmediateWord()); return 12 }
	primaryTable[0x02] = func(c *CPU) int { c.bus.Write8(c.getBC(), c.a); return 8 }
	primaryTable[0x03] = func(c *CPU) int { c.setBC(c.getBC() + 1); return 8 }
	primaryTable[0x04] = func(c *CPU) int { c.inc(&c.b); return 4 }
	primaryTable[0x05] = func(c *CPU) int { c.dec(&c.b); return 4 }
	primaryTable[0x06] = func(c *CPU) int { c.b = c.readImmediate(); return 8 }
	primaryTable[0x07] = func(c *CPU) int { c.rlc(&c.a); c.resetFlag(zeroFlag); return 4 }
	primaryTable[0x08] = func(c *CPU) int {
		addr := c.readImmediateWord()
		c.bus.Write8(addr, bit.Low(c.sp))
		c.bus.Write8(addr+1, bit.High(c.sp))
		return 20
	}
	primaryTable[0x09] = func(c *CPU) int { c.addToHL(c.getBC()); return 8 }
	primaryTable[0x0A] = func(c *CPU) int { c.a = c.bus.Read8(c.getBC()); return 8 }
	primaryTable[0x0B] = func(c *CPU) int { c.setBC(c.getBC() - 1); return 8 }
	primaryTable[0x0C] = func(c *CPU) int { c.inc(&c.c); return 4 }
	primaryTable[0x0D] = func(c *CPU) int { c.dec(&c.c); return 4 }
	primaryTable[0x0E] = func(c *CPU) int { c.c = c.readImmediate(); return 8 }
	primaryTable[0x0F] = func(c *CPU) int { c.rrc(&c.a); c.resetFlag(zeroFlag); return 4 }

	// -- 0x10-0x1F --
	primaryTable[0x10] = func(c *CPU) int { c.readImmediate(); c.stopped = true; return 4 }
	primaryTable[0x11] = func(c *CPU) int { c.setDE(c.readImmediateWord()); return 12 }
	primaryTable[0x12] = func(c *CPU) int { c.bus.Write8(c.getDE(), c.a); return 8 }
	primaryTable[0x13] = func(c *CPU) int { c.setDE(c.getDE() + 1); return 8 }
	primaryTable[0x14] = func(c *CPU) int { c.inc(&c.d); return 4 }
	primaryTable[0x15] = func(c *CPU) int { c.dec(&c.d); return 4 }
	primaryTable[0x16] = func(c *CPU) int { c.d = c.readImmediate(); return 8 }
	primaryTable[0x17] = func(c *CPU) int { c.rl(&c.a); c.resetFlag(zeroFlag); return 4 }
	primaryTable[0x18] = func(c *CPU) int { c.jr(); return 12 }
	primaryTable[0x19] = func(c *CPU) int { c.addToHL(c.getDE()); return 8 }
	primaryTable[0x1A] = func(c *CPU) int { c.a = c.bus.Read8(c.getDE()); return 8 }
	primaryTable[0x1B] = func(c *CPU) int { c.setDE(c.getDE() - 1); return 8 }
	primaryTable[0x1C] = func(c *CPU) int { c.inc(&c.e); return 4 }
	primaryTable[0x1D] = func(c *CPU) int { c.dec(&c.e); return 4 }
	primaryTable[0x1E] = func(c *CPU) int { c.e = c.readImmediate(); return 8 }
	primaryTable[0x1F] = func(c *CPU) int { c.rr(&c.a); c.resetFlag(zeroFlag); return 4 }

	// -- 0x20-0x2F --
	primaryTable[0x20] = func(c *CPU) int { return c.jrConditional(!c.isSetFlag(zeroFlag)) }
	primaryTable[0x21] = func(c *CPU) int { c.setHL(c.readImmediateWord()); return 12 }
	primaryTable[0x22] = func(c *CPU) int { c.bus.Write8(c.getHL(), c.a); c.setHL(c.getHL() + 1); return 8 }
	primaryTable[0x23] = func(c *CPU) int { c.setHL(c.getHL() + 1); return 8 }
	primaryTable[0x24] = func(c *CPU) int { c.inc(&c.h); return 4 }
	primaryTable[0x25] = func(c *CPU) int { c.dec(&c.h); return 4 }
	primaryTable[0x26] = func(c *CPU) int { c.h = c.readImmediate(); return 8 }
	primaryTable[0x27] = func(c *CPU) int { c.daa(); return 4 }
	primaryTable[0x28] = func(c *CPU) int { return c.jrConditional(c.isSetFlag(zeroFlag)) }
	primaryTable[0x29] = func(c *CPU) int { c.addToHL(c.getHL()); return 8 }
	primaryTable[0x2A] = func(c *CPU) int { c.a = c.bus.Read8(c.getHL()); c.setHL(c.getHL() + 1); return 8 }
	primaryTable[0x2B] = func(c *CPU) int { c.setHL(c.getHL() - 1); return 8 }
	primaryTable[0x2C] = func(c *CPU) int { c.inc(&c.l); return 4 }
	primaryTable[0x2D] = func(c *CPU) int { c.dec(&c.l); return 4 }
	primaryTable[0x2E] = func(c *CPU) int { c.l = c.readImmediate(); return 8 }
	primaryTable[0x2F] = func(c *CPU) int {
		c.a = ^c.a
		c.setFlag(subFlag)
		c.setFlag(halfCarryFlag)
		return 4
	}

	// -- 0x30-0x3F --
	primaryTable[0x30] = func(c *CPU) int { return c.jrConditional(!c.isSetFlag(carryFlag)) }
	primaryTable[0x31] = func(c *CPU) int { c.sp = c.readImmediateWord(); return 12 }
	primaryTable[0x32] = func(c *CPU) int { c.bus.Write8(c.getHL(), c.a); c.setHL(c.getHL() - 1); return 8 }
	primaryTable[0x33] = func(c *CPU) int { c.sp++; return 8 }
	primaryTable[0x34] = func(c *CPU) int {
		v := c.bus.Read8(c.getHL())
		c.inc(&v)
		c.bus.Write8(c.getHL(), v)
		return 12
	}
	primaryTable[0x35] = func(c *CPU) int {
		v := c.bus.Read8(c.getHL())
		c.dec(&v)
		c.bus.Write8(c.getHL(), v)
		return 12
	}
	primaryTable[0x36] = func(c *CPU) int { c.bus.Write8(c.getHL(), c.readImmediate()); return 12 }
	primaryTable[0x37] = func(c *CPU) int {
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.setFlag(carryFlag)
		return 4
	}
	primaryTable[0x38] = func(c *CPU) int { return c.jrConditional(c.isSetFlag(carryFlag)) }
	primaryTable[0x39] = func(c *CPU) int { c.addToHL(c.sp); return 8 }
	primaryTable[0x3A] = func(c *CPU) int { c.a = c.bus.Read8(c.getHL()); c.setHL(c.getHL() - 1); return 8 }
	primaryTable[0x3B] = func(c *CPU) int { c.sp--; return 8 }
	primaryTable[0x3C] = func(c *CPU) int { c.inc(&c.a); return 4 }
	primaryTable[0x3D] = func(c *CPU) int { c.dec(&c.a); return 4 }
	primaryTable[0x3E] = func(c *CPU) int { c.a = c.readImmediate(); return 8 }
	primaryTable[0x3F] = func(c *CPU) int {
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
		return 4
	}

	// -- 0x40-0x7F: LD r,r' (0x76 is HALT, not a load) --
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			opByte := 0x40 + dst*8 + src
			if opByte == 0x76 {
				continue
			}
			d, s := dst, src
			primaryTable[opByte] = func(c *CPU) int {
				c.writeReg8(d, c.readReg8(s))
				if d == 6 || s == 6 {
					return 8
				}
				return 4
			}
		}
	}
	primaryTable[0x76] = func(c *CPU) int {
		if !c.ime && c.irq.Pending() {
			c.haltBugActive = true
		} else {
			c.halted = true
		}
		return 4
	}

	// -- 0x80-0xBF: ALU A,r --
	aluOps := [8]func(c *CPU, v uint8){
		func(c *CPU, v uint8) { c.addToA(v) },
		func(c *CPU, v uint8) { c.adcToA(v) },
		func(c *CPU, v uint8) { c.sub(v) },
		func(c *CPU, v uint8) { c.sbc(v) },
		func(c *CPU, v uint8) { c.and(v) },
		func(c *CPU, v uint8) { c.xor(v) },
		func(c *CPU, v uint8) { c.or(v) },
		func(c *CPU, v uint8) { c.cp(v) },
	}
	for group := uint8(0); group < 8; group++ {
		for reg := uint8(0); reg < 8; reg++ {
			opByte := 0x80 + group*8 + reg
			g, r := group, reg
			primaryTable[opByte] = func(c *CPU) int {
				aluOps[g](c, c.readReg8(r))
				if r == 6 {
					return 8
				}
				return 4
			}
		}
	}

	// -- 0xC0-0xFF --
	primaryTable[0xC0] = func(c *CPU) int { return c.retConditional(!c.isSetFlag(zeroFlag)) }
	primaryTable[0xC1] = func(c *CPU) int { c.setBC(c.popStack()); return 12 }
	primaryTable[0xC2] = func(c *CPU) int { return c.jpConditional(!c.isSetFlag(zeroFlag)) }
	primaryTable[0xC3] = func(c *CPU) int { c.jp(c.readImmediateWord()); return 16 }
	primaryTable[0xC4] = func(c *CPU) int { return c.callConditional(!c.isSetFlag(zeroFlag)) }
	primaryTable[0xC5] = func(c *CPU) int { c.pushStack(c.getBC()); return 16 }
	primaryTable[0xC6] = func(c *CPU) int { c.addToA(c.readImmediate()); return 8 }
	primaryTable[0xC7] = func(c *CPU) int { c.call(0x00); return 16 }
	primaryTable[0xC8] = func(c *CPU) int { return c.retConditional(c.isSetFlag(zeroFlag)) }
	primaryTable[0xC9] = func(c *CPU) int { c.ret(); return 16 }
	primaryTable[0xCA] = func(c *CPU) int { return c.jpConditional(c.isSetFlag(zeroFlag)) }
	// 0xCB is handled directly in dispatch.
	primaryTable[0xCC] = func(c *CPU) int { return c.callConditional(c.isSetFlag(zeroFlag)) }
	primaryTable[0xCD] = func(c *CPU) int { c.call(c.readImmediateWord()); return 24 }
	primaryTable[0xCE] = func(c *CPU) int { c.adcToA(c.readImmediate()); return 8 }
	primaryTable[0xCF] = func(c *CPU) int { c.call(0x08); return 16 }

	primaryTable[0xD0] = func(c *CPU) int { return c.retConditional(!c.isSetFlag(carryFlag)) }
	primaryTable[0xD1] = func(c *CPU) int { c.setDE(c.popStack()); return 12 }
	primaryTable[0xD2] = func(c *CPU) int { return c.jpConditional(!c.isSetFlag(carryFlag)) }
	primaryTable[0xD4] = func(c *CPU) int { return c.callConditional(!c.isSetFlag(carryFlag)) }
	primaryTable[0xD5] = func(c *CPU) int { c.pushStack(c.getDE()); return 16 }
	primaryTable[0xD6] = func(c *CPU) int { c.sub(c.readImmediate()); return 8 }
	primaryTable[0xD7] = func(c *CPU) int { c.call(0x10); return 16 }
	primaryTable[0xD8] = func(c *CPU) int { return c.retConditional(c.isSetFlag(carryFlag)) }
	primaryTable[0xD9] = func(c *CPU) int { c.ret(); c.ime = true; return 16 }
	primaryTable[0xDA] = func(c *CPU) int { return c.jpConditional(c.isSetFlag(carryFlag)) }
	primaryTable[0xDC] = func(c *CPU) int { return c.callConditional(c.isSetFlag(carryFlag)) }
	primaryTable[0xDE] = func(c *CPU) int { c.sbc(c.readImmediate()); return 8 }
	primaryTable[0xDF] = func(c *CPU) int { c.call(0x18); return 16 }

	primaryTable[0xE0] = func(c *CPU) int {
		c.bus.Write8(0xFF00+uint16(c.readImmediate()), c.a)
		return 12
	}
	primaryTable[0xE1] = func(c *CPU) int { c.setHL(c.popStack()); return 12 }
	primaryTable[0xE2] = func(c *CPU) int { c.bus.Write8(0xFF00+uint16(c.c), c.a); return 8 }
	primaryTable[0xE5] = func(c *CPU) int { c.pushStack(c.getHL()); return 16 }
	primaryTable[0xE6] = func(c *CPU) int { c.and(c.readImmediate()); return 8 }
	primaryTable[0xE7] = func(c *CPU) int { c.call(0x20); return 16 }
	primaryTable[0xE8] = func(c *CPU) int {
		e := int8(c.readImmediate())
		c.sp = c.addSPSigned(c.sp, e)
		return 16
	}
	primaryTable[0xE9] = func(c *CPU) int { c.jp(c.getHL()); return 4 }
	primaryTable[0xEA] = func(c *CPU) int { c.bus.Write8(c.readImmediateWord(), c.a); return 16 }
	primaryTable[0xEE] = func(c *CPU) int { c.xor(c.readImmediate()); return 8 }
	primaryTable[0xEF] = func(c *CPU) int { c.call(0x28); return 16 }

	primaryTable[0xF0] = func(c *CPU) int {
		c.a = c.bus.Read8(0xFF00 + uint16(c.readImmediate()))
		return 12
	}
	primaryTable[0xF1] = func(c *CPU) int { c.setAF(c.popStack()); return 12 }
	primaryTable[0xF2] = func(c *CPU) int { c.a = c.bus.Read8(0xFF00 + uint16(c.c)); return 8 }
	primaryTable[0xF3] = func(c *CPU) int { c.ime = false; c.imePending = false; return 4 }
	primaryTable[0xF5] = func(c *CPU) int { c.pushStack(c.getAF()); return 16 }
	primaryTable[0xF6] = func(c *CPU) int { c.or(c.readImmediate()); return 8 }
	primaryTable[0xF7] = func(c *CPU) int { c.call(0x30); return 16 }
	primaryTable[0xF8] = func(c *CPU) int {
		e := int8(c.readImmediate())
		c.setHL(c.addSPSigned(c.sp, e))
		return 12
	}
	primaryTable[0xF9] = func(c *CPU) int { c.sp = c.getHL(); return 8 }
	primaryTable[0xFA] = func(c *CPU) int { c.a = c.bus.Read8(c.readImmediateWord()); return 16 }
	primaryTable[0xFB] = func(c *CPU) int { c.imePending = true; return 4 }
	primaryTable[0xFE] = func(c *CPU) int { c.cp(c.readImmediate()); return 8 }
	primaryTable[0xFF] = func(c *CPU) int { c.call(0x38); return 16 }
}

func (c *CPU) jrConditional(take bool) int {
	if take {
		c.jr()
		return 12
	}
	c.pc++
	return 8
}

func (c *CPU) jpConditional(take bool) int {
	addr := c.readImmediateWord()
	if take {
		c.jp(addr)
		return 16
	}
	return 12
}

func (c *CPU) callConditional(take bool) int {
	addr := c.readImmediateWord()
	if take {
		c.call(addr)
		return 24
	}
	return 12
}

func (c *CPU) retConditional(take bool) int {
	if take {
		c.ret()
		return 20
	}
	return 8
}
