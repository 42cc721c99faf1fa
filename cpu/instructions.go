package cpu

import "github.com/willemolding/rgy/bit"

// -- stack --

func (c *CPU) pushStack(v uint16) {
	c.sp--
	c.bus.Write8(c.sp, bit.High(v))
	c.sp--
	c.bus.Write8(c.sp, bit.Low(v))
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read8(c.sp)
	c.sp++
	high := c.bus.Read8(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

// -- 8-bit inc/dec --

func (c *CPU) inc(r *uint8) {
	*r++
	v := *r
	c.setFlagToCondition(zeroFlag, v == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, v&0x0F == 0x00)
}

func (c *CPU) dec(r *uint8) {
	*r--
	v := *r
	c.setFlagToCondition(zeroFlag, v == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, v&0x0F == 0x0F)
}

// -- rotates/shifts (shared between RLCA-family and CB-prefixed forms;
// the accumulator-only forms always clear Z, the CB forms set Z=result==0) --

func (c *CPU) rlc(r *uint8) uint8 {
	v := *r
	carry := v>>7 != 0
	v = (v << 1) | b2u8(carry)
	*r = v
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
	return v
}

func (c *CPU) rl(r *uint8) uint8 {
	v := *r
	oldCarry := c.flagToBit(carryFlag)
	newCarry := v>>7 != 0
	v = (v << 1) | oldCarry
	*r = v
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, newCarry)
	return v
}

func (c *CPU) rrc(r *uint8) uint8 {
	v := *r
	carry := v&1 != 0
	v = (v >> 1) | (b2u8(carry) << 7)
	*r = v
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
	return v
}

func (c *CPU) rr(r *uint8) uint8 {
	v := *r
	oldCarry := c.flagToBit(carryFlag)
	newCarry := v&1 != 0
	v = (v >> 1) | (oldCarry << 7)
	*r = v
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, newCarry)
	return v
}

func (c *CPU) sla(r *uint8) uint8 {
	v := *r
	carry := v>>7 != 0
	v <<= 1
	*r = v
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
	return v
}

func (c *CPU) sra(r *uint8) uint8 {
	v := *r
	carry := v&1 != 0
	v = (v >> 1) | (v & 0x80)
	*r = v
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
	return v
}

func (c *CPU) srl(r *uint8) uint8 {
	v := *r
	carry := v&1 != 0
	v >>= 1
	*r = v
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
	return v
}

func (c *CPU) swap(r *uint8) uint8 {
	v := *r
	v = (v << 4) | (v >> 4)
	*r = v
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
	return v
}

func b2u8(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func (c *CPU) setZFromResult(v uint8) {
	c.setFlagToCondition(zeroFlag, v == 0)
}

// -- 8-bit arithmetic on A --

func (c *CPU) addToA(value uint8) {
	a := c.a
	result := a + value
	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (a&0xF)+(value&0xF) > 0xF)
	c.setFlagToCondition(carryFlag, uint16(a)+uint16(value) > 0xFF)
	c.a = result
}

func (c *CPU) adcToA(value uint8) {
	a := c.a
	carry := c.flagToBit(carryFlag)
	result := uint16(a) + uint16(value) + uint16(carry)
	c.a = uint8(result)
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (a&0xF)+(value&0xF)+carry > 0xF)
	c.setFlagToCondition(carryFlag, result > 0xFF)
}

func (c *CPU) sub(value uint8) {
	a := c.a
	c.a = a - value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(carryFlag, a < value)
	c.setFlagToCondition(halfCarryFlag, (a&0xF) < (value&0xF))
}

func (c *CPU) sbc(value uint8) {
	a := c.a
	carry := c.flagToBit(carryFlag)
	result := int(a) - int(value) - int(carry)
	c.a = uint8(result)
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(carryFlag, result < 0)
	c.setFlagToCondition(halfCarryFlag, (int(a)&0xF)-(int(value)&0xF)-int(carry) < 0)
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) cp(value uint8) {
	a := c.a
	result := a - value
	c.setFlagToCondition(zeroFlag, result == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(carryFlag, a < value)
	c.setFlagToCondition(halfCarryFlag, (a&0xF) < (value&0xF))
}

// -- 16-bit arithmetic --

func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	result := hl + value
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (hl&0xFFF)+(value&0xFFF) > 0xFFF)
	c.setFlagToCondition(carryFlag, uint32(hl)+uint32(value) > 0xFFFF)
	c.setHL(result)
}

// addSPSigned implements ADD SP,e8 / LD HL,SP+e8 — both use the same 8-bit
// signed-immediate, unsigned-byte-carry semantics (the flags are computed
// as if adding the unsigned immediate byte to the low byte of SP).
func (c *CPU) addSPSigned(sp uint16, e int8) uint16 {
	result := uint16(int32(sp) + int32(e))
	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (sp&0xF)+(uint16(e)&0xF) > 0xF)
	c.setFlagToCondition(carryFlag, (sp&0xFF)+(uint16(e)&0xFF) > 0xFF)
	return result
}

// -- bit ops (CB-prefixed) --

func (c *CPU) testBit(index uint8, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

// -- control flow --

func (c *CPU) jr() {
	offset := int8(c.readImmediate())
	c.pc = uint16(int32(c.pc) + int32(offset))
}

func (c *CPU) jp(addr uint16) {
	c.pc = addr
}

func (c *CPU) call(addr uint16) {
	c.pushStack(c.pc)
	c.pc = addr
}

func (c *CPU) ret() {
	c.pc = c.popStack()
}

func (c *CPU) daa() {
	a := c.a
	adjust := uint8(0)
	carry := false

	if c.isSetFlag(halfCarryFlag) || (!c.isSetFlag(subFlag) && a&0xF > 9) {
		adjust |= 0x06
	}
	if c.isSetFlag(carryFlag) || (!c.isSetFlag(subFlag) && a > 0x99) {
		adjust |= 0x60
		carry = true
	}

	if c.isSetFlag(subFlag) {
		a -= adjust
	} else {
		a += adjust
	}

	c.a = a
	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
}
