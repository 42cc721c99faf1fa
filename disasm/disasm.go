// Package disasm implements a supplemental LR35902 disassembler
// (spec.md §5): walking ROM bytes into human-readable mnemonics, driven by
// the same register-index regularities cpu's opcode tables use, for the
// debugger and the standalone rgydisasm command.
package disasm

import (
	"fmt"
	"strings"

	"github.com/willemolding/rgy/bit"
)

// Line is a single disassembled instruction.
type Line struct {
	Address     uint16
	Instruction string
	Length      int
}

// MemoryReader is the minimal read capability DisassembleAt needs.
type MemoryReader interface {
	Read8(address uint16) uint8
}

var reg8Names = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
var reg16Names = [4]string{"BC", "DE", "HL", "SP"}
var condNames = [4]string{"NZ", "Z", "NC", "C"}
var rotateNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

var instructionLengths [256]int
var instructionTemplates [256]string
var cbTemplates [256]string

func init() {
	for i := range instructionLengths {
		instructionLengths[i] = 1
		instructionTemplates[i] = fmt.Sprintf("DB 0x%02X", i)
	}

	for dst := 0; dst < 8; dst++ {
		for src := 0; src < 8; src++ {
			opByte := 0x40 + dst*8 + src
			if opByte == 0x76 {
				continue
			}
			instructionTemplates[opByte] = fmt.Sprintf("LD %s,%s", reg8Names[dst], reg8Names[src])
		}
	}
	instructionTemplates[0x76] = "HALT"

	aluNames := [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}
	for group := 0; group < 8; group++ {
		for reg := 0; reg < 8; reg++ {
			opByte := 0x80 + group*8 + reg
			instructionTemplates[opByte] = aluNames[group] + reg8Names[reg]
		}
	}

	for reg := 0; reg < 4; reg++ {
		instructionTemplates[0x01+reg*0x10] = fmt.Sprintf("LD %s,0x%%04X", reg16Names[reg])
		instructionLengths[0x01+reg*0x10] = 3
		instructionTemplates[0x03+reg*0x10] = fmt.Sprintf("INC %s", reg16Names[reg])
		instructionTemplates[0x0B+reg*0x10] = fmt.Sprintf("DEC %s", reg16Names[reg])
		instructionTemplates[0x09+reg*0x10] = fmt.Sprintf("ADD HL,%s", reg16Names[reg])
		instructionTemplates[0xC5+reg*0x10] = fmt.Sprintf("PUSH %s", pushPopName(reg))
		instructionTemplates[0xC1+reg*0x10] = fmt.Sprintf("POP %s", pushPopName(reg))
	}

	simple := map[uint8]string{
		0x00: "NOP", 0x02: "LD (BC),A", 0x0A: "LD A,(BC)", 0x07: "RLCA", 0x0F: "RRCA",
		0x10: "STOP", 0x12: "LD (DE),A", 0x17: "RLA", 0x1A: "LD A,(DE)", 0x1F: "RRA",
		0x22: "LD (HL+),A", 0x27: "DAA", 0x2A: "LD A,(HL+)", 0x2F: "CPL",
		0x32: "LD (HL-),A", 0x37: "SCF", 0x3A: "LD A,(HL-)", 0x3F: "CCF",
		0xC3: "JP 0x%04X", 0xC9: "RET", 0xCD: "CALL 0x%04X", 0xD9: "RETI",
		0xE2: "LD (C),A", 0xE9: "JP (HL)", 0xEA: "LD (%04X),A",
		0xF2: "LD A,(C)", 0xF3: "DI", 0xF9: "LD SP,HL", 0xFA: "LD A,(0x%04X)", 0xFB: "EI",
		0x18: "JR 0x%02X", 0x08: "LD (0x%04X),SP",
		0xC6: "ADD A,0x%02X", 0xCE: "ADC A,0x%02X", 0xD6: "SUB 0x%02X", 0xDE: "SBC A,0x%02X",
		0xE6: "AND 0x%02X", 0xEE: "XOR 0x%02X", 0xF6: "OR 0x%02X", 0xFE: "CP 0x%02X",
		0x06: "LD B,0x%02X", 0x0E: "LD C,0x%02X", 0x16: "LD D,0x%02X", 0x1E: "LD E,0x%02X",
		0x26: "LD H,0x%02X", 0x2E: "LD L,0x%02X", 0x36: "LD (HL),0x%02X", 0x3E: "LD A,0x%02X",
		0xE0: "LDH (0x%02X),A", 0xF0: "LDH A,(0x%02X)",
		0xE8: "ADD SP,%d", 0xF8: "LD HL,SP+%d",
	}
	lengths := map[uint8]int{
		0xC3: 3, 0xCD: 3, 0xEA: 3, 0xFA: 3, 0x08: 3,
		0x18: 2, 0xC6: 2, 0xCE: 2, 0xD6: 2, 0xDE: 2, 0xE6: 2, 0xEE: 2, 0xF6: 2, 0xFE: 2,
		0x06: 2, 0x0E: 2, 0x16: 2, 0x1E: 2, 0x26: 2, 0x2E: 2, 0x36: 2, 0x3E: 2,
		0xE0: 2, 0xF0: 2, 0xE8: 2, 0xF8: 2,
	}
	for op, tmpl := range simple {
		instructionTemplates[op] = tmpl
		if l, ok := lengths[op]; ok {
			instructionLengths[op] = l
		}
	}

	for i, cond := range condNames {
		jr := uint8(0x20 + i*8)
		instructionTemplates[jr] = "JR " + cond + ",0x%02X"
		instructionLengths[jr] = 2

		jp := uint8(0xC2 + i*8)
		instructionTemplates[jp] = "JP " + cond + ",0x%04X"
		instructionLengths[jp] = 3

		call := uint8(0xC4 + i*8)
		instructionTemplates[call] = "CALL " + cond + ",0x%04X"
		instructionLengths[call] = 3

		ret := uint8(0xC0 + i*8)
		instructionTemplates[ret] = "RET " + cond
	}

	for i := uint8(0); i < 8; i++ {
		instructionTemplates[0xC7+i*8] = fmt.Sprintf("RST 0x%02X", i*8)
	}

	for group := 0; group < 8; group++ {
		for reg := 0; reg < 8; reg++ {
			cbTemplates[group*8+reg] = rotateNames[group] + " " + reg8Names[reg]
		}
	}
	for bitIdx := 0; bitIdx < 8; bitIdx++ {
		for reg := 0; reg < 8; reg++ {
			cbTemplates[0x40+bitIdx*8+reg] = fmt.Sprintf("BIT %d,%s", bitIdx, reg8Names[reg])
			cbTemplates[0x80+bitIdx*8+reg] = fmt.Sprintf("RES %d,%s", bitIdx, reg8Names[reg])
			cbTemplates[0xC0+bitIdx*8+reg] = fmt.Sprintf("SET %d,%s", bitIdx, reg8Names[reg])
		}
	}
}

func pushPopName(reg int) string {
	if reg == 3 {
		return "AF"
	}
	return reg16Names[reg]
}

// DisassembleAt disassembles the instruction at pc.
func DisassembleAt(pc uint16, mem MemoryReader) Line {
	opByte := mem.Read8(pc)

	if opByte == 0xCB {
		cbByte := mem.Read8(pc + 1)
		return Line{Address: pc, Instruction: "CB " + cbTemplates[cbByte], Length: 2}
	}

	length := instructionLengths[opByte]
	template := instructionTemplates[opByte]

	var instruction string
	switch length {
	case 2:
		n := mem.Read8(pc + 1)
		if strings.Contains(template, "%d") {
			instruction = fmt.Sprintf(template, int8(n))
		} else {
			instruction = fmt.Sprintf(template, n)
		}
	case 3:
		n := mem.Read8(pc + 1)
		nn := bit.Combine(mem.Read8(pc+2), n)
		instruction = fmt.Sprintf(template, nn)
	default:
		instruction = template
	}

	return Line{Address: pc, Instruction: instruction, Length: length}
}

// DisassembleRange disassembles count instructions starting at pc.
func DisassembleRange(pc uint16, count int, mem MemoryReader) []Line {
	lines := make([]Line, 0, count)
	for i := 0; i < count; i++ {
		line := DisassembleAt(pc, mem)
		lines = append(lines, line)
		pc += uint16(line.Length)
	}
	return lines
}

// Format renders a line for display, marking the current PC.
func Format(line Line, isCurrentPC bool) string {
	prefix := " "
	if isCurrentPC {
		prefix = ">"
	}
	return fmt.Sprintf("%s0x%04X: %s", prefix, line.Address, line.Instruction)
}
