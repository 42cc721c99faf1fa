package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func romOfSize(banks int) []byte {
	rom := make([]byte, banks*0x4000)
	for bank := 0; bank < banks; bank++ {
		for i := 0; i < 0x4000; i++ {
			rom[bank*0x4000+i] = byte(bank)
		}
	}
	return rom
}

// TestMBC1_bankZeroRemap is testable property 7 / scenario S5: writing a
// bank number to 0x2000-0x3FFF remaps the 0x4000-0x7FFF window to that ROM
// bank, and bank 0 is remapped to bank 1 (it can never be banked out).
func TestMBC1_bankZeroRemap(t *testing.T) {
	m := NewMBC1(romOfSize(4), 0)

	assert.Equal(t, byte(1), m.Read(0x4000), "bank register defaults to 1")

	m.Write(0x2000, 0x02)
	assert.Equal(t, byte(2), m.Read(0x4000))

	m.Write(0x2000, 0x00)
	assert.Equal(t, byte(1), m.Read(0x4000), "writing 0 remaps to bank 1, never bank 0")

	assert.Equal(t, byte(0), m.Read(0x0000), "bank 0 is always mapped at 0x0000-0x3FFF")
}

func TestMBC1_ramGatedByEnableRegister(t *testing.T) {
	m := NewMBC1(romOfSize(2), 1)

	m.Write(0xA000, 0x55)
	assert.Equal(t, byte(0xFF), m.Read(0xA000), "RAM reads as FF until enabled")

	m.Write(0x0000, 0x0A) // enable
	m.Write(0xA000, 0x55)
	assert.Equal(t, byte(0x55), m.Read(0xA000))

	m.Write(0x0000, 0x00) // disable
	assert.Equal(t, byte(0xFF), m.Read(0xA000))
}

func TestMBC1_saveAndLoadRAMRoundTrip(t *testing.T) {
	m := NewMBC1(romOfSize(2), 1)
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x99)

	saved := m.SaveRAM()

	m2 := NewMBC1(romOfSize(2), 1)
	m2.LoadRAM(saved)
	m2.Write(0x0000, 0x0A)

	assert.Equal(t, byte(0x99), m2.Read(0xA000))
}
