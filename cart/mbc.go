package cart

// MBC is the interface every memory bank controller variant implements.
// Reads/writes here are in MBC-local address space: 0x0000-0x7FFF for ROM
// control, 0xA000-0xBFFF for external RAM — the cart.Cartridge bus handler
// translates bus addresses into these calls.
type MBC interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)

	// SaveRAM/LoadRAM expose battery-backed external RAM for host
	// persistence (spec.md §6 "Persisted state"). SaveRAM returns nil if
	// the variant has no external RAM; whether that RAM is battery-backed
	// is checked by Cartridge, not here.
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// New constructs the MBC variant selected by the header, wired to the given
// ROM bytes. Fatal per spec.md §7: an unrecognized variant has no sane
// fallback.
func New(h *Header, rom []byte) MBC {
	switch h.Type {
	case TypeNoMBC:
		return NewNoMBC(rom)
	case TypeMBC1:
		return NewMBC1(rom, h.RAMBankCount)
	case TypeMBC2:
		return NewMBC2(rom)
	case TypeMBC3:
		return NewMBC3(rom, h.RAMBankCount, h.HasRTC)
	case TypeMBC5:
		return NewMBC5(rom, h.RAMBankCount)
	default:
		panic("cart: unknown MBC type")
	}
}

// NoMBC is a cartridge with no banking hardware: ROM maps straight through
// and there is no external RAM.
type NoMBC struct {
	rom []byte
}

func NewNoMBC(rom []byte) *NoMBC {
	return &NoMBC{rom: rom}
}

func (m *NoMBC) Read(address uint16) uint8 {
	if int(address) < len(m.rom) {
		return m.rom[address]
	}
	return 0xFF
}

func (m *NoMBC) Write(address uint16, value uint8) {}
func (m *NoMBC) SaveRAM() []byte                   { return nil }
func (m *NoMBC) LoadRAM(data []byte)               {}

// MBC1 implements the most common banking chip: lower-5-bit ROM bank
// register, an upper-2-bit register shared between ROM and RAM banking
// depending on mode, and a banking-mode select (spec.md §4.7).
type MBC1 struct {
	rom []byte
	ram []byte

	romBankLow  uint8 // lower 5 bits (0 remapped to 1)
	upperBits   uint8 // upper 2 bits, meaning depends on bankingMode
	bankingMode uint8 // 0 = ROM banking mode, 1 = RAM banking mode
	ramEnabled  bool
}

func NewMBC1(rom []byte, ramBankCount int) *MBC1 {
	return &MBC1{
		rom:        rom,
		ram:        make([]byte, ramBankCount*0x2000),
		romBankLow: 1,
	}
}

func (m *MBC1) romBank() int {
	bank := int(m.romBankLow)
	if m.bankingMode == 0 {
		bank |= int(m.upperBits) << 5
	}
	return bank
}

func (m *MBC1) ramBank() int {
	if m.bankingMode == 1 {
		return int(m.upperBits)
	}
	return 0
}

func (m *MBC1) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		return romByte(m.rom, 0, address)
	case address <= 0x7FFF:
		return romByte(m.rom, m.romBank(), address-0x4000)
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		return ramByte(m.ram, m.ramBank(), address-0xA000)
	default:
		return 0xFF
	}
}

func (m *MBC1) Write(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case address <= 0x3FFF:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.romBankLow = bank
	case address <= 0x5FFF:
		m.upperBits = value & 0x03
	case address <= 0x7FFF:
		m.bankingMode = value & 0x01
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		setRAMByte(m.ram, m.ramBank(), address-0xA000, value)
	}
}

func (m *MBC1) SaveRAM() []byte {
	return cloneRAM(m.ram)
}

func (m *MBC1) LoadRAM(data []byte) {
	loadRAM(m.ram, data)
}

// MBC2 has 4-bit internal RAM (not external) and a simpler single ROM bank
// register, selected by bit 8 of the written address rather than a fixed
// sub-range (spec.md §4.7: "only even addresses in 2000-3FFF select ROM
// bank" — equivalently, bit 8 of the address clear selects RAM-enable,
// bit 8 set selects ROM bank, across the whole 0000-3FFF window).
type MBC2 struct {
	rom        []byte
	ram        [512]byte // 4-bit cells, stored one per byte for simplicity
	romBank    uint8
	ramEnabled bool
}

func NewMBC2(rom []byte) *MBC2 {
	return &MBC2{rom: rom, romBank: 1}
}

func (m *MBC2) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		return romByte(m.rom, 0, address)
	case address <= 0x7FFF:
		return romByte(m.rom, int(m.romBank), address-0x4000)
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram[(address-0xA000)%512] | 0xF0
	default:
		return 0xFF
	}
}

func (m *MBC2) Write(address uint16, value uint8) {
	switch {
	case address <= 0x3FFF:
		if address&0x0100 == 0 {
			m.ramEnabled = value&0x0F == 0x0A
		} else {
			bank := value & 0x0F
			if bank == 0 {
				bank = 1
			}
			m.romBank = bank
		}
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		m.ram[(address-0xA000)%512] = value & 0x0F
	}
}

func (m *MBC2) SaveRAM() []byte {
	out := make([]byte, len(m.ram))
	copy(out, m.ram[:])
	return out
}

func (m *MBC2) LoadRAM(data []byte) {
	copy(m.ram[:], data)
}

// MBC3 adds a real-time clock latch at RAM-bank selectors 0x08-0x0C
// (spec.md §4.7). The RTC registers here are a static latch, not a live
// clock driven off host wall time.
type MBC3 struct {
	rom []byte
	ram []byte
	rtc [5]uint8 // seconds, minutes, hours, day-low, day-high/flags

	romBank    uint8
	ramBank    uint8
	ramEnabled bool
	hasRTC     bool
	latchState uint8
	latched    [5]uint8
}

func NewMBC3(rom []byte, ramBankCount int, hasRTC bool) *MBC3 {
	return &MBC3{
		rom:     rom,
		ram:     make([]byte, ramBankCount*0x2000),
		romBank: 1,
		hasRTC:  hasRTC,
	}
}

func (m *MBC3) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		return romByte(m.rom, 0, address)
	case address <= 0x7FFF:
		return romByte(m.rom, int(m.romBank), address-0x4000)
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.hasRTC && m.ramBank >= 0x08 && m.ramBank <= 0x0C {
			return m.latched[m.ramBank-0x08]
		}
		if len(m.ram) == 0 {
			return 0xFF
		}
		return ramByte(m.ram, int(m.ramBank), address-0xA000)
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case address <= 0x3FFF:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case address <= 0x5FFF:
		m.ramBank = value
	case address <= 0x7FFF:
		// RTC latch: a 0 -> 1 transition copies live registers into the
		// latched snapshot CPU reads see.
		if m.latchState == 0x00 && value == 0x01 {
			m.latched = m.rtc
		}
		m.latchState = value
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if m.hasRTC && m.ramBank >= 0x08 && m.ramBank <= 0x0C {
			m.rtc[m.ramBank-0x08] = value
			return
		}
		if len(m.ram) == 0 {
			return
		}
		setRAMByte(m.ram, int(m.ramBank), address-0xA000, value)
	}
}

func (m *MBC3) SaveRAM() []byte {
	return cloneRAM(m.ram)
}

func (m *MBC3) LoadRAM(data []byte) {
	loadRAM(m.ram, data)
}

// MBC5 is the simplest of the banking chips to switch: a 9-bit ROM bank
// number across two registers and a 4-bit RAM bank, with no 0-to-1 remap
// quirk (spec.md §4.7, invariant 5).
type MBC5 struct {
	rom []byte
	ram []byte

	romBank    uint16
	ramBank    uint8
	ramEnabled bool
}

func NewMBC5(rom []byte, ramBankCount int) *MBC5 {
	return &MBC5{rom: rom, ram: make([]byte, ramBankCount*0x2000)}
}

func (m *MBC5) Read(address uint16) uint8 {
	switch {
	case address <= 0x3FFF:
		return romByte(m.rom, 0, address)
	case address <= 0x7FFF:
		return romByte(m.rom, int(m.romBank), address-0x4000)
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		return ramByte(m.ram, int(m.ramBank), address-0xA000)
	default:
		return 0xFF
	}
}

func (m *MBC5) Write(address uint16, value uint8) {
	switch {
	case address <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
	case address <= 0x2FFF:
		m.romBank = (m.romBank & 0x100) | uint16(value)
	case address <= 0x3FFF:
		m.romBank = (m.romBank &^ 0x100) | (uint16(value&0x01) << 8)
	case address <= 0x5FFF:
		m.ramBank = value & 0x0F
	case address >= 0xA000 && address <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		setRAMByte(m.ram, int(m.ramBank), address-0xA000, value)
	}
}

func (m *MBC5) SaveRAM() []byte {
	return cloneRAM(m.ram)
}

func (m *MBC5) LoadRAM(data []byte) {
	loadRAM(m.ram, data)
}

func romByte(rom []byte, bank int, offset uint16) uint8 {
	idx := bank*0x4000 + int(offset)
	if idx < 0 || idx >= len(rom) {
		return 0xFF
	}
	return rom[idx]
}

func ramByte(ram []byte, bank int, offset uint16) uint8 {
	idx := bank*0x2000 + int(offset)
	if idx < 0 || idx >= len(ram) {
		return 0xFF
	}
	return ram[idx]
}

func setRAMByte(ram []byte, bank int, offset uint16, value uint8) {
	idx := bank*0x2000 + int(offset)
	if idx < 0 || idx >= len(ram) {
		return
	}
	ram[idx] = value
}

func cloneRAM(ram []byte) []byte {
	if len(ram) == 0 {
		return nil
	}
	out := make([]byte, len(ram))
	copy(out, ram)
	return out
}

func loadRAM(dst, src []byte) {
	if len(dst) == 0 || len(src) == 0 {
		return
	}
	copy(dst, src)
}
