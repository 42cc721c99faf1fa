package cart

import (
	"fmt"

	"github.com/willemolding/rgy/addr"
	"github.com/willemolding/rgy/bus"
)

// Cartridge wraps a parsed Header and its MBC and exposes them to the bus as
// a single Handler registered over two disjoint ranges: ROM (0x0000-0x7FFF)
// and external RAM (0xA000-0xBFFF). A bus.Range can only express one
// contiguous span, so the system orchestrator registers this same handler
// instance twice — see system.New.
type Cartridge struct {
	Header *Header
	mbc    MBC
}

// Load parses the header from rom and constructs the matching MBC.
func Load(rom []byte) (*Cartridge, error) {
	header, err := ParseHeader(rom)
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	return &Cartridge{
		Header: header,
		mbc:    New(header, rom),
	}, nil
}

// Attach registers the cartridge's ROM and external RAM windows on b.
func (c *Cartridge) Attach(b *bus.Bus) {
	b.AddHandler(bus.Range{Start: addr.ROMBank0Start, End: addr.ROMBankNEnd}, c)
	b.AddHandler(bus.Range{Start: addr.ExtRAMStart, End: addr.ExtRAMEnd}, c)
}

func (c *Cartridge) OnRead(address uint16) (uint8, bool) {
	return c.mbc.Read(address), true
}

func (c *Cartridge) OnWrite(address uint16, value uint8) bool {
	c.mbc.Write(address, value)
	// ROM and external RAM are never writable as ordinary backing RAM;
	// the MBC alone owns persistence for its RAM window.
	return true
}

// SaveRAM returns the battery-backed RAM contents for host persistence, or
// nil if this cartridge has none.
func (c *Cartridge) SaveRAM() []byte {
	if !c.Header.HasBattery {
		return nil
	}
	return c.mbc.SaveRAM()
}

// LoadRAM restores previously saved battery-backed RAM.
func (c *Cartridge) LoadRAM(data []byte) {
	if !c.Header.HasBattery {
		return
	}
	c.mbc.LoadRAM(data)
}
