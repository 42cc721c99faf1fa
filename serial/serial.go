// Package serial implements the Game Boy's serial port as a log sink: a
// register pair (SB/SC) that accepts outgoing bytes and completes transfers
// either immediately or after a fixed DMG-accurate countdown, logging what
// passed through rather than modeling a link-cable peer (spec.md §4.9 — full
// two-console link emulation is explicitly out of scope).
package serial

import (
	"log/slog"

	"github.com/willemolding/rgy/addr"
	"github.com/willemolding/rgy/bit"
	"github.com/willemolding/rgy/bus"
	"github.com/willemolding/rgy/interrupt"
)

// Port is the serial shift-register stub.
type Port struct {
	irq *interrupt.Controller

	sb, sc         byte
	transferActive bool
	countdown      int
	logger         *slog.Logger

	immediate bool
	defaultRX byte

	line []byte
}

// Option configures a Port at construction time.
type Option func(*Port)

// WithFixedTiming makes transfers complete after the ~4096-cycle-per-byte
// DMG transfer window instead of instantly.
func WithFixedTiming() Option { return func(p *Port) { p.immediate = false } }

// WithLogger overrides the default slog logger transfers are reported to.
func WithLogger(logger *slog.Logger) Option { return func(p *Port) { p.logger = logger } }

func New(irq *interrupt.Controller, opts ...Option) *Port {
	p := &Port{
		irq:       irq,
		immediate: true,
		defaultRX: 0xFF,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Reset()
	return p
}

func (p *Port) Attach(b *bus.Bus) {
	b.AddHandler(bus.Range{Start: addr.SB, End: addr.SC}, p)
}

func (p *Port) Reset() {
	p.sb = 0
	p.sc = 0
	p.transferActive = false
	p.countdown = 0
	p.line = p.line[:0]
}

func (p *Port) OnRead(address uint16) (uint8, bool) {
	switch address {
	case addr.SB:
		return p.sb, true
	case addr.SC:
		return p.sc | 0x7E, true
	}
	return 0xFF, true
}

func (p *Port) OnWrite(address uint16, value uint8) bool {
	switch address {
	case addr.SB:
		p.sb = value
	case addr.SC:
		p.sc = value
		p.maybeStartTransfer()
	}
	return true
}

// Tick advances a pending fixed-timing transfer.
func (p *Port) Tick(cycles int) {
	if p.immediate || !p.transferActive {
		return
	}
	p.countdown -= cycles
	if p.countdown <= 0 {
		p.completeTransfer()
		p.countdown = 0
	}
}

func (p *Port) maybeStartTransfer() {
	if p.transferActive {
		return
	}
	if !bit.IsSet(7, p.sc) || !bit.IsSet(0, p.sc) {
		return
	}

	b := p.sb
	if b == 0 || b == '\n' || b == '\r' {
		if len(p.line) > 0 {
			p.logger.Info("serial", "line", string(p.line))
			p.line = p.line[:0]
		}
	} else {
		p.line = append(p.line, b)
	}

	if p.immediate {
		p.completeTransfer()
		return
	}

	p.transferActive = true
	p.countdown = 4096
}

func (p *Port) completeTransfer() {
	p.sb = p.defaultRX
	p.sc = bit.Clear(7, p.sc)
	p.transferActive = false
	p.irq.Raise(addr.Serial)
}
