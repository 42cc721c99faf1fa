package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubHandler struct {
	readValue uint8
	handled   bool
	block     bool
	writes    []uint8
}

func (s *stubHandler) OnRead(uint16) (uint8, bool) { return s.readValue, s.handled }
func (s *stubHandler) OnWrite(_ uint16, value uint8) bool {
	s.writes = append(s.writes, value)
	return s.block
}

func TestBus_readFallsBackToRAMWhenNoHandlerClaims(t *testing.T) {
	b := New()
	b.RawWrite(0x1234, 0x42)
	assert.Equal(t, uint8(0x42), b.Read8(0x1234))
}

func TestBus_firstHandledReadWins(t *testing.T) {
	b := New()
	first := &stubHandler{readValue: 0x11, handled: false}
	second := &stubHandler{readValue: 0x22, handled: true}
	third := &stubHandler{readValue: 0x33, handled: true}

	b.AddHandler(Range{Start: 0x8000, End: 0x9FFF}, first)
	b.AddHandler(Range{Start: 0x8000, End: 0x9FFF}, second)
	b.AddHandler(Range{Start: 0x8000, End: 0x9FFF}, third)

	assert.Equal(t, uint8(0x22), b.Read8(0x8000))
}

func TestBus_writeBlockedByAnyHandlerSkipsRAM(t *testing.T) {
	b := New()
	blocker := &stubHandler{block: true}
	observer := &stubHandler{block: false}

	b.AddHandler(Range{Start: 0xFF00, End: 0xFF00}, blocker)
	b.AddHandler(Range{Start: 0xFF00, End: 0xFF00}, observer)

	b.Write8(0xFF00, 0x99)

	assert.Equal(t, []uint8{0x99}, blocker.writes)
	assert.Equal(t, []uint8{0x99}, observer.writes, "every handler observes the write regardless of block")
	assert.Equal(t, uint8(0), b.RawRead(0xFF00), "a blocked write must not land in backing RAM")
}

func TestBus_read16IsLittleEndian(t *testing.T) {
	b := New()
	b.Write16(0xC000, 0xBEEF)
	assert.Equal(t, uint8(0xEF), b.RawRead(0xC000))
	assert.Equal(t, uint8(0xBE), b.RawRead(0xC001))
	assert.Equal(t, uint16(0xBEEF), b.Read16(0xC000))
}

func TestRange_contains(t *testing.T) {
	r := Range{Start: 0x8000, End: 0x9FFF}
	assert.True(t, r.Contains(0x8000))
	assert.True(t, r.Contains(0x9FFF))
	assert.False(t, r.Contains(0x7FFF))
	assert.False(t, r.Contains(0xA000))
}
