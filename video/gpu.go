// Package video implements the PPU: VRAM/OAM storage, the register file at
// 0xFF40-0xFF4B, the four-mode scanline state machine, and the scanline
// renderer that composites background, window and sprite layers into a
// FrameBuffer.
package video

import (
	"log/slog"

	"github.com/willemolding/rgy/addr"
	"github.com/willemolding/rgy/bit"
	"github.com/willemolding/rgy/bus"
	"github.com/willemolding/rgy/interrupt"
)

// Mode is the PPU's current rendering stage, matching STAT bits 1-0.
type Mode int

const (
	HBlank Mode = 0
	VBlank Mode = 1
	OAMScan Mode = 2
	PixelTransfer Mode = 3
)

const (
	hblankCycles       = 204
	oamScanCycles      = 80
	transferCycles     = 172
	scanlineCycles     = oamScanCycles + transferCycles + hblankCycles
	scanlinesPerFrame  = 154
	frameCycles        = scanlineCycles * 144 + 4560 // VBlank's 10 lines: 10 * 456 = 4560, the total Tick uses below
)

// GPU owns VRAM, OAM, and the LCD register file, and drives the scanline
// state machine off the cycle budget the system orchestrator feeds it each
// step (spec.md §4.3).
type GPU struct {
	irq *interrupt.Controller

	vram [0x2000]byte
	oam  [0xA0]byte

	framebuffer    *FrameBuffer
	bgPixelBuffer  [FramebufferSize]byte
	spritePriority spritePriorityBuffer

	lcdc, stat, scy, scx, ly, lyc, bgp, obp0, obp1, wy, wx uint8

	// CGB register plumbing (spec.md §5 supplemental): stored and
	// readable/writable, but KEY1's speed-switch bit is never observed by
	// the CPU (Open Question (b), DESIGN.md).
	cgbEnabled bool
	vbk        uint8
	key1       uint8
	bcps, bcpd uint8
	ocps, ocpd uint8

	mode             Mode
	line             int
	cycles           int
	modeCounterAux   int
	vBlankLine       int
	isScanlineDrawn  bool
	windowLine       int
}

func New(irq *interrupt.Controller, cgbEnabled bool) *GPU {
	g := &GPU{
		irq:         irq,
		framebuffer: NewFrameBuffer(),
		cgbEnabled:  cgbEnabled,
		mode:        VBlank,
		line:        144,
	}
	slog.Debug("video: GPU initialized", "cgb", cgbEnabled)
	return g
}

func (g *GPU) FrameBuffer() *FrameBuffer { return g.framebuffer }

// Attach registers the GPU's VRAM, OAM, and register-file ranges on the bus.
func (g *GPU) Attach(b *bus.Bus) {
	b.AddHandler(bus.Range{Start: addr.VRAMStart, End: addr.VRAMEnd}, vramHandler{g})
	b.AddHandler(bus.Range{Start: addr.OAMStart, End: addr.OAMEnd}, oamHandler{g})
	b.AddHandler(bus.Range{Start: addr.LCDC, End: addr.WX}, registerHandler{g})
	b.AddHandler(bus.Range{Start: addr.VBK, End: addr.VBK}, registerHandler{g})
	b.AddHandler(bus.Range{Start: addr.KEY1, End: addr.KEY1}, registerHandler{g})
	b.AddHandler(bus.Range{Start: addr.BCPS, End: addr.OCPD}, registerHandler{g})
}

// OAMBytes exposes the raw OAM array to the DMA sequencer, which writes into
// it directly rather than going through the bus handler gating (DMA runs
// with the CPU locked out of everything but HRAM, so the gating that
// protects OAM from the CPU mid-scan does not apply to it).
func (g *GPU) OAMBytes() *[0xA0]byte { return &g.oam }

// DebugReadVRAM and DebugReadOAM give debug tooling raw, ungated access to
// video memory — used for tile/sprite inspection where the normal
// access-gating rules (which only apply to the CPU mid-scan) don't matter.
func (g *GPU) DebugReadVRAM(address uint16) byte { return g.vram[address-addr.VRAMStart] }
func (g *GPU) DebugReadOAM(address uint16) byte  { return g.oam[address-addr.OAMStart] }

// LCDC reports the current LCD control register, used by the debugger to
// summarize tilemap/window state without exposing the full register file.
func (g *GPU) LCDC() uint8 { return g.lcdc }

// Line reports the current scanline, used for OAM visibility calculations.
func (g *GPU) Line() int { return g.line }

type vramHandler struct{ g *GPU }

func (h vramHandler) OnRead(address uint16) (uint8, bool) {
	if h.g.mode == PixelTransfer {
		return 0xFF, true
	}
	return h.g.vram[address-addr.VRAMStart], true
}

func (h vramHandler) OnWrite(address uint16, value uint8) bool {
	if h.g.mode == PixelTransfer {
		return true
	}
	h.g.vram[address-addr.VRAMStart] = value
	return true
}

type oamHandler struct{ g *GPU }

func (h oamHandler) OnRead(address uint16) (uint8, bool) {
	if h.g.mode == OAMScan || h.g.mode == PixelTransfer {
		return 0xFF, true
	}
	return h.g.oam[address-addr.OAMStart], true
}

func (h oamHandler) OnWrite(address uint16, value uint8) bool {
	if h.g.mode == OAMScan || h.g.mode == PixelTransfer {
		return true
	}
	h.g.oam[address-addr.OAMStart] = value
	return true
}

type registerHandler struct{ g *GPU }

func (h registerHandler) OnRead(address uint16) (uint8, bool) {
	g := h.g
	switch address {
	case addr.LCDC:
		return g.lcdc, true
	case addr.STAT:
		return g.stat | 0x80, true
	case addr.SCY:
		return g.scy, true
	case addr.SCX:
		return g.scx, true
	case addr.LY:
		return uint8(g.line), true
	case addr.LYC:
		return g.lyc, true
	case addr.BGP:
		return g.bgp, true
	case addr.OBP0:
		return g.obp0, true
	case addr.OBP1:
		return g.obp1, true
	case addr.WY:
		return g.wy, true
	case addr.WX:
		return g.wx, true
	case addr.VBK:
		return g.vbk | 0xFE, true
	case addr.KEY1:
		return g.key1, true
	case addr.BCPS:
		return g.bcps, true
	case addr.BCPD:
		return g.bcpd, true
	case addr.OCPS:
		return g.ocps, true
	case addr.OCPD:
		return g.ocpd, true
	}
	return 0, false
}

func (h registerHandler) OnWrite(address uint16, value uint8) bool {
	g := h.g
	switch address {
	case addr.LCDC:
		g.lcdc = value
	case addr.STAT:
		g.stat = (g.stat & 0x07) | (value & 0x78)
	case addr.SCY:
		g.scy = value
	case addr.SCX:
		g.scx = value
	case addr.LY:
		// read-only on hardware
	case addr.LYC:
		g.lyc = value
		g.compareLYToLYC()
	case addr.BGP:
		g.bgp = value
	case addr.OBP0:
		g.obp0 = value
	case addr.OBP1:
		g.obp1 = value
	case addr.WY:
		g.wy = value
	case addr.WX:
		g.wx = value
	case addr.VBK:
		if g.cgbEnabled {
			g.vbk = value & 0x01
		}
	case addr.KEY1:
		if g.cgbEnabled {
			g.key1 = value & 0x01
		}
	case addr.BCPS:
		g.bcps = value
	case addr.BCPD:
		g.bcpd = value
	case addr.OCPS:
		g.ocps = value
	case addr.OCPD:
		g.ocpd = value
	}
	return true
}

// Tick advances PPU state by the given number of T-cycles, composing the
// scanline when entering pixel transfer and raising V-Blank/STAT interrupts
// at the documented mode transitions (spec.md §4.3).
func (g *GPU) Tick(cycles int) {
	g.cycles += cycles

	switch g.mode {
	case HBlank:
		if g.cycles < hblankCycles {
			break
		}
		g.cycles -= hblankCycles
		g.setMode(OAMScan)
		g.setLY(g.line + 1)

		if g.line == 144 {
			g.setMode(VBlank)
			g.vBlankLine = 0
			g.modeCounterAux = g.cycles
			g.windowLine = 0
			g.irq.Raise(addr.VBlank)
			if bit.IsSet(statVblankIrq, g.stat) {
				g.irq.Raise(addr.LCDSTAT)
			}
		} else if bit.IsSet(statOamIrq, g.stat) {
			g.irq.Raise(addr.LCDSTAT)
		}
	case VBlank:
		g.modeCounterAux += cycles
		if g.modeCounterAux >= scanlineCycles {
			g.modeCounterAux -= scanlineCycles
			g.vBlankLine++
			if g.vBlankLine <= 9 {
				g.setLY(g.line + 1)
			}
		}
		if g.cycles >= 4104 && g.modeCounterAux >= 4 && g.line == 153 {
			g.setLY(0)
		}
		if g.cycles >= 4560 {
			g.cycles -= 4560
			g.setMode(OAMScan)
			if bit.IsSet(statOamIrq, g.stat) {
				g.irq.Raise(addr.LCDSTAT)
			}
		}
	case OAMScan:
		if g.cycles >= oamScanCycles {
			g.cycles -= oamScanCycles
			g.setMode(PixelTransfer)
			g.isScanlineDrawn = false
		}
	case PixelTransfer:
		if !g.isScanlineDrawn {
			if bit.IsSet(uint8(lcdDisplayEnable), g.lcdc) {
				g.drawScanline()
			}
			g.isScanlineDrawn = true
		}
		if g.cycles >= transferCycles {
			g.cycles -= transferCycles
			g.setMode(HBlank)
			if bit.IsSet(statHblankIrq, g.stat) {
				g.irq.Raise(addr.LCDSTAT)
			}
		}
	}

	if g.cycles >= 70224 {
		g.cycles -= 70224
	}
}

func (g *GPU) setMode(mode Mode) {
	g.mode = mode
	g.stat = g.stat&0xFC | uint8(mode)
}

func (g *GPU) setLY(line int) {
	g.line = line
	g.compareLYToLYC()
}

func (g *GPU) compareLYToLYC() {
	if uint8(g.line) == g.lyc {
		g.stat = bit.Set(statLycCondition, g.stat)
		if bit.IsSet(statLycIrq, g.stat) {
			g.irq.Raise(addr.LCDSTAT)
		}
	} else {
		g.stat = bit.Clear(statLycCondition, g.stat)
	}
}

const (
	statLycIrq       uint8 = 6
	statOamIrq       uint8 = 5
	statVblankIrq    uint8 = 4
	statHblankIrq    uint8 = 3
	statLycCondition uint8 = 2
)

const (
	lcdDisplayEnable       uint8 = 7
	windowTileMapSelect    uint8 = 6
	windowDisplayEnable    uint8 = 5
	bgWindowTileDataSelect uint8 = 4
	bgTileMapDisplaySelect uint8 = 3
	spriteSize             uint8 = 2
	spriteDisplayEnable    uint8 = 1
	bgDisplay              uint8 = 0
)

func (g *GPU) vramRead(a uint16) byte { return g.vram[a-addr.VRAMStart] }

func (g *GPU) drawScanline() {
	if !bit.IsSet(lcdDisplayEnable, g.lcdc) {
		lineWidth := g.line * FramebufferWidth
		for i := 0; i < FramebufferWidth; i++ {
			g.framebuffer.buffer[lineWidth+i] = uint32(WhiteColor)
		}
		return
	}

	g.drawBackground()
	g.drawWindow()
	g.drawSprites()
}

func (g *GPU) drawBackground() {
	lineWidth := g.line * FramebufferWidth

	if !bit.IsSet(bgDisplay, g.lcdc) {
		color0 := g.bgp & 0x03
		displayColor := uint32(ByteToColor(color0))
		for i := 0; i < FramebufferWidth; i++ {
			g.framebuffer.buffer[lineWidth+i] = displayColor
			g.bgPixelBuffer[lineWidth+i] = 0
		}
		return
	}

	useSignedTileSet := !bit.IsSet(bgWindowTileDataSelect, g.lcdc)
	useTileMapZero := !bit.IsSet(bgTileMapDisplaySelect, g.lcdc)

	tilesAddr := addr.TileData0
	if useSignedTileSet {
		tilesAddr = addr.TileData2
	}
	tileMapAddr := addr.TileMap1
	if useTileMapZero {
		tileMapAddr = addr.TileMap0
	}

	lineScrolled := (g.line + int(g.scy)) & 0xFF
	lineScrolled32 := (lineScrolled / 8) * 32
	tilePixelY2 := (lineScrolled % 8) * 2

	for screenX := 0; screenX < FramebufferWidth; screenX++ {
		mapPixelX := (screenX + int(g.scx)) & 0xFF
		mapTileX := mapPixelX / 8
		tileOffsetX := mapPixelX % 8
		mapTileAddr := tileMapAddr + uint16(lineScrolled32+mapTileX)
		mapTileValue := g.vramRead(mapTileAddr)

		var tileAddr uint16
		if useSignedTileSet {
			tileAddr = uint16(int(tilesAddr) + int(int8(mapTileValue))*16 + tilePixelY2)
		} else {
			tileAddr = tilesAddr + uint16(int(mapTileValue)*16) + uint16(tilePixelY2)
		}

		low := g.vramRead(tileAddr)
		high := g.vramRead(tileAddr + 1)
		pixelIndex := uint8(7 - tileOffsetX)
		pixel := 0
		if bit.IsSet(pixelIndex, low) {
			pixel |= 1
		}
		if bit.IsSet(pixelIndex, high) {
			pixel |= 2
		}

		position := lineWidth + screenX
		color := (g.bgp >> (pixel * 2)) & 0x03
		g.framebuffer.buffer[position] = uint32(ByteToColor(color))
		g.bgPixelBuffer[position] = color
	}
}

func (g *GPU) drawWindow() {
	if g.windowLine > 143 || !bit.IsSet(windowDisplayEnable, g.lcdc) {
		return
	}

	wx := int(g.wx) - 7
	wy := g.wy

	if wx > 159 || int(wy) > g.line {
		return
	}

	useSignedTileSet := !bit.IsSet(bgWindowTileDataSelect, g.lcdc)
	useTileMapZero := !bit.IsSet(windowTileMapSelect, g.lcdc)

	tilesAddr := addr.TileData0
	if useSignedTileSet {
		tilesAddr = addr.TileData2
	}
	tileMapAddr := addr.TileMap1
	if useTileMapZero {
		tileMapAddr = addr.TileMap0
	}

	y32 := (g.windowLine / 8) * 32
	pixelY2 := (g.windowLine & 7) * 2
	lineWidth := g.line * FramebufferWidth

	endTileX := (FramebufferWidth - wx + 7) / 8
	if endTileX > 32 {
		endTileX = 32
	}

	for x := 0; x < endTileX; x++ {
		tileValue := g.vramRead(tileMapAddr + uint16(y32+x))
		xOffset := x * 8

		var tileAddr uint16
		if useSignedTileSet {
			tileAddr = uint16(int(tilesAddr) + int(int8(tileValue))*16 + pixelY2)
		} else {
			tileAddr = tilesAddr + uint16(int(tileValue)*16) + uint16(pixelY2)
		}

		low := g.vramRead(tileAddr)
		high := g.vramRead(tileAddr + 1)

		for pixelX := 0; pixelX < 8; pixelX++ {
			bufferX := xOffset + pixelX + wx
			if bufferX < wx || bufferX >= FramebufferWidth {
				continue
			}

			pixel := 0
			if bit.IsSet(uint8(7-pixelX), low) {
				pixel |= 1
			}
			if bit.IsSet(uint8(7-pixelX), high) {
				pixel |= 2
			}

			position := lineWidth + bufferX
			if position >= len(g.framebuffer.buffer) {
				continue
			}
			color := (g.bgp >> (pixel * 2)) & 0x03
			g.framebuffer.buffer[position] = uint32(ByteToColor(color))
			g.bgPixelBuffer[position] = color
		}
	}
	g.windowLine++
}

func (g *GPU) drawSprites() {
	if !bit.IsSet(spriteDisplayEnable, g.lcdc) {
		return
	}

	spriteHeight := 8
	if bit.IsSet(spriteSize, g.lcdc) {
		spriteHeight = 16
	}

	lineWidth := g.line * FramebufferWidth
	var spritesToDraw []int

	for sprite := 0; sprite < 40; sprite++ {
		base := sprite * 4
		spriteY := int(g.oam[base]) - 16
		if spriteY > g.line || (spriteY+spriteHeight) <= g.line {
			continue
		}
		spritesToDraw = append(spritesToDraw, sprite)
		if len(spritesToDraw) >= 10 {
			break
		}
	}

	g.spritePriority.Clear()
	for _, sprite := range spritesToDraw {
		base := sprite * 4
		spriteX := int(g.oam[base+1]) - 8
		for pixelOffset := 0; pixelOffset < 8; pixelOffset++ {
			g.spritePriority.TryClaimPixel(spriteX+pixelOffset, sprite, spriteX)
		}
	}

	for _, sprite := range spritesToDraw {
		base := sprite * 4
		spriteY := int(g.oam[base]) - 16
		spriteX := int(g.oam[base+1]) - 8
		spriteTile := g.oam[base+2]
		spriteFlags := g.oam[base+3]

		hasPixels := false
		for x := 0; x < 8; x++ {
			if g.spritePriority.GetOwner(spriteX+x) == sprite {
				hasPixels = true
				break
			}
		}
		if !hasPixels {
			continue
		}

		spriteMask := 0xFF
		if spriteHeight == 16 {
			spriteMask = 0xFE
		}
		spriteTile16 := (int(spriteTile) & spriteMask) * 16

		objPaletteAddr := g.obp0
		if bit.IsSet(4, spriteFlags) {
			objPaletteAddr = g.obp1
		}
		flipX := bit.IsSet(5, spriteFlags)
		flipY := bit.IsSet(6, spriteFlags)
		aboveBG := !bit.IsSet(7, spriteFlags)

		pixelY := g.line - spriteY
		if flipY {
			pixelY = spriteHeight - 1 - pixelY
		}

		var pixelY2, offset int
		if spriteHeight == 16 && pixelY >= 8 {
			pixelY2 = (pixelY - 8) * 2
			offset = 16
		} else {
			pixelY2 = pixelY * 2
		}

		tileAddr := addr.TileData0 + uint16(spriteTile16+pixelY2+offset)
		low := g.vramRead(tileAddr)
		high := g.vramRead(tileAddr + 1)

		for pixelX := 0; pixelX < 8; pixelX++ {
			bufferX := spriteX + pixelX
			if g.spritePriority.GetOwner(bufferX) != sprite {
				continue
			}

			pixelIdx := 7 - pixelX
			if flipX {
				pixelIdx = pixelX
			}
			pixel := 0
			if bit.IsSet(uint8(pixelIdx), low) {
				pixel |= 1
			}
			if bit.IsSet(uint8(pixelIdx), high) {
				pixel |= 2
			}
			if pixel == 0 {
				continue
			}

			position := lineWidth + bufferX
			if !aboveBG && g.bgPixelBuffer[position] != 0 {
				continue
			}

			color := (objPaletteAddr >> (pixel * 2)) & 0x03
			g.framebuffer.buffer[position] = uint32(ByteToColor(color))
		}
	}
}
