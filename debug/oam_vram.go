package debug

import (
	"fmt"

	"github.com/willemolding/rgy/addr"
	"github.com/willemolding/rgy/bit"
	"github.com/willemolding/rgy/video"
)

// SpriteInfo is one decoded OAM entry, with visibility already resolved
// against the scanline the snapshot was taken on.
type SpriteInfo struct {
	Index     int
	Y, X      int
	TileIndex uint8
	Flags     uint8
	IsVisible bool
}

func (s SpriteInfo) String() string {
	status := "OFF"
	if s.IsVisible {
		status = "ACTIVE"
	}
	return fmt.Sprintf("Sprite %2d: Y=%3d X=%3d Tile=0x%02X Flags=0x%02X [%s]",
		s.Index, s.Y, s.X, s.TileIndex, s.Flags, status)
}

// OAMData is a point-in-time decode of all 40 sprite entries.
type OAMData struct {
	Sprites       []SpriteInfo
	CurrentLine   int
	ActiveSprites int
	SpriteHeight  int
}

// ExtractOAMData decodes every OAM entry as seen through mem, marking a
// sprite visible when currentLine falls inside its spriteHeight-tall row.
func ExtractOAMData(mem BusReader, currentLine, spriteHeight int) *OAMData {
	data := &OAMData{CurrentLine: currentLine, SpriteHeight: spriteHeight}
	for i := 0; i < 40; i++ {
		base := addr.OAMStart + uint16(i*4)
		y := int(mem.Read8(base)) - 16
		x := int(mem.Read8(base+1)) - 8
		tile := mem.Read8(base + 2)
		flags := mem.Read8(base + 3)
		visible := currentLine >= y && currentLine < y+spriteHeight

		data.Sprites = append(data.Sprites, SpriteInfo{
			Index: i, Y: y, X: x, TileIndex: tile, Flags: flags, IsVisible: visible,
		})
		if visible {
			data.ActiveSprites++
		}
	}
	return data
}

// GetVisibleSprites returns the subset of Sprites with IsVisible set.
func (data *OAMData) GetVisibleSprites() []SpriteInfo {
	visible := make([]SpriteInfo, 0, data.ActiveSprites)
	for _, s := range data.Sprites {
		if s.IsVisible {
			visible = append(visible, s)
		}
	}
	return visible
}

// FormatSummary renders a one-line status suitable for a debug overlay.
func (data *OAMData) FormatSummary() string {
	return fmt.Sprintf("Line: %d | Active Sprites: %d/40 | Height: %dpx",
		data.CurrentLine, data.ActiveSprites, data.SpriteHeight)
}

const (
	tilePatternCount = 384
	tilesPerRow      = 16
	tileRows         = tilePatternCount / tilesPerRow
)

// TilePattern is one 8x8 decoded tile, indexed into the shared tile data area.
type TilePattern struct {
	Index  int
	Pixels [8][8]video.GBColor
}

// TilemapInfo summarizes which background layers LCDC currently enables.
type TilemapInfo struct {
	BackgroundActive bool
	WindowActive     bool
	LCDCValue        uint8
}

// VRAMData is every tile pattern in VRAM decoded into pixel colors, plus the
// current tilemap configuration — enough for a tile-viewer frontend.
type VRAMData struct {
	TilePatterns []TilePattern
	TilemapInfo  TilemapInfo
}

// ExtractVRAMData decodes all 384 tile patterns as seen through mem.
func ExtractVRAMData(mem BusReader) *VRAMData {
	lcdc := mem.Read8(addr.LCDC)
	data := &VRAMData{
		TilemapInfo: TilemapInfo{
			BackgroundActive: bit.IsSet(0, lcdc),
			WindowActive:     bit.IsSet(5, lcdc),
			LCDCValue:        lcdc,
		},
		TilePatterns: make([]TilePattern, tilePatternCount),
	}

	for i := 0; i < tilePatternCount; i++ {
		tileAddr := addr.VRAMStart + uint16(i*16)
		var pixels [8][8]video.GBColor
		for row := 0; row < 8; row++ {
			low := mem.Read8(tileAddr + uint16(row*2))
			high := mem.Read8(tileAddr + uint16(row*2+1))
			for col := 0; col < 8; col++ {
				bitIdx := uint8(7 - col)
				p := uint8(0)
				if bit.IsSet(bitIdx, low) {
					p |= 1
				}
				if bit.IsSet(bitIdx, high) {
					p |= 2
				}
				pixels[row][col] = video.ByteToColor(p)
			}
		}
		data.TilePatterns[i] = TilePattern{Index: i, Pixels: pixels}
	}

	return data
}

// GetTileGrid arranges every decoded tile into its 16-wide by 24-tall sheet
// layout, the shape a tile-viewer wants to render directly.
func (data *VRAMData) GetTileGrid() [][]TilePattern {
	grid := make([][]TilePattern, tileRows)
	for row := 0; row < tileRows; row++ {
		grid[row] = make([]TilePattern, tilesPerRow)
		for col := 0; col < tilesPerRow; col++ {
			idx := row*tilesPerRow + col
			if idx < tilePatternCount {
				grid[row][col] = data.TilePatterns[idx]
			}
		}
	}
	return grid
}

// FormatSummary renders a one-line tilemap status for a debug overlay.
func (info TilemapInfo) FormatSummary() string {
	bgStatus, winStatus := "INACTIVE", "INACTIVE"
	if info.BackgroundActive {
		bgStatus = "ACTIVE"
	}
	if info.WindowActive {
		winStatus = "ACTIVE"
	}
	return fmt.Sprintf("Background Map [%s] | Window Map [%s] | LCDC: 0x%02X", bgStatus, winStatus, info.LCDCValue)
}
