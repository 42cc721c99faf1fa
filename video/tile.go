package video

import "github.com/willemolding/rgy/bit"

// TileRow is one row of an 8x8 tile pattern, stored in the Game Boy's
// bit-plane format: two bytes where bit 7 is the leftmost pixel and each
// pixel's 2-bit color index comes from the corresponding bit of Low and
// High combined.
type TileRow struct {
	Low  byte
	High byte
}

// GetPixel extracts a pixel color (0-3) from the row, pixelX 0-7 left to
// right.
func (t TileRow) GetPixel(pixelX int) int {
	bitIndex := uint8(7 - pixelX)
	pixel := 0
	if bit.IsSet(bitIndex, t.Low) {
		pixel |= 1
	}
	if bit.IsSet(bitIndex, t.High) {
		pixel |= 2
	}
	return pixel
}

// GetPixelFlipped extracts a pixel color with horizontal flip applied, used
// for sprites with the X-flip attribute set.
func (t TileRow) GetPixelFlipped(pixelX int) int {
	bitIndex := uint8(pixelX)
	pixel := 0
	if bit.IsSet(bitIndex, t.Low) {
		pixel |= 1
	}
	if bit.IsSet(bitIndex, t.High) {
		pixel |= 2
	}
	return pixel
}

// Tile is a complete 8x8 tile pattern: 8 rows, 16 bytes in VRAM.
type Tile struct {
	Index int
	Rows  [8]TileRow
}

func (t *Tile) GetPixel(x, y int) int {
	if y < 0 || y >= 8 || x < 0 || x >= 8 {
		return 0
	}
	return t.Rows[y].GetPixel(x)
}

// MemoryReader is the minimal read capability FetchTile needs: any type
// with a Read(uint16) byte method.
type MemoryReader interface {
	Read(addr uint16) byte
}

// FetchTile reads a complete 16-byte tile from VRAM at baseAddr.
func FetchTile(memory MemoryReader, baseAddr uint16) Tile {
	var tile Tile
	for row := 0; row < 8; row++ {
		a := baseAddr + uint16(row*2)
		tile.Rows[row] = TileRow{
			Low:  memory.Read(a),
			High: memory.Read(a + 1),
		}
	}
	return tile
}

func FetchTileWithIndex(memory MemoryReader, baseAddr uint16, index int) Tile {
	tile := FetchTile(memory, baseAddr)
	tile.Index = index
	return tile
}
