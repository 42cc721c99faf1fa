package video

// GBColor is one of the four DMG shades, stored as a packed RGBA word so
// backends can blit it directly.
type GBColor uint32

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
	FramebufferSize   = FramebufferWidth * FramebufferHeight
)

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0x989898FF
	DarkGreyColor  GBColor = 0x4C4C4CFF
	BlackColor     GBColor = 0x000000FF
)

// ByteToColor maps a 2-bit palette index (0-3) to its display color.
func ByteToColor(value byte) GBColor {
	switch value {
	case 0:
		return WhiteColor
	case 1:
		return LightGreyColor
	case 2:
		return DarkGreyColor
	case 3:
		return BlackColor
	}
	return 0
}

// FrameBuffer holds one rendered 160x144 frame as packed RGBA pixels.
type FrameBuffer struct {
	buffer [FramebufferSize]uint32
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

func (fb *FrameBuffer) GetPixel(x, y int) uint32 {
	return fb.buffer[y*FramebufferWidth+x]
}

func (fb *FrameBuffer) SetPixel(x, y int, color GBColor) {
	fb.buffer[y*FramebufferWidth+x] = uint32(color)
}

// ToSlice returns the packed pixel buffer for a backend to blit directly.
func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer[:]
}

// Row returns the packed pixels of scanline y, for the host's per-line
// video_send callback (spec.md §6).
func (fb *FrameBuffer) Row(y int) [FramebufferWidth]uint32 {
	var row [FramebufferWidth]uint32
	copy(row[:], fb.buffer[y*FramebufferWidth:(y+1)*FramebufferWidth])
	return row
}

func (fb *FrameBuffer) Clear() {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(WhiteColor)
	}
}

// ToGrayscale converts the framebuffer to 2-bit palette indices, useful for
// test fixtures that compare against a known-good reference frame rather
// than exact RGBA values.
func (fb *FrameBuffer) ToGrayscale() []byte {
	data := make([]byte, len(fb.buffer))
	for i, pixel := range fb.buffer {
		switch GBColor(pixel) {
		case WhiteColor:
			data[i] = 0
		case LightGreyColor:
			data[i] = 1
		case DarkGreyColor:
			data[i] = 2
		case BlackColor:
			data[i] = 3
		default:
			data[i] = 0
		}
	}
	return data
}
