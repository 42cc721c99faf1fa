//go:build sdl2

package backend

import (
	"fmt"
	"log/slog"
	"math"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/willemolding/rgy/joypad"
	"github.com/willemolding/rgy/sound"
	"github.com/willemolding/rgy/video"
)

const defaultScale = 3

// audioSampleRate is the playback rate the square/noise bursts below are
// synthesized at; it's independent of the APU's own 4 MHz register clock.
const audioSampleRate = 44100

// SDL2 implements Backend with an accelerated SDL2 window. Building it
// requires the SDL2 development libraries and the sdl2 build tag; default
// builds link the stub in sdl2_stub.go instead.
type SDL2 struct {
	window      *sdl.Window
	renderer    *sdl.Renderer
	texture     *sdl.Texture
	audioDevice sdl.AudioDeviceID
	running     bool

	held map[joypad.Key]bool
}

func NewSDL2() *SDL2 {
	return &SDL2{held: make(map[joypad.Key]bool)}
}

func (s *SDL2) Init(cfg Config) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("backend: sdl2 init: %w", err)
	}

	want := sdl.AudioSpec{Freq: audioSampleRate, Format: sdl.AUDIO_S16SYS, Channels: 1, Samples: 1024}
	device, err := sdl.OpenAudioDevice("", false, &want, nil, 0)
	if err != nil {
		slog.Warn("sdl2 audio device unavailable, running silent", "error", err)
	} else {
		s.audioDevice = device
		sdl.PauseAudioDevice(device, false)
	}

	scale := cfg.Scale
	if scale <= 0 {
		scale = defaultScale
	}

	title := cfg.Title
	if title == "" {
		title = "rgy"
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*scale), int32(video.FramebufferHeight*scale), sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("backend: create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("backend: create renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth, video.FramebufferHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("backend: create texture: %w", err)
	}
	s.texture = texture
	s.running = true

	slog.Info("sdl2 backend initialized")
	return nil
}

func (s *SDL2) Render(frame *video.FrameBuffer) (bool, error) {
	if !s.running {
		return false, nil
	}

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		s.handleEvent(event)
	}
	if !s.running {
		return false, nil
	}

	pixels := frame.ToSlice()
	sdlPixels := make([]byte, video.FramebufferWidth*video.FramebufferHeight*4)
	for i, px := range pixels {
		r, g, b, a := byte(px>>24), byte(px>>16), byte(px>>8), byte(px)
		idx := i * 4
		sdlPixels[idx] = a
		sdlPixels[idx+1] = b
		sdlPixels[idx+2] = g
		sdlPixels[idx+3] = r
	}

	s.texture.Update(nil, unsafe.Pointer(&sdlPixels[0]), video.FramebufferWidth*4)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()

	return true, nil
}

func (s *SDL2) Pressed(key joypad.Key) bool { return s.held[key] }

func (s *SDL2) Cleanup() error {
	if s.audioDevice != 0 {
		sdl.CloseAudioDevice(s.audioDevice)
	}
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

// Speaker returns a sound.Speaker that queues short synthesized bursts to
// this backend's SDL audio device, triggered every time the sound bus
// decodes a channel trigger (spec.md §4.10's Speaker collaborator).
func (s *SDL2) Speaker() sound.Speaker {
	return sdlSpeaker{device: s.audioDevice}
}

type sdlSpeaker struct {
	device sdl.AudioDeviceID
}

// burstDuration is deliberately short: the sound bus reports one trigger
// per note-on, not a continuously-running oscillator, so each trigger gets
// an audible chirp rather than an attempt at sustained synthesis.
const burstDuration = 80 * time.Millisecond

func (sp sdlSpeaker) OnTrigger(d sound.Descriptor) {
	if sp.device == 0 {
		return
	}

	freq := channelFrequency(d)
	if freq <= 0 {
		return
	}

	n := int(burstDuration.Seconds() * audioSampleRate)
	samples := make([]int16, n)
	amplitude := float64(d.Volume) / 15.0
	if amplitude == 0 {
		amplitude = 0.3
	}
	for i := range samples {
		t := float64(i) / audioSampleRate
		v := math.Sin(2 * math.Pi * freq * t)
		samples[i] = int16(v * amplitude * 32000)
	}

	buf := make([]byte, len(samples)*2)
	for i, v := range samples {
		buf[i*2] = byte(v)
		buf[i*2+1] = byte(v >> 8)
	}
	sdl.QueueAudio(sp.device, buf)
}

func (sp sdlSpeaker) OnMasterVolume(uint8, uint8, [4]bool, [4]bool, bool) {}

// channelFrequency converts a decoded period into an audible frequency
// using the Game Boy's own square/wave period formulas; noise (channel 3)
// has no periodic frequency, so it gets a fixed low tone instead.
func channelFrequency(d sound.Descriptor) float64 {
	switch d.Channel {
	case 0, 1:
		if d.Period >= 2048 {
			return 0
		}
		return 131072.0 / float64(2048-d.Period)
	case 2:
		if d.Period >= 2048 {
			return 0
		}
		return 65536.0 / float64(2048-d.Period)
	default:
		return 220
	}
}

func (s *SDL2) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		s.running = false
	case *sdl.KeyboardEvent:
		key, ok := sdlKeyMapping[e.Keysym.Sym]
		if e.Keysym.Sym == sdl.K_ESCAPE && e.Type == sdl.KEYDOWN {
			s.running = false
			return
		}
		if !ok {
			return
		}
		s.held[key] = e.Type == sdl.KEYDOWN
	}
}

var sdlKeyMapping = map[sdl.Keycode]joypad.Key{
	sdl.K_UP:     joypad.Up,
	sdl.K_DOWN:   joypad.Down,
	sdl.K_LEFT:   joypad.Left,
	sdl.K_RIGHT:  joypad.Right,
	sdl.K_z:      joypad.A,
	sdl.K_x:      joypad.B,
	sdl.K_RETURN: joypad.Start,
	sdl.K_SPACE:  joypad.Select,
}

var _ Backend = (*SDL2)(nil)
