//go:build !sdl2

package backend

import (
	"fmt"

	"github.com/willemolding/rgy/joypad"
	"github.com/willemolding/rgy/sound"
	"github.com/willemolding/rgy/video"
)

// SDL2 stubs out to an error when the sdl2 build tag isn't set, so the
// module still builds without the SDL2 development libraries installed.
type SDL2 struct{}

func NewSDL2() *SDL2 { return &SDL2{} }

func (s *SDL2) Init(Config) error {
	return fmt.Errorf("backend: sdl2 backend not available - build with -tags sdl2 and install SDL2 development libraries")
}

func (s *SDL2) Render(*video.FrameBuffer) (bool, error) {
	return false, fmt.Errorf("backend: sdl2 backend not available")
}

func (s *SDL2) Pressed(joypad.Key) bool { return false }

func (s *SDL2) Cleanup() error { return nil }

// Speaker returns a silent sound.Speaker, since no audio device was opened.
func (s *SDL2) Speaker() sound.Speaker { return sound.NopSpeaker{} }

var _ Backend = (*SDL2)(nil)
