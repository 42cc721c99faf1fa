// Package backend defines the platform surface spec.md §6 leaves to the
// embedder: rendering frames and reading the player's held buttons.
// Concrete backends live alongside this file (headless, terminal, sdl2);
// cmd/rgy selects one at startup and adapts it into a system.Host.
package backend

import (
	"github.com/willemolding/rgy/joypad"
	"github.com/willemolding/rgy/video"
)

// Config holds the knobs every backend accepts, though not every backend
// honors every field (a headless run has no window to scale or title).
type Config struct {
	Title       string
	Scale       int
	ShowDebug   bool
	TestPattern bool
}

// Backend is a complete platform surface: it draws frames and reports
// which buttons the player is holding. Implementations are responsible for
// pumping their own platform event loop on every Render call.
type Backend interface {
	// Init prepares the backend to start rendering.
	Init(cfg Config) error

	// Render draws frame and pumps pending platform events. It returns
	// false once the backend wants the run loop to stop (window closed,
	// quit key pressed, signal received).
	Render(frame *video.FrameBuffer) (bool, error)

	// Pressed reports whether key is currently held down.
	Pressed(key joypad.Key) bool

	// Cleanup releases any platform resources acquired by Init.
	Cleanup() error
}
