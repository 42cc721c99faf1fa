package backend

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/willemolding/rgy/debug"
	"github.com/willemolding/rgy/joypad"
	"github.com/willemolding/rgy/video"
)

// SnapshotConfig controls periodic PNG dumps in headless mode, used by
// batch/regression runs that want a visual record without a display.
type SnapshotConfig struct {
	Enabled   bool
	Interval  int
	Directory string
	ROMName   string
}

// CreateSnapshotConfig builds a SnapshotConfig from CLI-style parameters,
// creating the target directory (a temp one, if none was given).
func CreateSnapshotConfig(interval int, directory, romPath string) (SnapshotConfig, error) {
	cfg := SnapshotConfig{Enabled: interval > 0, Interval: interval}
	if !cfg.Enabled {
		return cfg, nil
	}

	if directory == "" {
		tmp, err := os.MkdirTemp("", "rgy-snapshots-*")
		if err != nil {
			return cfg, fmt.Errorf("backend: create snapshot directory: %w", err)
		}
		cfg.Directory = tmp
	} else {
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return cfg, fmt.Errorf("backend: create snapshot directory: %w", err)
		}
		cfg.Directory = directory
	}

	name := filepath.Base(romPath)
	cfg.ROMName = strings.TrimSuffix(name, filepath.Ext(name))
	return cfg, nil
}

// Headless is a Backend with no window and no input: it exists so the
// orchestrator loop can run identically whether or not a display is
// attached, taking periodic PNG snapshots for batch/regression runs
// (spec.md scenario S3).
type Headless struct {
	snapshot   SnapshotConfig
	frameCount int
}

func NewHeadless(snapshot SnapshotConfig) *Headless {
	return &Headless{snapshot: snapshot}
}

func (h *Headless) Init(cfg Config) error {
	slog.Info("headless backend initialized", "snapshot_interval", h.snapshot.Interval, "snapshot_dir", h.snapshot.Directory)
	return nil
}

func (h *Headless) Render(frame *video.FrameBuffer) (bool, error) {
	h.frameCount++
	if h.snapshot.Enabled && h.frameCount%h.snapshot.Interval == 0 {
		base := fmt.Sprintf("%s_frame_%d", h.snapshot.ROMName, h.frameCount)
		if err := debug.SaveFramePNG(frame, base, h.snapshot.Directory); err != nil {
			slog.Error("snapshot failed", "frame", h.frameCount, "error", err)
		}
	}
	return true, nil
}

func (h *Headless) Pressed(joypad.Key) bool { return false }

func (h *Headless) Cleanup() error { return nil }

var _ Backend = (*Headless)(nil)
