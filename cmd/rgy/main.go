package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/willemolding/rgy/backend"
	"github.com/willemolding/rgy/bit"
	"github.com/willemolding/rgy/debug"
	"github.com/willemolding/rgy/disasm"
	"github.com/willemolding/rgy/joypad"
	"github.com/willemolding/rgy/sound"
	"github.com/willemolding/rgy/system"
	"github.com/willemolding/rgy/video"
)

func main() {
	app := cli.NewApp()
	app.Name = "rgy"
	app.Description = "A Game Boy emulator core"
	app.Usage = "rgy [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend: terminal, sdl2, or headless",
			Value: "terminal",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run, then exit (0 = run until the backend quits)",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "native-speed",
			Usage: "Disable pacing and run as fast as the host allows",
		},
		cli.BoolFlag{
			Name:  "cgb",
			Usage: "Enable Color Game Boy register plumbing",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save PNG frame snapshots every N frames in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Log CPU state and the next instruction before every frame",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("rgy exited with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	be, err := selectBackend(c, romPath)
	if err != nil {
		return err
	}

	beCfg := backend.Config{Title: filepath.Base(romPath)}
	if err := be.Init(beCfg); err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	defer be.Cleanup()

	host := &cliHost{backend: be, ramPath: ramPath(romPath), speaker: sound.NopSpeaker{}}
	if withSpeaker, ok := be.(interface{ Speaker() sound.Speaker }); ok {
		host.speaker = withSpeaker.Speaker()
	}

	sys, err := system.New(rom, host, system.Config{
		NativeSpeed: c.Bool("native-speed"),
		CGB:         c.Bool("cgb"),
	}, nil)
	if err != nil {
		return fmt.Errorf("initializing system: %w", err)
	}

	frames := c.Int("frames")
	slog.Info("running", "rom", romPath, "backend", c.String("backend"), "frames", frames)

	debugEnabled := c.Bool("debug")

	i := 0
	for {
		if debugEnabled {
			logFrameDebugInfo(sys)
		}

		sys.RunFrame()

		keep, err := be.Render(sys.FrameBuffer())
		if err != nil {
			return fmt.Errorf("rendering frame: %w", err)
		}
		if !keep {
			break
		}

		i++
		if frames > 0 && i >= frames {
			break
		}
	}

	if err := sys.Shutdown(); err != nil {
		slog.Error("saving cartridge RAM", "error", err)
	}

	slog.Info("stopped", "frames_run", i)
	return nil
}

// logFrameDebugInfo prints a one-line CPU/disassembly summary before each
// frame runs, the lightweight command-line counterpart to the backend debug
// overlays that consume the same debug.Capture/disasm data.
func logFrameDebugInfo(sys *system.System) {
	spriteHeight := 8
	if bit.IsSet(2, sys.GPU().LCDC()) {
		spriteHeight = 16
	}

	data := debug.Capture(sys.CPU(), sys.Bus(), 0, sys.GPU().Line(), spriteHeight, debug.Running)
	line := disasm.DisassembleAt(data.CPU.PC, sys.Bus())

	slog.Debug("frame",
		"pc", fmt.Sprintf("0x%04X", data.CPU.PC),
		"instr", line.Instruction,
		"active_sprites", data.OAM.ActiveSprites,
		"lcdc", data.VRAM.TilemapInfo.FormatSummary(),
	)
}

func selectBackend(c *cli.Context, romPath string) (backend.Backend, error) {
	switch c.String("backend") {
	case "terminal":
		return backend.NewTerminal(), nil
	case "sdl2":
		return backend.NewSDL2(), nil
	case "headless":
		snap, err := backend.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return nil, err
		}
		return backend.NewHeadless(snap), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want terminal, sdl2, or headless)", c.String("backend"))
	}
}

// ramPath derives the battery-backed save path from the ROM path, the
// common ".sav" sibling-file convention.
func ramPath(romPath string) string {
	ext := filepath.Ext(romPath)
	return strings.TrimSuffix(romPath, ext) + ".sav"
}

// cliHost adapts a backend.Backend plus a save-file path into system.Host.
// Video is not forwarded scanline-by-scanline; the CLI instead reads the
// accumulated framebuffer once per finished frame via be.Render.
type cliHost struct {
	backend backend.Backend
	ramPath string
	speaker sound.Speaker
}

func (h *cliHost) Sched() bool { return true }

func (h *cliHost) VideoSend(int, [video.FramebufferWidth]uint32) {}

func (h *cliHost) JoypadPressed(key joypad.Key) bool { return h.backend.Pressed(key) }

func (h *cliHost) SoundPlay(d sound.Descriptor) { h.speaker.OnTrigger(d) }
func (h *cliHost) SoundStop(int)                {}

func (h *cliHost) Clock() int64 { return time.Now().UnixMicro() }

func (h *cliHost) LoadRAM() ([]byte, error) {
	data, err := os.ReadFile(h.ramPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (h *cliHost) SaveRAM(data []byte) error {
	return os.WriteFile(h.ramPath, data, 0o644)
}

var _ system.Host = (*cliHost)(nil)
