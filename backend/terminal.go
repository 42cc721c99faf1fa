package backend

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/willemolding/rgy/joypad"
	"github.com/willemolding/rgy/video"
)

// keyTimeout is how long a key press is considered "held" after its last
// key-down event, since terminals report discrete events, not hold state.
const keyTimeout = 120 * time.Millisecond

// keyMapping maps terminal key events to Game Boy buttons; arrow keys and
// WASD both drive the d-pad, matching the pack's usual dual binding.
var keyMapping = map[tcell.Key]joypad.Key{
	tcell.KeyUp:    joypad.Up,
	tcell.KeyDown:  joypad.Down,
	tcell.KeyLeft:  joypad.Left,
	tcell.KeyRight: joypad.Right,
	tcell.KeyEnter: joypad.Start,
}

var runeMapping = map[rune]joypad.Key{
	'z': joypad.A,
	'x': joypad.B,
	'w': joypad.Up,
	's': joypad.Down,
	'a': joypad.Left,
	'd': joypad.Right,
}

// Terminal is a Backend that renders with tcell, packing two Game Boy
// scanlines into one character cell via the Unicode upper-half-block glyph
// so a 160x144 frame fits in a 160x72 terminal region.
type Terminal struct {
	screen  tcell.Screen
	running bool
	cfg     Config

	held map[joypad.Key]time.Time
}

func NewTerminal() *Terminal {
	return &Terminal{held: make(map[joypad.Key]time.Time)}
}

func (t *Terminal) Init(cfg Config) error {
	t.cfg = cfg

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	t.screen = screen
	t.running = true

	go t.handleSignals()

	slog.Info("terminal backend initialized")
	return nil
}

func (t *Terminal) Render(frame *video.FrameBuffer) (bool, error) {
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.handleKey(ev)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	if !t.running {
		return false, nil
	}

	t.draw(frame)
	t.screen.Show()
	return true, nil
}

func (t *Terminal) draw(frame *video.FrameBuffer) {
	for y := 0; y < video.FramebufferHeight; y += 2 {
		for x := 0; x < video.FramebufferWidth; x++ {
			top := gbColorToTcell(video.GBColor(frame.GetPixel(x, y)))
			bottom := tcell.ColorWhite
			if y+1 < video.FramebufferHeight {
				bottom = gbColorToTcell(video.GBColor(frame.GetPixel(x, y+1)))
			}
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			t.screen.SetContent(x, y/2, '▀', nil, style)
		}
	}
}

func gbColorToTcell(c video.GBColor) tcell.Color {
	switch c {
	case video.WhiteColor:
		return tcell.ColorWhite
	case video.LightGreyColor:
		return tcell.ColorSilver
	case video.DarkGreyColor:
		return tcell.ColorGray
	case video.BlackColor:
		return tcell.ColorBlack
	default:
		return tcell.ColorWhite
	}
}

func (t *Terminal) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
		t.running = false
		return
	}
	now := time.Now()
	if key, ok := keyMapping[ev.Key()]; ok {
		t.held[key] = now
		return
	}
	if ev.Key() == tcell.KeyRune {
		switch ev.Rune() {
		case ' ':
			t.held[joypad.Select] = now
			return
		}
		if key, ok := runeMapping[ev.Rune()]; ok {
			t.held[key] = now
		}
	}
}

func (t *Terminal) Pressed(key joypad.Key) bool {
	last, ok := t.held[key]
	if !ok {
		return false
	}
	return time.Since(last) < keyTimeout
}

func (t *Terminal) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

func (t *Terminal) handleSignals() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	<-signals
	t.running = false
}

var _ Backend = (*Terminal)(nil)
