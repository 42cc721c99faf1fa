// Package timing implements the real-time frequency governor: pacing the
// system's step loop to the DMG's ~4.194304 MHz clock (spec.md §4.11), with
// a native-speed bypass for headless/batch runs.
package timing

import "time"

// Game Boy clock constants.
const (
	CyclesPerFrame = 70224
	CPUFrequency   = 4194304
)

// TargetFPS is the exact Game Boy frame rate derived from the clock.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(CyclesPerFrame)
}

// FrameDuration is the wall-clock duration of a single frame at TargetFPS.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// Limiter paces the step loop to some target frequency.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame, or
	// returns immediately if timing is already behind schedule.
	WaitForNextFrame()
	// Reset clears accumulated timing state, used after a pause/resume.
	Reset()
}

// NewNoOpLimiter returns a Limiter that never blocks — the native-speed
// bypass for headless or batch-test runs (spec.md §4.11 invariant: emulation
// correctness must not depend on this governor running).
func NewNoOpLimiter() Limiter { return noOpLimiter{} }

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// TickerLimiter paces frames with a time.Ticker: simple and consistent, at
// the cost of the OS scheduler's own jitter.
type TickerLimiter struct {
	ticker *time.Ticker
	ch     <-chan time.Time
}

func NewTickerLimiter() *TickerLimiter {
	ticker := time.NewTicker(FrameDuration())
	return &TickerLimiter{ticker: ticker, ch: ticker.C}
}

func (t *TickerLimiter) WaitForNextFrame() { <-t.ch }
func (t *TickerLimiter) Reset()            { t.ticker.Reset(FrameDuration()) }
func (t *TickerLimiter) Stop()             { t.ticker.Stop() }

// AdaptiveLimiter combines sleep (for efficiency) with busy-waiting (for
// accuracy) and periodically corrects for accumulated scheduler drift.
type AdaptiveLimiter struct {
	targetFrameTime time.Duration
	nextFrameTime   time.Time
	frameCounter    int64
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	return &AdaptiveLimiter{
		targetFrameTime: FrameDuration(),
		nextFrameTime:   time.Now(),
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := time.Now()
	sleepTime := a.nextFrameTime.Sub(now)

	if sleepTime > 0 {
		if sleepTime < 2*time.Millisecond {
			for time.Now().Before(a.nextFrameTime) {
			}
		} else {
			time.Sleep(sleepTime - time.Millisecond)
			for time.Now().Before(a.nextFrameTime) {
			}
		}
	} else if sleepTime < -5*time.Millisecond {
		a.nextFrameTime = now
	}

	a.nextFrameTime = a.nextFrameTime.Add(a.targetFrameTime)
	a.frameCounter++

	if a.frameCounter%60 == 0 {
		drift := time.Now().Sub(a.nextFrameTime)
		if drift.Abs() > 10*time.Millisecond {
			a.nextFrameTime = a.nextFrameTime.Add(drift / 10)
		}
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.nextFrameTime = time.Now()
	a.frameCounter = 0
}

// ClockFunc reports a monotonic timestamp in microseconds — satisfied by
// the host's clock() collaborator (spec.md §6) so the governor's pacing can
// be driven from a fake clock in tests.
type ClockFunc func() int64

// Governor paces the system orchestrator's step loop to a target CPU
// frequency by accumulating executed cycles and, every SampleCycles
// cycles, comparing elapsed wall time against the expected duration and
// sleeping in whole multiples of DelayUnit to catch up (spec.md §4.9). This
// is the cycle-granular sibling of Limiter/AdaptiveLimiter above, which
// pace by frame instead — Governor is what the orchestrator's Step loop
// drives directly, cycle by cycle.
type Governor struct {
	targetHz     float64
	sampleCycles int
	delayUnit    time.Duration
	clock        ClockFunc
	native       bool

	accumulated int
	sampleStart int64
}

// NewGovernor constructs a Governor targeting targetHz, resampling every
// sampleCycles executed cycles, correcting in units of delayUnit. clock
// supplies wall-clock microseconds; pass nil to use time.Now.
func NewGovernor(targetHz float64, sampleCycles int, delayUnit time.Duration, clock ClockFunc) *Governor {
	if clock == nil {
		clock = func() int64 { return time.Now().UnixMicro() }
	}
	return &Governor{
		targetHz:     targetHz,
		sampleCycles: sampleCycles,
		delayUnit:    delayUnit,
		clock:        clock,
		sampleStart:  clock(),
	}
}

// NativeSpeed toggles the bypass that lets batch/test runs skip pacing
// entirely — correctness must never depend on this governor running.
func (g *Governor) NativeSpeed(native bool) { g.native = native }

// Advance accounts for cycles of emulated execution and, once a full
// sample window has elapsed, sleeps to keep pace with targetHz.
func (g *Governor) Advance(cycles int) {
	if g.native || g.sampleCycles <= 0 {
		return
	}
	g.accumulated += cycles
	if g.accumulated < g.sampleCycles {
		return
	}

	expected := time.Duration(float64(g.sampleCycles) / g.targetHz * float64(time.Second))
	elapsed := time.Duration(g.clock()-g.sampleStart) * time.Microsecond

	if elapsed < expected && g.delayUnit > 0 {
		deficit := expected - elapsed
		units := deficit / g.delayUnit
		if units > 0 {
			time.Sleep(units * g.delayUnit)
		}
	}

	g.accumulated = 0
	g.sampleStart = g.clock()
}
