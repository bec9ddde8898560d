package shiftlight

import (
	"math"
	"time"

	"github.com/jnovak/shiftlight/ledstrip"
)

var (
	colorIdle     = ledstrip.Color{R: 255, G: 120, B: 0}
	colorError    = ledstrip.Color{R: 255, G: 0, B: 0}
	colorEff      = ledstrip.Color{R: 0, G: 200, B: 40}
	colorStall    = ledstrip.Color{R: 255, G: 60, B: 0}
	colorBar      = ledstrip.Color{R: 0, G: 220, B: 60}
	colorShiftBar = ledstrip.Color{R: 255, G: 30, B: 0}
	colorGapA     = ledstrip.Color{R: 0, G: 0, B: 255}
	colorGapB     = ledstrip.Color{R: 255, G: 255, B: 255}
	colorRevLimit = ledstrip.Color{R: 180, G: 0, B: 255}
)

const (
	pepperStep      = 60 * time.Millisecond
	pepperHoldSteps = 4

	stallPeriod        = 800 * time.Millisecond
	stallMinBrightness = 0.1

	// gap flash interval range for the shift band; faster as the rev
	// limit approaches
	flashSlow = 250 * time.Millisecond
	flashFast = 60 * time.Millisecond

	efficiencyEdge = 2
)

// top of the proportional bar bands
const (
	normalMax = shiftMin - 1
	shiftMax  = revLimitMin - 1
)

// phaseKind groups visual states that share animation mechanics. A
// state change within the same kind keeps the running phase so the
// pattern doesn't jump.
type phaseKind int

const (
	phaseStatic phaseKind = iota
	phasePepper
	phasePulse
	phaseBar
	phaseBarFlash
)

func (s VisualState) phase() phaseKind {
	switch s {
	case StateIdleNeutral, StateLinkError:
		return phasePepper
	case StateStallDanger:
		return phasePulse
	case StateNormalDriving:
		return phaseBar
	case StateShiftDanger:
		return phaseBarFlash
	}
	return phaseStatic
}

// AnimationEngine turns a visual state and the current telemetry into a
// color buffer for the LED strip. All timing derives from elapsed time
// against the injected clock; rendering never blocks and is
// deterministic for identical inputs. The strip length must be even,
// split into mirrored halves.
type AnimationEngine struct {
	size       int
	state      VisualState
	phaseStart time.Time
	started    bool
	buf        []ledstrip.Color
}

func NewAnimationEngine(size int) *AnimationEngine {
	return &AnimationEngine{
		size: size,
		buf:  make([]ledstrip.Color, size),
	}
}

type renderFunc func(e *AnimationEngine, t *Telemetry, elapsed time.Duration)

var renderers = map[VisualState]renderFunc{
	StateIdleNeutral:   func(e *AnimationEngine, t *Telemetry, el time.Duration) { e.renderPepper(el, colorIdle) },
	StateLinkError:     func(e *AnimationEngine, t *Telemetry, el time.Duration) { e.renderPepper(el, colorError) },
	StateEfficiency:    func(e *AnimationEngine, t *Telemetry, el time.Duration) { e.renderEfficiency() },
	StateStallDanger:   func(e *AnimationEngine, t *Telemetry, el time.Duration) { e.renderStallPulse(el) },
	StateNormalDriving: func(e *AnimationEngine, t *Telemetry, el time.Duration) { e.renderBar(t.RPM) },
	StateShiftDanger:   func(e *AnimationEngine, t *Telemetry, el time.Duration) { e.renderShiftBar(t.RPM, el) },
	StateRevLimit:      func(e *AnimationEngine, t *Telemetry, el time.Duration) { e.renderSolid(colorRevLimit) },
}

// Render produces the color buffer for the given state at the given
// instant. The returned slice is reused between calls.
func (e *AnimationEngine) Render(state VisualState, t *Telemetry, now time.Time) []ledstrip.Color {
	if !e.started || state.phase() != e.state.phase() {
		e.phaseStart = now
		e.started = true
	}
	e.state = state

	for i := range e.buf {
		e.buf[i] = ledstrip.Color{}
	}
	if fn := renderers[state]; fn != nil {
		fn(e, t, now.Sub(e.phaseStart))
	}
	return e.buf
}

// Blank returns an all-off buffer of the strip's length.
func (e *AnimationEngine) Blank() []ledstrip.Color {
	for i := range e.buf {
		e.buf[i] = ledstrip.Color{}
	}
	return e.buf
}

func (e *AnimationEngine) mirror(n int, c ledstrip.Color) {
	half := e.size / 2
	if n > half {
		n = half
	}
	for i := 0; i < n; i++ {
		e.buf[i] = c
		e.buf[e.size-1-i] = c
	}
}

// renderPepper grows the lit region from both edges toward the center
// one step at a time, holds fully lit, then restarts.
func (e *AnimationEngine) renderPepper(elapsed time.Duration, c ledstrip.Color) {
	half := e.size / 2
	cycle := half + pepperHoldSteps
	step := int(elapsed/pepperStep) % cycle
	lit := step + 1
	if lit > half {
		lit = half
	}
	e.mirror(lit, c)
}

func (e *AnimationEngine) renderEfficiency() {
	e.mirror(efficiencyEdge, colorEff)
}

func (e *AnimationEngine) renderStallPulse(elapsed time.Duration) {
	frac := float64(elapsed%stallPeriod) / float64(stallPeriod)
	brightness := stallMinBrightness +
		(1-stallMinBrightness)*(math.Sin(2*math.Pi*frac)+1)/2
	e.renderSolid(colorStall.Scale(brightness))
}

func (e *AnimationEngine) renderSolid(c ledstrip.Color) {
	for i := range e.buf {
		e.buf[i] = c
	}
}

// barLength maps rpm linearly onto [0,half] pixels per side, clamped.
func (e *AnimationEngine) barLength(rpm, lo, hi int) int {
	half := e.size / 2
	frac := float64(rpm-lo) / float64(hi-lo)
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	return int(frac*float64(half) + 0.5)
}

func (e *AnimationEngine) renderBar(rpm int) {
	e.mirror(e.barLength(rpm, normalMin, normalMax), colorBar)
}

// renderShiftBar draws the mirrored bar and flashes the unfilled center
// gap, faster as rpm approaches the top of the band.
func (e *AnimationEngine) renderShiftBar(rpm int, elapsed time.Duration) {
	n := e.barLength(rpm, shiftMin, shiftMax)
	e.mirror(n, colorShiftBar)

	frac := float64(rpm-shiftMin) / float64(shiftMax-shiftMin)
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	interval := flashSlow - time.Duration(frac*float64(flashSlow-flashFast))
	gap := colorGapA
	if (elapsed/interval)%2 == 1 {
		gap = colorGapB
	}
	for i := n; i < e.size-n; i++ {
		e.buf[i] = gap
	}
}
