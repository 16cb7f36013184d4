package effects

import (
	"math"
	"math/rand"
	"time"

	"github.com/ayyo42069/BRGBC/internal/colors"
	"github.com/ayyo42069/BRGBC/internal/protocol"
	"github.com/ayyo42069/BRGBC/internal/utils"
)

// step is one generator emission: the packet to write and how long to
// suspend before the next iteration.
type step struct {
	pkt   protocol.Packet
	delay time.Duration
}

// generator is a deterministic state machine over (phase, rng). next must
// be cheap; it runs inside the playback loop.
type generator interface {
	next(speed float64) step
}

func newGenerator(e Effect, rng *rand.Rand) generator {
	switch e {
	case Breathe:
		return &breathe{}
	case Strobe:
		return &strobe{}
	case Candle:
		return &candle{rng: rng}
	case Pulse:
		return &pulse{}
	case ColorCycle:
		return &colorCycle{}
	default:
		return &rainbow{}
	}
}

// delayFor maps speed ∈ [0,1] onto a per-step delay between slow and fast.
func delayFor(slow, fast time.Duration, speed float64) time.Duration {
	return time.Duration(utils.Lerp(float64(slow), float64(fast), utils.Clamp(speed, 0.0, 1.0)))
}

func colorStep(c colors.HSV, delay time.Duration) step {
	r, g, b := c.RGB()
	return step{pkt: protocol.StaticColor(int(r), int(g), int(b)), delay: delay}
}

// rainbow sweeps the hue wheel at full saturation.
type rainbow struct {
	hue float64
}

func (g *rainbow) next(speed float64) step {
	g.hue = colors.NormalizeHue(g.hue + 3)
	return colorStep(colors.HSV{H: g.hue, S: 1, V: 1}, delayFor(120*time.Millisecond, 15*time.Millisecond, speed))
}

// breathe raises and lowers brightness on a slowly drifting hue.
type breathe struct {
	phase float64
	hue   float64
}

func (g *breathe) next(speed float64) step {
	g.phase += 0.08
	g.hue = colors.NormalizeHue(g.hue + 0.15)
	v := 0.08 + 0.92*(1-math.Cos(g.phase))/2
	return colorStep(colors.HSV{H: g.hue, S: 0.85, V: v}, delayFor(90*time.Millisecond, 25*time.Millisecond, speed))
}

// strobe alternates full white and black; the off interval scales with
// speed, the on flash stays short so the pulse reads as a flash.
type strobe struct {
	on bool
}

func (g *strobe) next(speed float64) step {
	g.on = !g.on
	if g.on {
		return colorStep(colors.HSV{S: 0, V: 1}, 45*time.Millisecond)
	}
	return colorStep(colors.HSV{}, delayFor(550*time.Millisecond, 90*time.Millisecond, speed))
}

// candle flickers around a warm hue with seeded randomness.
type candle struct {
	rng *rand.Rand
}

func (g *candle) next(speed float64) step {
	hue := 28 + g.rng.Float64()*8
	v := 0.55 + g.rng.Float64()*0.45
	delay := delayFor(160*time.Millisecond, 40*time.Millisecond, speed)
	jitter := time.Duration(g.rng.Int63n(int64(delay / 2)))
	return colorStep(colors.HSV{H: hue, S: 0.95, V: v}, delay/2+jitter)
}

// pulse ramps brightness up quickly and releases it slowly, sawtooth-like.
type pulse struct {
	phase float64
}

func (g *pulse) next(speed float64) step {
	g.phase += 0.06
	if g.phase >= 1 {
		g.phase = 0
	}
	v := 1 - g.phase
	if g.phase < 0.12 {
		v = g.phase / 0.12
	}
	return colorStep(colors.HSV{H: 348, S: 1, V: utils.Clamp(v, 0.05, 1.0)}, delayFor(70*time.Millisecond, 18*time.Millisecond, speed))
}

// colorCycle jumps through a fixed palette, one hold per step.
type colorCycle struct {
	idx int
}

var cyclePalette = []colors.HSV{
	{H: 0, S: 1, V: 1},
	{H: 35, S: 1, V: 1},
	{H: 60, S: 1, V: 1},
	{H: 120, S: 1, V: 1},
	{H: 200, S: 1, V: 1},
	{H: 240, S: 1, V: 1},
	{H: 285, S: 1, V: 1},
}

func (g *colorCycle) next(speed float64) step {
	c := cyclePalette[g.idx]
	g.idx = (g.idx + 1) % len(cyclePalette)
	return colorStep(c, delayFor(1500*time.Millisecond, 180*time.Millisecond, speed))
}
