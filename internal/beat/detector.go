// Package beat derives a 0..1 brightness modulation signal from live audio
// energy: crisp pulses on percussive transients, smooth decay in between,
// with sensitivity that adapts to the music's dynamic range.
package beat

import (
	"math"
	"sync/atomic"

	"github.com/ayyo42069/BRGBC/internal/dsp"
	"github.com/ayyo42069/BRGBC/internal/utils"
)

// Options tunes the Detector. Zero values select defaults.
type Options struct {
	EnergyAlpha    float64 // low-pass factor for the smoothed RMS
	AmbientAlpha   float64 // slow EMA for the between-beat baseline
	WindowFrames   int     // rolling min/max window length
	MinJumpRatio   float64 // adaptive threshold floor (quiet material)
	MaxJumpRatio   float64 // adaptive threshold ceiling (loud material)
	EnergyFloor    float64 // no beat below this smoothed energy
	BassShare      float64 // bass fraction enabling the alternate trigger
	BassJumpRatio  float64 // lower jump bar for the bass path
	HoldFrames     int     // full-brightness plateau length
	TailFrames     int     // linear decay length after the hold
	CooldownFrames int     // refractory window after the tail
	AttackAlpha    float64 // output smoothing when rising
	DecayAlpha     float64 // output smoothing when falling
	AmbientBase    float64 // baseline brightness at silence
	AmbientSpan    float64 // baseline growth with overall loudness
}

func (o Options) withDefaults() Options {
	if o.EnergyAlpha <= 0 {
		o.EnergyAlpha = 0.4
	}
	if o.AmbientAlpha <= 0 {
		o.AmbientAlpha = 0.04
	}
	if o.WindowFrames <= 0 {
		o.WindowFrames = 86 // ≈2s at 44.1kHz/1024 hop
	}
	if o.MinJumpRatio <= 0 {
		o.MinJumpRatio = 1.25
	}
	if o.MaxJumpRatio <= 0 {
		o.MaxJumpRatio = 1.9
	}
	if o.EnergyFloor <= 0 {
		o.EnergyFloor = 0.01
	}
	if o.BassShare <= 0 {
		o.BassShare = 0.6
	}
	if o.BassJumpRatio <= 0 {
		o.BassJumpRatio = 1.12
	}
	if o.HoldFrames <= 0 {
		o.HoldFrames = 4
	}
	if o.TailFrames <= 0 {
		o.TailFrames = 10
	}
	if o.CooldownFrames <= 0 {
		o.CooldownFrames = 8
	}
	if o.AttackAlpha <= 0 {
		o.AttackAlpha = 0.65
	}
	if o.DecayAlpha <= 0 {
		o.DecayAlpha = 0.12
	}
	if o.AmbientBase <= 0 {
		o.AmbientBase = 0.25
	}
	if o.AmbientSpan <= 0 {
		o.AmbientSpan = 0.45
	}
	return o
}

// Detector is the per-session beat state machine. Process is called from
// the audio pipeline goroutine; Level may be read concurrently from the
// sync pipeline without locking.
type Detector struct {
	opts Options

	smoothed     float64
	prevSmoothed float64

	window      []float64
	windowIdx   int
	windowCount int

	hold     int
	tail     int
	cooldown int

	ambient float64
	output  float64

	level atomic.Uint64 // float64 bits
}

// New returns a Detector with cleared rolling state.
func New(opts Options) *Detector {
	opts = opts.withDefaults()
	d := &Detector{
		opts:    opts,
		window:  make([]float64, opts.WindowFrames),
		ambient: opts.AmbientBase,
		output:  opts.AmbientBase,
	}
	d.level.Store(math.Float64bits(opts.AmbientBase))
	return d
}

// Reset clears all rolling-window and countdown state. Call it between
// sessions; a new session must not inherit the previous one's envelope.
func (d *Detector) Reset() {
	d.smoothed = 0
	d.prevSmoothed = 0
	for i := range d.window {
		d.window[i] = 0
	}
	d.windowIdx = 0
	d.windowCount = 0
	d.hold = 0
	d.tail = 0
	d.cooldown = 0
	d.ambient = d.opts.AmbientBase
	d.output = d.opts.AmbientBase
	d.level.Store(math.Float64bits(d.opts.AmbientBase))
}

// Level returns the current brightness modulation in [0,1]. Safe for
// concurrent lock-free reads.
func (d *Detector) Level() float64 {
	return math.Float64frombits(d.level.Load())
}

// Process ingests one audio frame's features and returns the updated level.
func (d *Detector) Process(f dsp.Features) float64 {
	d.prevSmoothed = d.smoothed
	d.smoothed = utils.EMA(d.smoothed, f.RMS, d.opts.EnergyAlpha)
	if d.prevSmoothed == 0 {
		d.prevSmoothed = d.smoothed
	}

	jumpRatio := 1.0
	if d.prevSmoothed > 1e-6 {
		jumpRatio = d.smoothed / d.prevSmoothed
	}

	windowMin, windowMax := d.pushWindow(d.smoothed)

	// Quiet, compressed material needs a lower bar; loud dynamic material a
	// higher one, or every chorus swell would read as a beat.
	dynamicRange := 0.0
	if windowMax > 1e-9 {
		dynamicRange = utils.Clamp((windowMax-windowMin)/windowMax, 0.0, 1.0)
	}
	threshold := utils.Lerp(d.opts.MinJumpRatio, d.opts.MaxJumpRatio, dynamicRange)

	energyNorm := 0.0
	if windowMax-windowMin > 1e-9 {
		energyNorm = utils.Clamp((d.smoothed-windowMin)/(windowMax-windowMin), 0.0, 1.0)
	}
	d.ambient = utils.EMA(d.ambient,
		d.opts.AmbientBase+d.opts.AmbientSpan*energyNorm,
		d.opts.AmbientAlpha)

	if d.idle() && d.beatFires(jumpRatio, threshold, f.Bass()) {
		d.hold = d.opts.HoldFrames
	}

	target := d.advanceEnvelope()

	// Fast attack preserves the pulse edge; slow decay keeps it visible.
	if target > d.output {
		d.output = utils.EMA(d.output, target, d.opts.AttackAlpha)
	} else {
		d.output = utils.EMA(d.output, target, d.opts.DecayAlpha)
	}
	d.output = utils.Clamp(d.output, 0.0, 1.0)

	d.level.Store(math.Float64bits(d.output))
	return d.output
}

func (d *Detector) idle() bool {
	return d.hold == 0 && d.tail == 0 && d.cooldown == 0
}

func (d *Detector) beatFires(jumpRatio, threshold, bassShare float64) bool {
	if d.smoothed < d.opts.EnergyFloor {
		return false
	}
	if jumpRatio > threshold {
		return true
	}
	return bassShare > d.opts.BassShare && jumpRatio > d.opts.BassJumpRatio
}

// advanceEnvelope steps the hold → tail → cooldown cascade and returns the
// brightness target for this frame.
func (d *Detector) advanceEnvelope() float64 {
	switch {
	case d.hold > 0:
		d.hold--
		if d.hold == 0 {
			d.tail = d.opts.TailFrames
		}
		return 1
	case d.tail > 0:
		progress := float64(d.tail) / float64(d.opts.TailFrames)
		d.tail--
		if d.tail == 0 {
			d.cooldown = d.opts.CooldownFrames
		}
		return d.ambient + (1-d.ambient)*progress
	case d.cooldown > 0:
		d.cooldown--
		return d.ambient
	default:
		return d.ambient
	}
}

func (d *Detector) pushWindow(v float64) (float64, float64) {
	d.window[d.windowIdx] = v
	d.windowIdx = (d.windowIdx + 1) % len(d.window)
	if d.windowCount < len(d.window) {
		d.windowCount++
	}

	windowMin := math.Inf(1)
	windowMax := math.Inf(-1)
	for i := range d.windowCount {
		sample := d.window[i]
		windowMin = math.Min(windowMin, sample)
		windowMax = math.Max(windowMax, sample)
	}
	return windowMin, windowMax
}
