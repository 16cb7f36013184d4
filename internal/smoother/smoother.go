// Package smoother converts a noisy target color into a rate-limited output
// trajectory. Smoothing happens in two stages: the raw input is low-pass
// filtered into a smoothed target, and the displayed color then chases that
// target with a capped per-update step. Scene cuts and bursts of rapid input
// change slow both stages down so the strip never strobes.
package smoother

import (
	"math"

	"github.com/ayyo42069/BRGBC/internal/colors"
	"github.com/ayyo42069/BRGBC/internal/utils"
)

// Options tunes the Smoother. Zero values select defaults.
type Options struct {
	TargetAlpha     float64 // low-pass factor for the smoothed target
	ChaseRate       float64 // fraction of the remaining delta taken per update
	MaxHueStep      float64 // absolute per-update hue cap, degrees
	MaxStep         float64 // absolute per-update saturation/value cap
	BigJumpHue      float64 // hue delta treated as a scene cut, degrees
	RapidHueDelta   float64 // raw hue change counting toward a rapid episode
	RapidValueDelta float64 // raw value change counting toward a rapid episode
	RapidRunLength  int     // consecutive frames before the episode latches
	Slowdown        float64 // multiplier applied to both stages when slowed
	BlackEpsilon    float64 // below this, value snaps to exactly zero
}

func (o Options) withDefaults() Options {
	if o.TargetAlpha <= 0 {
		o.TargetAlpha = 0.35
	}
	if o.ChaseRate <= 0 {
		o.ChaseRate = 0.3
	}
	if o.MaxHueStep <= 0 {
		o.MaxHueStep = 14
	}
	if o.MaxStep <= 0 {
		o.MaxStep = 0.08
	}
	if o.BigJumpHue <= 0 {
		o.BigJumpHue = 70
	}
	if o.RapidHueDelta <= 0 {
		o.RapidHueDelta = 40
	}
	if o.RapidValueDelta <= 0 {
		o.RapidValueDelta = 0.25
	}
	if o.RapidRunLength <= 0 {
		o.RapidRunLength = 3
	}
	if o.Slowdown <= 0 {
		o.Slowdown = 0.35
	}
	if o.BlackEpsilon <= 0 {
		o.BlackEpsilon = 0.04
	}
	return o
}

// Smoother owns the per-session trajectory state. Not safe for concurrent
// use; one instance belongs to one sync session.
type Smoother struct {
	opts Options

	current colors.HSV
	target  colors.HSV
	prevRaw colors.HSV

	rapidRun    int
	rapidActive bool
	primed      bool
}

// New returns a Smoother positioned at black.
func New(opts Options) *Smoother {
	return &Smoother{opts: opts.withDefaults()}
}

// Reset snaps the displayed color, the smoothed target, and the raw history
// to the given color and clears rapid-change state. Call it on session
// (re)start so output does not fade in from black or a stale color.
func (s *Smoother) Reset(r, g, b uint8) {
	c := colors.FromRGB(r, g, b)
	s.current = c
	s.target = c
	s.prevRaw = c
	s.rapidRun = 0
	s.rapidActive = false
	s.primed = true
}

// Smooth advances the trajectory toward the raw target color and returns
// the next displayed color.
func (s *Smoother) Smooth(r, g, b uint8) (uint8, uint8, uint8) {
	return s.step(colors.FromRGB(r, g, b), 0)
}

// SmoothResponsive is the direct-interaction entry point. responsiveness in
// [0,1] interpolates every internal speed constant between very slow and
// instant; at 0.95 and above the output snaps immediately.
func (s *Smoother) SmoothResponsive(r, g, b uint8, responsiveness float64) (uint8, uint8, uint8) {
	responsiveness = utils.Clamp(responsiveness, 0.0, 1.0)
	if responsiveness >= 0.95 {
		s.Reset(r, g, b)
		return s.current.RGB()
	}
	return s.step(colors.FromRGB(r, g, b), responsiveness)
}

func (s *Smoother) step(raw colors.HSV, responsiveness float64) (uint8, uint8, uint8) {
	if !s.primed {
		s.Reset(raw.RGB())
		return s.current.RGB()
	}

	s.trackRapidChange(raw)

	slowdown := 1.0
	if s.rapidActive || math.Abs(colors.HueDelta(s.current.H, raw.H)) > s.opts.BigJumpHue {
		slowdown = s.opts.Slowdown
	}

	// Responsiveness scales the same constants the slowdown does, from the
	// configured pace at 0 up to an effectively instant chase near 1.
	targetAlpha := utils.Lerp(s.opts.TargetAlpha, 1, responsivenessCurve(responsiveness)) * slowdown
	chaseRate := utils.Lerp(s.opts.ChaseRate, 1, responsivenessCurve(responsiveness)) * slowdown
	maxHueStep := utils.Lerp(s.opts.MaxHueStep, 360, responsivenessCurve(responsiveness))
	maxStep := utils.Lerp(s.opts.MaxStep, 1, responsivenessCurve(responsiveness))

	// Stage 1: low-pass the raw input into the smoothed target.
	s.target = colors.HSV{
		H: colors.LerpHue(s.target.H, raw.H, targetAlpha),
		S: utils.EMA(s.target.S, raw.S, targetAlpha),
		V: utils.EMA(s.target.V, raw.V, targetAlpha),
	}

	// Stage 2: rate-limited chase toward the smoothed target.
	s.current = colors.HSV{
		H: colors.NormalizeHue(s.current.H + cappedStep(colors.HueDelta(s.current.H, s.target.H), chaseRate, maxHueStep)),
		S: utils.Clamp(s.current.S+cappedStep(s.target.S-s.current.S, chaseRate, maxStep), 0.0, 1.0),
		V: utils.Clamp(s.current.V+cappedStep(s.target.V-s.current.V, chaseRate, maxStep), 0.0, 1.0),
	}

	if s.current.V < s.opts.BlackEpsilon && s.target.V < s.opts.BlackEpsilon {
		s.current.V = 0
	}

	return s.current.RGB()
}

// trackRapidChange counts consecutive frames of large raw deltas; once the
// run reaches the configured length every subsequent update is treated as
// part of the episode until the input settles again.
func (s *Smoother) trackRapidChange(raw colors.HSV) {
	hueJump := math.Abs(colors.HueDelta(s.prevRaw.H, raw.H)) > s.opts.RapidHueDelta
	valueJump := math.Abs(raw.V-s.prevRaw.V) > s.opts.RapidValueDelta
	if hueJump || valueJump {
		s.rapidRun++
		if s.rapidRun >= s.opts.RapidRunLength {
			s.rapidActive = true
		}
	} else {
		s.rapidRun = 0
		s.rapidActive = false
	}
	s.prevRaw = raw
}

func cappedStep(delta, rate, maxStep float64) float64 {
	step := delta * rate
	if step > maxStep {
		return maxStep
	}
	if step < -maxStep {
		return -maxStep
	}
	return step
}

// responsivenessCurve biases interpolation so low responsiveness values
// stay close to the configured smoothing pace.
func responsivenessCurve(t float64) float64 {
	return t * t
}
