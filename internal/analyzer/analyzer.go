// Package analyzer extracts a single stable "mood" color from a raster
// frame. Pixels vote into hue bins, bin scores are low-pass filtered across
// frames, and the incumbent bin receives a hysteresis bonus so near-tied
// hues do not flip-flop from frame to frame.
package analyzer

import (
	"image"

	"github.com/ayyo42069/BRGBC/internal/colors"
	"github.com/ayyo42069/BRGBC/internal/utils"
)

// Options tunes the behaviour of the Analyzer. Zero values select defaults.
type Options struct {
	Bins            int     // hue bins covering 360 degrees uniformly
	Stride          int     // sample every Nth pixel in both axes
	MinSaturation   float64 // below this a sample is considered non-color
	MinValue        float64 // below this a sample is considered near-black
	ScoreAlpha      float64 // per-bin score low-pass factor
	HysteresisBoost float64 // multiplicative advantage for the incumbent bin
	MinScore        float64 // absolute score floor before the fallback path
	OutputBlend     float64 // blend factor toward the previous emission
	SaturationBoost float64 // adaptive boost strength for dull saturation
	ValueBoost      float64 // adaptive boost strength for dim value
	MinDimension    int     // frames smaller than this return black
}

func (o Options) withDefaults() Options {
	if o.Bins <= 0 {
		o.Bins = 24
	}
	if o.Stride <= 0 {
		o.Stride = 4
	}
	if o.MinSaturation <= 0 {
		o.MinSaturation = 0.25
	}
	if o.MinValue <= 0 {
		o.MinValue = 0.12
	}
	if o.ScoreAlpha <= 0 {
		o.ScoreAlpha = 0.35
	}
	if o.HysteresisBoost <= 0 {
		o.HysteresisBoost = 1.3
	}
	if o.MinScore <= 0 {
		o.MinScore = 4
	}
	if o.OutputBlend <= 0 {
		o.OutputBlend = 0.45
	}
	if o.SaturationBoost <= 0 {
		o.SaturationBoost = 0.35
	}
	if o.ValueBoost <= 0 {
		o.ValueBoost = 0.2
	}
	if o.MinDimension <= 0 {
		o.MinDimension = 8
	}
	return o
}

// Analyzer owns the per-session voting state. Not safe for concurrent use;
// one instance belongs to one sync session.
type Analyzer struct {
	opts Options

	scores   []float64
	dominant int
	last     colors.HSV
	primed   bool

	// per-frame scratch accumulators
	counts []int
	sumH   []float64
	sumS   []float64
	sumV   []float64
}

// New returns an Analyzer with cleared voting state.
func New(opts Options) *Analyzer {
	opts = opts.withDefaults()
	return &Analyzer{
		opts:     opts,
		scores:   make([]float64, opts.Bins),
		dominant: -1,
		counts:   make([]int, opts.Bins),
		sumH:     make([]float64, opts.Bins),
		sumS:     make([]float64, opts.Bins),
		sumV:     make([]float64, opts.Bins),
	}
}

// Reset clears all bin scores and the dominant-bin memory. Call it when
// starting a new sync session so stale bias does not carry over.
func (a *Analyzer) Reset() {
	for i := range a.scores {
		a.scores[i] = 0
	}
	a.dominant = -1
	a.primed = false
	a.last = colors.HSV{}
}

// Analyze ingests one frame and returns the stabilized dominant color.
// Frames smaller than the minimum dimension return black.
func (a *Analyzer) Analyze(img image.Image) (uint8, uint8, uint8) {
	bounds := img.Bounds()
	if bounds.Dx() < a.opts.MinDimension || bounds.Dy() < a.opts.MinDimension {
		return 0, 0, 0
	}

	for i := range a.counts {
		a.counts[i] = 0
		a.sumH[i] = 0
		a.sumS[i] = 0
		a.sumV[i] = 0
	}

	binWidth := 360.0 / float64(a.opts.Bins)

	// Fallback accumulators cover every sampled pixel, weighted by vividness,
	// so genuinely colorless scenes still resolve to something sensible.
	var fallbackWeight, fallbackR, fallbackG, fallbackB float64

	for y := bounds.Min.Y; y < bounds.Max.Y; y += a.opts.Stride {
		for x := bounds.Min.X; x < bounds.Max.X; x += a.opts.Stride {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r := uint8(r16 >> 8)
			g := uint8(g16 >> 8)
			b := uint8(b16 >> 8)
			c := colors.FromRGB(r, g, b)

			w := 0.1 + c.S*c.V
			fallbackWeight += w
			fallbackR += w * float64(r)
			fallbackG += w * float64(g)
			fallbackB += w * float64(b)

			if c.S < a.opts.MinSaturation || c.V < a.opts.MinValue {
				continue
			}

			bin := utils.ClampIndex(int(c.H/binWidth), a.opts.Bins)
			a.counts[bin]++
			a.sumH[bin] += c.H
			a.sumS[bin] += c.S
			a.sumV[bin] += c.V
		}
	}

	// Raw score = count × mean saturation, which collapses to the saturation
	// sum; spelled out this way it still rewards prevalence and vividness.
	for i := range a.scores {
		a.scores[i] = utils.EMA(a.scores[i], a.sumS[i], a.opts.ScoreAlpha)
	}

	winner, winnerScore := a.pickWinner()
	if winnerScore < a.opts.MinScore {
		a.dominant = -1
		return a.emit(fallbackColor(fallbackWeight, fallbackR, fallbackG, fallbackB))
	}

	a.dominant = winner
	if a.counts[winner] == 0 {
		// Incumbent held on smoothed score alone; nothing fresh to average,
		// so hold the previous emission.
		if a.primed {
			return a.boosted(a.last).RGB()
		}
		return 0, 0, 0
	}

	n := float64(a.counts[winner])
	return a.emit(colors.HSV{
		H: a.sumH[winner] / n,
		S: a.sumS[winner] / n,
		V: a.sumV[winner] / n,
	})
}

func (a *Analyzer) pickWinner() (int, float64) {
	best := -1
	bestScore := 0.0
	for i, score := range a.scores {
		if i == a.dominant {
			score *= a.opts.HysteresisBoost
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best, bestScore
}

// emit blends the frame's target color toward the previous output, records
// the blended value, and returns it with the adaptive boost applied.
func (a *Analyzer) emit(target colors.HSV) (uint8, uint8, uint8) {
	out := target.Clamped()
	if a.primed {
		blend := a.opts.OutputBlend
		out = colors.HSV{
			H: colors.LerpHue(a.last.H, out.H, blend),
			S: utils.Lerp(a.last.S, out.S, blend),
			V: utils.Lerp(a.last.V, out.V, blend),
		}
	}
	a.last = out
	a.primed = true

	return a.boosted(out).RGB()
}

// boosted applies the adaptive saturation/value boost: the duller the
// color, the larger the multiplier. The boost is applied on emission only
// so it never compounds through the blend history.
func (a *Analyzer) boosted(c colors.HSV) colors.HSV {
	c.S = utils.Clamp(c.S*(1+a.opts.SaturationBoost*(1-c.S)), 0.0, 1.0)
	c.V = utils.Clamp(c.V*(1+a.opts.ValueBoost*(1-c.V)), 0.0, 1.0)
	return c
}

func fallbackColor(weight, r, g, b float64) colors.HSV {
	if weight <= 0 {
		return colors.HSV{}
	}
	return colors.FromRGB(
		uint8(utils.Clamp(r/weight, 0, 255)),
		uint8(utils.Clamp(g/weight, 0, 255)),
		uint8(utils.Clamp(b/weight, 0, 255)),
	)
}
