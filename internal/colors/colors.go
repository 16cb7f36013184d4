// Package colors provides the HSV math shared by the analyzer and smoother:
// wraparound hue arithmetic and clamped conversion to and from 8-bit RGB.
package colors

import (
	"math"

	"github.com/crazy3lf/colorconv"

	"github.com/ayyo42069/BRGBC/internal/utils"
)

// HSV holds a color with hue in degrees [0,360) and saturation/value in [0,1].
type HSV struct {
	H float64
	S float64
	V float64
}

// FromRGB converts 8-bit RGB channels to HSV.
func FromRGB(r, g, b uint8) HSV {
	h, s, v := colorconv.RGBToHSV(r, g, b)
	return HSV{H: NormalizeHue(h), S: utils.Clamp(s, 0.0, 1.0), V: utils.Clamp(v, 0.0, 1.0)}
}

// RGB converts back to 8-bit channels. Inputs are clamped first so the
// conversion cannot fail.
func (c HSV) RGB() (uint8, uint8, uint8) {
	h := NormalizeHue(c.H)
	s := utils.Clamp(c.S, 0.0, 1.0)
	v := utils.Clamp(c.V, 0.0, 1.0)
	r, g, b, err := colorconv.HSVToRGB(h, s, v)
	if err != nil {
		return 0, 0, 0
	}
	return r, g, b
}

// Clamped returns a copy with hue normalized and saturation/value clamped.
func (c HSV) Clamped() HSV {
	return HSV{
		H: NormalizeHue(c.H),
		S: utils.Clamp(c.S, 0.0, 1.0),
		V: utils.Clamp(c.V, 0.0, 1.0),
	}
}

// NormalizeHue wraps h into [0,360).
func NormalizeHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// HueDelta returns the signed shortest angular path from 'from' to 'to',
// in [-180,180).
func HueDelta(from, to float64) float64 {
	return math.Mod(to-from+540, 360) - 180
}

// LerpHue moves from 'from' toward 'to' by t along the shortest path.
func LerpHue(from, to, t float64) float64 {
	return NormalizeHue(from + utils.Clamp(t, 0.0, 1.0)*HueDelta(from, to))
}
