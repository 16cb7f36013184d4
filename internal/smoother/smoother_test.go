package smoother

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayyo42069/BRGBC/internal/colors"
)

func TestResetThenSameColorIsIdentity(t *testing.T) {
	s := New(Options{})
	s.Reset(200, 40, 90)

	r, g, b := s.Smooth(200, 40, 90)
	assert.InDelta(t, 200, r, 1)
	assert.InDelta(t, 40, g, 1)
	assert.InDelta(t, 90, b, 1)
}

func TestStepIsRateLimited(t *testing.T) {
	opts := Options{MaxHueStep: 10, MaxStep: 0.05}
	s := New(opts)
	s.Reset(0, 0, 0)

	// Full red is far from black; a single update must not jump there.
	r, g, b := s.Smooth(255, 0, 0)
	out := colors.FromRGB(r, g, b)
	assert.LessOrEqual(t, out.V, 0.06, "value may move at most one capped step")
	assert.Less(t, int(r), 30)
}

func TestHueWrapsShortWay(t *testing.T) {
	s := New(Options{})
	start := colors.HSV{H: 350, S: 1, V: 1}
	s.Reset(start.RGB())

	target := colors.HSV{H: 10, S: 1, V: 1}
	var prev = 350.0
	for range 40 {
		r, g, b := s.Smooth(target.RGB())
		h := colors.FromRGB(r, g, b).H
		delta := colors.HueDelta(prev, h)
		assert.GreaterOrEqual(t, delta, -1.0, "hue must move through 0, not back through 180")
		prev = h
	}
	assert.InDelta(t, 0, colors.HueDelta(10, prev), 3, "hue should converge on the target")
}

func TestConvergence(t *testing.T) {
	s := New(Options{})
	s.Reset(0, 0, 0)

	var r, g, b uint8
	for range 200 {
		r, g, b = s.Smooth(255, 0, 0)
	}
	assert.Greater(t, int(r), 245)
	assert.Less(t, int(g), 10)
	assert.Less(t, int(b), 10)
}

func TestResponsivenessOneSnapsInstantly(t *testing.T) {
	s := New(Options{})
	s.Reset(0, 0, 0)

	r, g, b := s.SmoothResponsive(255, 0, 0, 1.0)
	assert.InDelta(t, 255, r, 1)
	assert.InDelta(t, 0, g, 1)
	assert.InDelta(t, 0, b, 1)
}

func TestResponsivenessSpeedsChase(t *testing.T) {
	slow := New(Options{})
	fast := New(Options{})
	slow.Reset(0, 0, 0)
	fast.Reset(0, 0, 0)

	var slowR, fastR uint8
	for range 10 {
		slowR, _, _ = slow.SmoothResponsive(255, 0, 0, 0.1)
		fastR, _, _ = fast.SmoothResponsive(255, 0, 0, 0.8)
	}
	assert.Greater(t, int(fastR), int(slowR))
}

func TestNearBlackSnapsToZero(t *testing.T) {
	s := New(Options{})
	s.Reset(10, 10, 10)

	var r, g, b uint8
	for range 100 {
		r, g, b = s.Smooth(0, 0, 0)
	}
	assert.Zero(t, r)
	assert.Zero(t, g)
	assert.Zero(t, b)
}

func TestRapidEpisodeSlowsChase(t *testing.T) {
	// Uncapped steps and an instant target make the slowdown directly
	// observable: once the alternating input latches the episode, each
	// hue move must shrink sharply versus the first unlatched move.
	s := New(Options{
		TargetAlpha:    1,
		ChaseRate:      0.5,
		MaxHueStep:     359,
		MaxStep:        1,
		BigJumpHue:     179,
		RapidRunLength: 2,
		Slowdown:       0.2,
	})
	s.Reset(255, 0, 0)

	flip := [][3]uint8{{0, 0, 255}, {255, 0, 0}}
	prev := 0.0
	var moves []float64
	for i := range 4 {
		c := flip[i%2]
		r, g, b := s.Smooth(c[0], c[1], c[2])
		h := colors.FromRGB(r, g, b).H
		moves = append(moves, abs(colors.HueDelta(prev, h)))
		prev = h
	}

	assert.Greater(t, moves[0], 40.0, "first move happens at full speed")
	for _, move := range moves[1:] {
		assert.Less(t, move, moves[0]/2, "latched episode must slow every subsequent move")
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
