package beat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayyo42069/BRGBC/internal/dsp"
)

func feed(d *Detector, rms, bass float64, frames int) []float64 {
	levels := make([]float64, 0, frames)
	for range frames {
		levels = append(levels, d.Process(dsp.Features{RMS: rms, BandShare: [3]float64{bass, 1 - bass, 0}}))
	}
	return levels
}

// plateaus counts distinct excursions above the beat-hold region.
func plateaus(levels []float64) int {
	count := 0
	above := false
	for _, level := range levels {
		if level > 0.9 && !above {
			count++
			above = true
		}
		if level < 0.5 {
			above = false
		}
	}
	return count
}

func TestSingleSpikeFiresOnce(t *testing.T) {
	d := New(Options{})

	feed(d, 0.1, 0.2, 120) // settle on a flat floor
	levels := feed(d, 0.3, 0.2, 6)
	levels = append(levels, feed(d, 0.1, 0.2, 80)...)

	assert.Equal(t, 1, plateaus(levels),
		"a sustained 3x spike must trigger exactly one hold+tail cycle")
}

func TestSpikeReachesFullBrightness(t *testing.T) {
	d := New(Options{})

	feed(d, 0.1, 0.2, 120)
	levels := feed(d, 0.3, 0.2, 8)

	peak := 0.0
	for _, level := range levels {
		peak = max(peak, level)
	}
	assert.Greater(t, peak, 0.9)
}

func TestTailDecaysTowardAmbient(t *testing.T) {
	d := New(Options{})

	feed(d, 0.1, 0.2, 120)
	feed(d, 0.3, 0.2, 6)
	levels := feed(d, 0.1, 0.2, 120)

	final := levels[len(levels)-1]
	assert.Less(t, final, 0.6, "output must settle back after the tail")
	assert.Greater(t, final, 0.1, "baseline stays above zero")
}

func TestSilenceNeverTriggers(t *testing.T) {
	d := New(Options{})

	levels := feed(d, 0, 0, 200)

	for _, level := range levels {
		assert.LessOrEqual(t, level, 0.35)
	}
	assert.InDelta(t, 0.25, levels[len(levels)-1], 0.05,
		"silence settles at the ambient baseline")
}

func TestBassPathTriggersOnSmallerJump(t *testing.T) {
	plain := New(Options{})
	bassy := New(Options{})

	feed(plain, 0.1, 0.2, 150)
	feed(bassy, 0.1, 0.2, 150)

	// A modest swell that clears the bass jump bar but not the main one.
	plainLevels := feed(plain, 0.14, 0.2, 6)
	bassyLevels := feed(bassy, 0.14, 0.9, 6)

	assert.Zero(t, plateaus(plainLevels))
	assert.Equal(t, 1, plateaus(bassyLevels))
}

func TestLevelMatchesProcessOutput(t *testing.T) {
	d := New(Options{})

	out := d.Process(dsp.Features{RMS: 0.2})
	assert.Equal(t, out, d.Level())
}

func TestResetClearsEnvelope(t *testing.T) {
	d := New(Options{})

	feed(d, 0.1, 0.2, 120)
	feed(d, 0.4, 0.2, 3) // mid-hold
	d.Reset()

	assert.InDelta(t, 0.25, d.Level(), 0.01)
	levels := feed(d, 0, 0, 10)
	for _, level := range levels {
		assert.LessOrEqual(t, level, 0.3)
	}
}
