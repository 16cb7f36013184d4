package dsp

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, sampleRate float64, n int) []float64 {
	frame := make([]float64, n)
	for i := range frame {
		frame[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return frame
}

func TestProcessBassSine(t *testing.T) {
	e := NewExtractor(44100, 1024, DefaultBands())
	features := e.Process(sine(100, 44100, 1024), time.Now())

	assert.InDelta(t, 1/math.Sqrt2, features.RMS, 0.05)
	assert.Greater(t, features.Bass(), 0.9)
	assert.Less(t, features.BandShare[2], 0.05)
}

func TestProcessTrebleSine(t *testing.T) {
	e := NewExtractor(44100, 1024, DefaultBands())
	features := e.Process(sine(4000, 44100, 1024), time.Now())

	assert.Greater(t, features.BandShare[2], 0.9)
	assert.Less(t, features.Bass(), 0.05)
}

func TestProcessSilence(t *testing.T) {
	e := NewExtractor(44100, 512, DefaultBands())
	features := e.Process(make([]float64, 512), time.Now())

	assert.Zero(t, features.RMS)
	assert.Zero(t, features.Bass())
}

func TestRootMeanSquare(t *testing.T) {
	assert.Zero(t, RootMeanSquare(nil))
	assert.InDelta(t, 0.5, RootMeanSquare([]float64{0.5, -0.5, 0.5, -0.5}), 1e-12)
}

func TestToMono(t *testing.T) {
	stereo := []float32{1, 0, 0.5, 0.5, -1, 1}
	mono := ToMono(stereo, 2, nil)
	require.Len(t, mono, 3)
	assert.InDelta(t, 0.5, mono[0], 1e-9)
	assert.InDelta(t, 0.5, mono[1], 1e-9)
	assert.InDelta(t, 0, mono[2], 1e-9)

	// Reuses dst capacity.
	reused := ToMono(stereo, 2, mono)
	assert.Len(t, reused, 3)
}

func TestHannWindowEdges(t *testing.T) {
	w := HannWindow(8)
	require.Len(t, w, 8)
	assert.InDelta(t, 0, w[0], 1e-12)
	assert.InDelta(t, 0, w[7], 1e-12)
	assert.Nil(t, HannWindow(0))
}
