// Package dsp turns raw audio frames into the per-frame energy metrics the
// beat detector consumes. Scratch buffers are reused to keep allocations
// predictable under the real-time capture callback.
package dsp

import (
	"math"
	"math/cmplx"
	"time"

	"github.com/mjibson/go-dsp/fft"

	"github.com/ayyo42069/BRGBC/internal/utils"
)

// Band is an inclusive frequency span in Hz used for energy bucketing.
type Band struct {
	Low  float64
	High float64
}

// DefaultBands covers the bass/mid/treble groupings for music content.
func DefaultBands() [3]Band {
	return [3]Band{
		{Low: 20, High: 250},
		{Low: 250, High: 2000},
		{Low: 2000, High: 8000},
	}
}

// Features is the per-frame metric set handed to the beat detector.
type Features struct {
	Timestamp     time.Time
	RMS           float64
	BandEnergy    [3]float64
	BandShare     [3]float64
	TotalEnergy   float64
	FrameDuration time.Duration
}

// Bass returns the normalized low-band share of the frame's energy.
func (f Features) Bass() float64 {
	return f.BandShare[0]
}

// Extractor computes Features from mono frames of a fixed size.
type Extractor struct {
	sampleRate float64
	frameSize  int
	bands      [3]Band
	window     []float64
	scratch    []float64
	magnitudes []float64
	binWidth   float64
}

// NewExtractor constructs an Extractor for the given sample rate and frame
// size. A zero bands value selects DefaultBands.
func NewExtractor(sampleRate float64, frameSize int, bands [3]Band) *Extractor {
	if frameSize <= 0 {
		panic("dsp: frameSize must be > 0")
	}
	if sampleRate <= 0 {
		panic("dsp: sampleRate must be > 0")
	}
	if bands == ([3]Band{}) {
		bands = DefaultBands()
	}

	return &Extractor{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		bands:      bands,
		window:     HannWindow(frameSize),
		scratch:    make([]float64, frameSize),
		magnitudes: make([]float64, frameSize/2+1),
		binWidth:   sampleRate / float64(frameSize),
	}
}

// FrameSize returns the configured frame length in samples.
func (e *Extractor) FrameSize() int {
	return e.frameSize
}

// Process computes features for the supplied mono frame. The frame length
// must match the configured frame size.
func (e *Extractor) Process(frame []float64, ts time.Time) Features {
	if len(frame) != e.frameSize {
		panic("dsp: frame length mismatch")
	}

	copy(e.scratch, frame)
	ApplyWindowInPlace(e.scratch, e.window)

	spectrum := fft.FFTReal(e.scratch)
	half := len(spectrum)/2 + 1
	if len(e.magnitudes) != half {
		e.magnitudes = make([]float64, half)
	}

	var total float64
	for i := range half {
		mag := cmplx.Abs(spectrum[i])
		e.magnitudes[i] = mag
		total += mag * mag
	}

	energy, share := e.bandEnergy(total)

	return Features{
		Timestamp:     ts,
		RMS:           RootMeanSquare(frame),
		BandEnergy:    energy,
		BandShare:     share,
		TotalEnergy:   total,
		FrameDuration: time.Duration(float64(e.frameSize) / e.sampleRate * float64(time.Second)),
	}
}

func (e *Extractor) bandEnergy(total float64) ([3]float64, [3]float64) {
	var energy [3]float64
	for i, band := range e.bands {
		lower := math.Max(band.Low, 0)
		upper := math.Max(band.High, lower)
		start := utils.ClampIndex(int(math.Floor(lower/e.binWidth)), len(e.magnitudes))
		end := utils.ClampIndex(int(math.Ceil(upper/e.binWidth)), len(e.magnitudes))
		var sum float64
		for bin := start; bin <= end; bin++ {
			mag := e.magnitudes[bin]
			sum += mag * mag
		}
		energy[i] = sum
	}

	var share [3]float64
	if total > 1e-9 {
		for i := range energy {
			share[i] = utils.Clamp(energy[i]/total, 0.0, 1.0)
		}
	}
	return energy, share
}

// RootMeanSquare computes the RMS amplitude of a frame.
func RootMeanSquare(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sumSquares float64
	for _, sample := range frame {
		sumSquares += sample * sample
	}
	return math.Sqrt(sumSquares / float64(len(frame)))
}

// ToMono averages interleaved multi-channel data into a mono frame,
// reusing dst when it has capacity.
func ToMono(samples []float32, channels int, dst []float64) []float64 {
	if channels <= 0 {
		channels = 1
	}
	frameLen := len(samples) / channels
	if cap(dst) < frameLen {
		dst = make([]float64, frameLen)
	} else {
		dst = dst[:frameLen]
	}
	idx := 0
	for i := range frameLen {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(samples[idx])
			idx++
		}
		dst[i] = sum / float64(channels)
	}
	return dst
}

// HannWindow returns a precomputed Hann window of the requested size.
func HannWindow(n int) []float64 {
	if n <= 0 {
		return nil
	}
	window := make([]float64, n)
	if n == 1 {
		window[0] = 1
		return window
	}
	for i := range n {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return window
}

// ApplyWindowInPlace multiplies samples by a window function in-place.
func ApplyWindowInPlace(samples, window []float64) {
	switch {
	case len(samples) == 0:
		return
	case len(samples) != len(window):
		panic("dsp: window length mismatch")
	}
	for i := range samples {
		samples[i] *= window[i]
	}
}
