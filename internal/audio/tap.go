// Package audio owns the microphone/loopback tap and the frame pipeline
// that feeds the beat detector.
package audio

import (
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/rotisserie/eris"
)

// Config describes the capture stream.
type Config struct {
	SampleRate float64
	FrameSize  int
	Channels   int
	Latency    time.Duration
}

// Tap wraps a portaudio input stream. Frames are delivered on a buffered
// channel with drop-oldest backpressure: the realtime callback must never
// block, and for a light show a fresh frame beats a stale one.
type Tap struct {
	device *portaudio.DeviceInfo
	cfg    Config

	frames chan []float32
	stream *portaudio.Stream
}

// NewTap prepares a tap on the given input device. PortAudio must already
// be initialized by the caller.
func NewTap(device *portaudio.DeviceInfo, cfg Config) *Tap {
	return &Tap{device: device, cfg: cfg}
}

// Frames returns the capture channel. Valid after Start; closed by Stop.
func (t *Tap) Frames() <-chan []float32 {
	return t.frames
}

// Start opens and starts the capture stream. Stop must be called before a
// tap can be started again.
func (t *Tap) Start() error {
	if t.stream != nil {
		return eris.New("audio tap already started")
	}
	if t.device == nil {
		return eris.New("audio device is not specified")
	}

	t.frames = make(chan []float32, 32)
	out := t.frames

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   t.device,
			Channels: t.cfg.Channels,
			Latency:  t.device.DefaultLowInputLatency,
		},
		SampleRate:      t.cfg.SampleRate,
		FramesPerBuffer: t.cfg.FrameSize,
	}
	if t.cfg.Latency > 0 {
		params.Input.Latency = t.cfg.Latency
	}

	stream, err := portaudio.OpenStream(params, func(in []float32) {
		frame := make([]float32, len(in))
		copy(frame, in)

		select {
		case out <- frame:
		default:
			select {
			case <-out:
			default:
			}
			select {
			case out <- frame:
			default:
			}
		}
	})
	if err != nil {
		return eris.Wrap(err, "open audio stream")
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return eris.Wrap(err, "start audio stream")
	}

	t.stream = stream
	return nil
}

// Stop halts capture and releases the stream. After Stop returns no further
// frames are delivered and the frame channel is closed.
func (t *Tap) Stop() error {
	if t.stream == nil {
		return nil
	}

	stopErr := t.stream.Stop()
	closeErr := t.stream.Close()
	t.stream = nil
	close(t.frames)

	if stopErr != nil {
		return eris.Wrap(stopErr, "stop audio stream")
	}
	if closeErr != nil {
		return eris.Wrap(closeErr, "close audio stream")
	}
	return nil
}
