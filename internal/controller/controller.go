// Package controller owns the session model: at most one producer writes
// to the strip at a time, and replacing the producer always tears down the
// previous one before the next starts.
package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ayyo42069/BRGBC/internal/analyzer"
	"github.com/ayyo42069/BRGBC/internal/beat"
	"github.com/ayyo42069/BRGBC/internal/capture"
	"github.com/ayyo42069/BRGBC/internal/colors"
	"github.com/ayyo42069/BRGBC/internal/device"
	"github.com/ayyo42069/BRGBC/internal/dsp"
	"github.com/ayyo42069/BRGBC/internal/effects"
	"github.com/ayyo42069/BRGBC/internal/protocol"
	"github.com/ayyo42069/BRGBC/internal/smoother"
	"github.com/ayyo42069/BRGBC/internal/ui"
	"github.com/ayyo42069/BRGBC/internal/utils"
)

// Options tunes the sync loop. Zero values select defaults.
type Options struct {
	Interval       time.Duration // capture and write cadence
	Responsiveness float64       // 0 = full smoothing, >=0.95 = raw passthrough
	Analyzer       analyzer.Options
	Smoother       smoother.Options
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 40 * time.Millisecond
	}
	return o
}

// Controller exposes the strip's operations. Sync and effect sessions are
// mutually exclusive; starting either stops the other first.
type Controller struct {
	sink   device.Sink
	engine *effects.Engine
	beats  *beat.Detector
	viz    *ui.Visualizer
	logger *slog.Logger
	opts   Options

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	levelsMu sync.Mutex
	levels   audioLevels
}

type audioLevels struct {
	energy float64
	bass   float64
	mid    float64
	treble float64
}

// New builds a controller writing to sink. beats may be nil when no audio
// pipeline is running; viz may be nil when the dashboard is off.
func New(sink device.Sink, beats *beat.Detector, viz *ui.Visualizer, logger *slog.Logger, opts Options) *Controller {
	return &Controller{
		sink:   sink,
		engine: effects.NewEngine(sink, logger),
		beats:  beats,
		viz:    viz,
		logger: logger,
		opts:   opts.withDefaults(),
	}
}

// StartSync launches the capture-analyze-smooth-write loop against source.
// Any running sync loop or effect is stopped first.
func (c *Controller) StartSync(ctx context.Context, source capture.Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopSyncLocked()
	c.engine.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	c.logger.Info("starting sync session",
		slog.Duration("interval", c.opts.Interval),
		slog.Float64("responsiveness", c.opts.Responsiveness))

	go c.runSync(runCtx, done, source)
}

// StopSync cancels the sync loop and waits for it to exit.
func (c *Controller) StopSync() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSyncLocked()
}

func (c *Controller) stopSyncLocked() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel = nil
	c.done = nil
}

// Syncing reports whether the sync loop is live.
func (c *Controller) Syncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// StartEffect plays the given effect, replacing any running session.
func (c *Controller) StartEffect(ctx context.Context, effect effects.Effect, speed float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSyncLocked()
	c.engine.Start(ctx, effect, speed)
}

// StopEffect stops the effect engine and waits for its loop to exit.
func (c *Controller) StopEffect() {
	c.engine.Stop()
}

// SetStaticColor stops any running session and holds one color.
func (c *Controller) SetStaticColor(r, g, b uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSyncLocked()
	c.engine.Stop()
	return c.sink.Write(protocol.StaticColor(int(r), int(g), int(b)))
}

// SetBrightness adjusts the strip's brightness without disturbing the
// active session.
func (c *Controller) SetBrightness(level int) error {
	return c.sink.Write(protocol.Brightness(level))
}

// SetPower switches the strip on or off. Powering off stops any running
// session first so nothing writes into a dark strip.
func (c *Controller) SetPower(on bool) error {
	if !on {
		c.mu.Lock()
		c.stopSyncLocked()
		c.engine.Stop()
		c.mu.Unlock()
	}
	return c.sink.Write(protocol.Power(on))
}

func (c *Controller) runSync(ctx context.Context, done chan struct{}, source capture.Source) {
	defer close(done)

	an := analyzer.New(c.opts.Analyzer)
	sm := smoother.New(c.opts.Smoother)

	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()
	debugTicker := time.NewTicker(2 * time.Second)
	defer debugTicker.Stop()

	initialized := false
	var lastR, lastG, lastB uint8

	for {
		select {
		case <-ctx.Done():
			return
		case <-debugTicker.C:
			beatLevel := 1.0
			if c.beats != nil {
				beatLevel = c.beats.Level()
			}
			c.logger.Debug("sync state",
				slog.Int("r", int(lastR)),
				slog.Int("g", int(lastG)),
				slog.Int("b", int(lastB)),
				slog.Float64("beat", beatLevel))
		case <-ticker.C:
			img, err := source.Frame()
			if err != nil {
				c.logger.Debug("frame capture failed", slog.Any("error", err))
				continue
			}

			r, g, b := an.Analyze(img)
			if !initialized {
				sm.Reset(r, g, b)
				initialized = true
			}
			r, g, b = sm.SmoothResponsive(r, g, b, c.opts.Responsiveness)

			level := 1.0
			mult := 1.0
			if c.beats != nil {
				level = c.beats.Level()
				mult = mapBeatToBrightness(level)
			}
			outR := scaleChannel(r, mult)
			outG := scaleChannel(g, mult)
			outB := scaleChannel(b, mult)

			if err := c.sink.Write(protocol.StaticColor(int(outR), int(outG), int(outB))); err != nil {
				c.logger.Debug("sync write failed", slog.Any("error", err))
			}
			lastR, lastG, lastB = outR, outG, outB

			if c.viz != nil {
				c.updateViz(outR, outG, outB, level)
			}
		}
	}
}

// mapBeatToBrightness keeps the strip visible between beats: the envelope's
// resting level dims the color rather than blacking it out.
func mapBeatToBrightness(level float64) float64 {
	return utils.Clamp(0.35+0.65*level, 0.0, 1.0)
}

func scaleChannel(v uint8, level float64) uint8 {
	return uint8(utils.Clamp(float64(v)*level, 0.0, 255.0))
}

// ObserveAudio records the latest extractor output for the dashboard.
// Wired to the audio pipeline's per-frame callback.
func (c *Controller) ObserveAudio(f dsp.Features, level float64) {
	c.levelsMu.Lock()
	c.levels = audioLevels{
		energy: utils.Clamp(f.RMS*3, 0.0, 1.0),
		bass:   f.BandShare[0],
		mid:    f.BandShare[1],
		treble: f.BandShare[2],
	}
	c.levelsMu.Unlock()
}

func (c *Controller) updateViz(r, g, b uint8, level float64) {
	c.levelsMu.Lock()
	levels := c.levels
	c.levelsMu.Unlock()

	hsv := colors.FromRGB(r, g, b)
	c.viz.Update(ui.StripFrame{
		R: r, G: g, B: b,
		Hue:       hsv.H,
		Sat:       hsv.S,
		Val:       hsv.V,
		Energy:    levels.energy,
		BeatLevel: level,
		Bass:      levels.bass,
		Mid:       levels.mid,
		Treble:    levels.treble,
		Mode:      "sync",
	})
}
