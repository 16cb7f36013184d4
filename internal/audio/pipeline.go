package audio

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayyo42069/BRGBC/internal/beat"
	"github.com/ayyo42069/BRGBC/internal/dsp"
)

// Pipeline runs tap → mono mixdown → feature extraction → beat detection.
// It owns no transport access: the detector publishes its level and the
// sync pipeline reads it.
type Pipeline struct {
	tap       *Tap
	extractor *dsp.Extractor
	detector  *beat.Detector
	channels  int
	logger    *slog.Logger

	// OnFeatures, when set, receives every processed frame plus the
	// detector level. Used by the visualizer.
	OnFeatures func(dsp.Features, float64)
}

// NewPipeline wires a capture tap to a detector.
func NewPipeline(tap *Tap, extractor *dsp.Extractor, detector *beat.Detector, channels int, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		tap:       tap,
		extractor: extractor,
		detector:  detector,
		channels:  channels,
		logger:    logger,
	}
}

// Run captures and processes audio until ctx is cancelled. The detector is
// reset on entry so a new session never inherits a stale envelope.
func (p *Pipeline) Run(ctx context.Context) error {
	p.detector.Reset()

	if err := p.tap.Start(); err != nil {
		return err
	}
	defer func() {
		if err := p.tap.Stop(); err != nil {
			p.logger.Warn("failed to stop audio tap", slog.Any("error", err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return p.process(gctx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				p.logger.Debug("beat detector state", slog.Float64("level", p.detector.Level()))
			}
		}
	})

	return g.Wait()
}

func (p *Pipeline) process(ctx context.Context) error {
	frames := p.tap.Frames()
	var mono []float64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			mono = dsp.ToMono(frame, p.channels, mono)
			if len(mono) != p.extractor.FrameSize() {
				// Device hiccup; a short frame is not worth analyzing.
				continue
			}
			features := p.extractor.Process(mono, time.Now())
			level := p.detector.Process(features)
			if p.OnFeatures != nil {
				p.OnFeatures(features, level)
			}
		}
	}
}
