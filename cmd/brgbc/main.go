package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
	"tinygo.org/x/bluetooth"

	"github.com/ayyo42069/BRGBC/internal/analyzer"
	"github.com/ayyo42069/BRGBC/internal/audio"
	"github.com/ayyo42069/BRGBC/internal/beat"
	"github.com/ayyo42069/BRGBC/internal/capture"
	"github.com/ayyo42069/BRGBC/internal/controller"
	"github.com/ayyo42069/BRGBC/internal/device"
	"github.com/ayyo42069/BRGBC/internal/dsp"
	"github.com/ayyo42069/BRGBC/internal/effects"
	"github.com/ayyo42069/BRGBC/internal/protocol"
	"github.com/ayyo42069/BRGBC/internal/ui"
)

func main() {
	cfg, err := parseCLIFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg runtimeOptions) error {
	tun, err := loadTuning()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.debug, cfg.visualize)

	var staticR, staticG, staticB uint8
	if cfg.mode == modeStatic {
		staticR, staticG, staticB, err = parseHexColor(cfg.colorHex)
		if err != nil {
			return err
		}
	}

	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return eris.Wrap(err, "enable bluetooth adapter")
	}

	logger.Info("scanning for LED controllers",
		slog.String("filter", cfg.deviceName),
		slog.Duration("timeout", tun.ScanTimeout))

	scanCtx, cancelScan := context.WithTimeout(ctx, tun.ScanTimeout)
	strips, err := device.Scan(scanCtx, adapter, cfg.deviceName)
	cancelScan()
	if err != nil {
		return err
	}

	needsAudio := cfg.mode == modeSync && !cfg.noAudio
	var (
		inputs       []*portaudio.DeviceInfo
		defaultInput int
	)
	if needsAudio {
		if err := portaudio.Initialize(); err != nil {
			return eris.Wrap(err, "initialize PortAudio")
		}
		defer portaudio.Terminate()

		inputs, err = portaudio.Devices()
		if err != nil {
			return eris.Wrap(err, "enumerate audio devices")
		}
		def, err := portaudio.DefaultInputDevice()
		if err != nil {
			return eris.Wrap(err, "resolve default audio input device")
		}
		defaultInput = def.Index
	}

	strip, input, err := selectStripAndInput(strips, inputs, defaultInput, cfg)
	if err != nil {
		return eris.Wrap(err, "select strip/input")
	}
	if input != nil && input.MaxInputChannels < 1 {
		return eris.Errorf("device %s has no input channels; select a loopback/monitor device", input.Name)
	}

	logger.Info("connecting to LED controller", slog.String("device", strip.Label()))
	led, err := device.Connect(adapter, strip)
	if err != nil {
		return err
	}
	defer func() {
		if err := led.Disconnect(); err != nil {
			logger.Warn("failed to disconnect from controller", slog.Any("error", err))
		} else {
			logger.Info("controller disconnected")
		}
	}()

	sink := device.NewBestEffort(led, logger, 5*time.Second)

	sink.Write(protocol.Power(true))
	if cfg.brightness >= 0 {
		sink.Write(protocol.Brightness(cfg.brightness))
	}

	switch cfg.mode {
	case modeStatic:
		// Set and leave: the strip keeps the color after we exit.
		return led.Write(protocol.StaticColor(int(staticR), int(staticG), int(staticB)))
	case modeEffect:
		defer powerOff(led, logger)
		return runEffect(ctx, logger, sink, cfg)
	default:
		defer powerOff(led, logger)
		return runSync(ctx, logger, sink, input, cfg, tun)
	}
}

func setupLogger(debug, visualize bool) *slog.Logger {
	logOutput := os.Stdout
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	if visualize && !debug {
		logLevel = slog.LevelWarn
	}
	if visualize {
		logOutput = os.Stderr
	}

	logger := slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	return logger
}

func powerOff(led *device.LED, logger *slog.Logger) {
	if err := led.Write(protocol.Power(false)); err != nil {
		logger.Warn("failed to power off strip", slog.Any("error", err))
	} else {
		logger.Info("strip powered off")
	}
}

func runEffect(ctx context.Context, logger *slog.Logger, sink device.Sink, cfg runtimeOptions) error {
	effect, err := effects.Parse(cfg.effectName)
	if err != nil {
		return err
	}

	ctrl := controller.New(sink, nil, nil, logger, controller.Options{})
	ctrl.StartEffect(ctx, effect, cfg.speed)
	defer ctrl.StopEffect()

	<-ctx.Done()
	return nil
}

func runSync(ctx context.Context, logger *slog.Logger, sink device.Sink, input *portaudio.DeviceInfo, cfg runtimeOptions, tun tuning) error {
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	source, err := capture.NewScreen(tun.ScreenNumber)
	if err != nil {
		return err
	}
	defer source.Close()

	var (
		detector *beat.Detector
		pipe     *audio.Pipeline
	)
	if input != nil {
		sampleRate := effectiveSampleRate(cfg.sampleRate, input.DefaultSampleRate)
		channels := sanitizeChannelCount(cfg.channels, int(input.MaxInputChannels))
		if cfg.channels > 0 && cfg.channels > int(input.MaxInputChannels) {
			logger.Warn("requested channels exceed device capabilities",
				slog.Int("requested", cfg.channels),
				slog.Int("max", int(input.MaxInputChannels)),
				slog.Int("using", channels))
		}

		logger.Info("using audio input device",
			slog.String("name", input.Name),
			slog.Float64("sample_rate", sampleRate),
			slog.Int("channels", channels),
			slog.Int("frame_size", cfg.frameSize))

		detector = beat.New(beat.Options{})
		tap := audio.NewTap(input, audio.Config{
			SampleRate: sampleRate,
			FrameSize:  cfg.frameSize,
			Channels:   channels,
			Latency:    cfg.latency,
		})
		extractor := dsp.NewExtractor(sampleRate, cfg.frameSize, dsp.DefaultBands())
		pipe = audio.NewPipeline(tap, extractor, detector, channels, logger)
	}

	var viz *ui.Visualizer
	if cfg.visualize {
		viz = ui.NewVisualizer(cancel)
		defer viz.Close()
	}

	ctrl := controller.New(sink, detector, viz, logger, controller.Options{
		Interval:       tun.CaptureInterval,
		Responsiveness: tun.Responsiveness,
		Analyzer:       analyzer.Options{Stride: tun.PixelStride},
	})
	if pipe != nil {
		pipe.OnFeatures = ctrl.ObserveAudio
	}

	g, gctx := errgroup.WithContext(loopCtx)

	if pipe != nil {
		g.Go(func() error {
			return pipe.Run(gctx)
		})
	}

	ctrl.StartSync(gctx, source)
	defer ctrl.StopSync()

	g.Go(func() error {
		<-gctx.Done()
		return gctx.Err()
	})

	if err := g.Wait(); err != nil && !eris.Is(err, context.Canceled) {
		logger.Error("sync loop failed", slog.Any("error", err))
		return err
	}
	return nil
}
