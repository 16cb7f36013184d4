package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

type runMode int

const (
	modeSync runMode = iota
	modeEffect
	modeStatic
)

type runtimeOptions struct {
	mode       runMode
	deviceName string
	effectName string
	speed      float64
	colorHex   string
	brightness int

	audioDevice int
	noAudio     bool
	sampleRate  float64
	frameSize   int
	channels    int
	latency     time.Duration

	visualize bool
	debug     bool
}

func parseCLIFlags() (runtimeOptions, error) {
	var (
		cfg       runtimeOptions
		mode      string
		latencyMs int
	)

	flag.StringVar(&mode, "mode", "sync", "run mode: sync, effect or static")
	flag.StringVar(&cfg.deviceName, "device", "", "LED controller name or address (leave blank to choose interactively)")
	flag.StringVar(&cfg.effectName, "effect", "rainbow", "effect name for -mode effect")
	flag.Float64Var(&cfg.speed, "speed", 0.5, "effect speed, 0.0 (slow) to 1.0 (fast)")
	flag.StringVar(&cfg.colorHex, "color", "ffffff", "static color as RRGGBB hex for -mode static")
	flag.IntVar(&cfg.brightness, "brightness", -1, "master brightness 0-100 (-1 = leave unchanged)")
	flag.IntVar(&cfg.audioDevice, "audio-device", -1, "audio input device index (leave blank to choose interactively)")
	flag.BoolVar(&cfg.noAudio, "no-audio", false, "disable the beat-reactive audio pipeline in sync mode")
	flag.Float64Var(&cfg.sampleRate, "sample-rate", 0, "capture sample rate (0 = device default)")
	flag.IntVar(&cfg.frameSize, "frame-size", 1024, "analysis frame size in samples")
	flag.IntVar(&cfg.channels, "channels", 2, "number of input channels to capture (<= device max)")
	flag.IntVar(&latencyMs, "latency-ms", 0, "override input latency in milliseconds (0 = device default)")
	flag.BoolVar(&cfg.debug, "debug", false, "enable debug logging")
	flag.BoolVar(&cfg.visualize, "visualize", false, "render the live strip dashboard (logs go to stderr)")
	flag.Parse()

	cfg.latency = time.Duration(latencyMs) * time.Millisecond

	switch strings.ToLower(mode) {
	case "sync":
		cfg.mode = modeSync
	case "effect":
		cfg.mode = modeEffect
	case "static":
		cfg.mode = modeStatic
	default:
		return cfg, eris.Errorf("unknown mode %q (want sync, effect or static)", mode)
	}

	return cfg, cfg.validate()
}

func (o runtimeOptions) validate() error {
	if o.frameSize <= 0 {
		return eris.Errorf("frame size must be positive, got %d", o.frameSize)
	}
	return nil
}

func parseHexColor(s string) (uint8, uint8, uint8, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, 0, 0, eris.Errorf("color %q is not RRGGBB hex", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0, eris.Wrapf(err, "color %q is not RRGGBB hex", s)
	}
	return r, g, b, nil
}
