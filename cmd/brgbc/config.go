package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
	"github.com/gordonklaus/portaudio"
	"github.com/rotisserie/eris"

	"github.com/ayyo42069/BRGBC/internal/device"
	"github.com/ayyo42069/BRGBC/internal/ui"
)

// tuning holds the knobs that are environment-driven rather than flags:
// they shape how a session behaves, not which session runs.
type tuning struct {
	CaptureInterval time.Duration `env:"CAPTURE_INTERVAL" envDefault:"40ms"`
	PixelStride     int           `env:"PIXEL_STRIDE" envDefault:"4"`
	ScreenNumber    int           `env:"SCREEN_NUMBER" envDefault:"0"`
	Responsiveness  float64       `env:"RESPONSIVENESS" envDefault:"0"`
	ScanTimeout     time.Duration `env:"SCAN_TIMEOUT" envDefault:"15s"`
}

func loadTuning() (tuning, error) {
	var t tuning
	if err := env.Parse(&t); err != nil {
		return t, eris.Wrap(err, "parse environment tuning")
	}
	return t, nil
}

func selectStripAndInput(
	strips []device.Found,
	inputs []*portaudio.DeviceInfo,
	defaultInputIndex int,
	opts runtimeOptions,
) (device.Found, *portaudio.DeviceInfo, error) {
	if len(strips) == 0 {
		return device.Found{}, nil, device.ErrNoDevice
	}

	var (
		selectedInput *portaudio.DeviceInfo
		inputIndex    = -1
	)

	needInput := len(inputs) > 0
	if needInput && opts.audioDevice >= 0 {
		if opts.audioDevice >= len(inputs) {
			return device.Found{}, nil, eris.Errorf("invalid audio device index %d", opts.audioDevice)
		}
		selectedInput = inputs[opts.audioDevice]
		inputIndex = opts.audioDevice
		needInput = false
	}

	// A name filter that matched exactly one controller needs no picker.
	needStrip := opts.deviceName == "" && len(strips) > 1

	if !needStrip && !needInput {
		if selectedInput == nil && len(inputs) > 0 {
			selectedInput = inputs[effectiveInitialInputIndex(inputIndex, defaultInputIndex, len(inputs))]
		}
		return strips[0], selectedInput, nil
	}

	initialInput := effectiveInitialInputIndex(inputIndex, defaultInputIndex, len(inputs))

	result, err := ui.RunSetup(
		buildStripOptions(strips),
		buildInputOptions(inputs),
		ui.SetupConfig{
			RequireStrip: needStrip,
			RequireInput: needInput,
			InitialStrip: 0,
			InitialInput: initialInput,
		},
	)
	if err != nil {
		if eris.Is(err, ui.ErrNoInteractiveTTY) {
			if len(inputs) > 0 {
				selectedInput = inputs[initialInput]
			}
			return strips[0], selectedInput, nil
		}
		return device.Found{}, nil, err
	}

	if len(inputs) > 0 {
		selectedInput = inputs[result.InputIndex]
	}
	return strips[result.StripIndex], selectedInput, nil
}

func buildStripOptions(strips []device.Found) []ui.Option {
	options := make([]ui.Option, len(strips))
	for i, s := range strips {
		options[i] = ui.Option{Label: s.Label()}
	}
	return options
}

func buildInputOptions(inputs []*portaudio.DeviceInfo) []ui.Option {
	options := make([]ui.Option, len(inputs))
	for i, dev := range inputs {
		options[i] = ui.Option{
			Label: fmt.Sprintf(
				"[%d] %s · %.0fHz · in:%d · latency:%.1fms",
				i,
				dev.Name,
				dev.DefaultSampleRate,
				dev.MaxInputChannels,
				dev.DefaultLowInputLatency.Seconds()*1000,
			),
		}
	}
	return options
}

func effectiveInitialInputIndex(requested, fallback, length int) int {
	if length == 0 {
		return 0
	}
	if requested >= 0 && requested < length {
		return requested
	}
	if fallback >= 0 && fallback < length {
		return fallback
	}
	return 0
}

func sanitizeChannelCount(requested, max int) int {
	if requested <= 0 {
		return 1
	}
	if max > 0 && requested > max {
		return max
	}
	return requested
}

func effectiveSampleRate(requested, deviceDefault float64) float64 {
	if requested > 0 {
		return requested
	}
	if deviceDefault > 0 {
		return deviceDefault
	}
	return 44100
}
