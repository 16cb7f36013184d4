// Package protocol encodes commands for ELK-BLEDOM-class BLE RGB controllers.
//
// Every command is a fixed 9-byte frame:
//
//	0x7E OP1 OP2 B3 B4 B5 B6 B7 0xEF
//
// The encoders are pure and deterministic. Out-of-range numeric input is
// saturated to the nearest valid bound instead of rejected; the hardware
// does the same, and callers feed these from continuously sampled signals
// where a hard error would be useless.
package protocol

import "github.com/ayyo42069/BRGBC/internal/utils"

// Packet is one encoded controller command. Immutable once built.
type Packet [9]byte

const (
	frameStart = 0x7E
	frameEnd   = 0xEF
)

// Command selector bytes (OP2 with OP1=0x00, except custom pin order).
const (
	opPower       = 0x04
	opBrightness  = 0x01
	opSpeed       = 0x02
	opMode        = 0x03
	opColor       = 0x05
	opDynValue    = 0x06
	opDynSens     = 0x07
	opPinOrder    = 0x08
	opPinOrderRaw = 0x81
)

// Mode identifiers for the mode-select command (B4).
const (
	modeGrayscale   = 0x01
	modeTemperature = 0x02
	modeEffect      = 0x03
	modeDynamic     = 0x04
)

// Color-set selector bytes (B3).
const (
	colorGrayscale   = 0x01
	colorTemperature = 0x02
	colorRGB         = 0x03
)

// Discrete temperature presets occupy a bank above the percentage range.
const temperaturePresetOffset = 0x80

func frame(op2 byte, b3, b4, b5, b6, b7 byte) Packet {
	return Packet{frameStart, 0x00, op2, b3, b4, b5, b6, b7, frameEnd}
}

func percent(v int) byte {
	return byte(utils.Clamp(v, 0, 100))
}

func channel(v int) byte {
	return byte(utils.Clamp(v, 0, 255))
}

// Power encodes an on/off command. The off frame carries all-zero trailing
// bytes; controllers in this family ignore B4..B7 for power.
func Power(on bool) Packet {
	b3 := byte(0x00)
	if on {
		b3 = 0x01
	}
	return frame(opPower, b3, 0, 0, 0, 0)
}

// Brightness encodes a master brightness level, clamped to 0..100.
func Brightness(level int) Packet {
	return frame(opBrightness, percent(level), 0, 0, 0, 0)
}

// EffectSpeed encodes the built-in effect speed, clamped to 0..100.
func EffectSpeed(speed int) Packet {
	return frame(opSpeed, percent(speed), 0, 0, 0, 0)
}

// GrayscaleMode selects grayscale mode at the given level (0..100).
func GrayscaleMode(level int) Packet {
	return frame(opMode, percent(level), modeGrayscale, 0, 0, 0)
}

// TemperatureMode selects color-temperature mode using a discrete preset
// (0..10); the preset is offset into the controller's preset bank.
func TemperatureMode(preset int) Packet {
	b3 := byte(utils.Clamp(preset, 0, 10)) + temperaturePresetOffset
	return frame(opMode, b3, modeTemperature, 0, 0, 0)
}

// EffectMode selects a built-in animated pattern by its hardware id.
func EffectMode(pattern byte) Packet {
	return frame(opMode, pattern, modeEffect, 0, 0, 0)
}

// DynamicMode selects music/dynamic mode with the given sub-mode byte.
func DynamicMode(sub byte) Packet {
	return frame(opMode, sub, modeDynamic, 0, 0, 0)
}

// StaticColor encodes an RGB color set; this also implicitly selects RGB
// mode on the controller.
func StaticColor(r, g, b int) Packet {
	return frame(opColor, colorRGB, channel(r), channel(g), channel(b), 0)
}

// GrayscaleColor encodes a grayscale level (0..100) via the color-set command.
func GrayscaleColor(level int) Packet {
	return frame(opColor, colorGrayscale, percent(level), 0, 0, 0)
}

// TemperatureColor encodes a warm/cold balance (0..100) via the color-set
// command.
func TemperatureColor(level int) Packet {
	return frame(opColor, colorTemperature, percent(level), 0, 0, 0)
}

// DynamicValue encodes the raw dynamic-mode value, clamped to 0..255.
func DynamicValue(v int) Packet {
	return frame(opDynValue, channel(v), 0, 0, 0, 0)
}

// DynamicSensitivity encodes the microphone sensitivity, clamped to 0..100.
func DynamicSensitivity(v int) Packet {
	return frame(opDynSens, percent(v), 0, 0, 0, 0)
}

// PinOrder selects one of the six preset RGB pin orders (1..6).
func PinOrder(order int) Packet {
	return frame(opPinOrder, byte(utils.Clamp(order, 1, 6)), 0, 0, 0, 0)
}

// CustomPinOrder maps the three output channels explicitly; each position
// is clamped into {1,2,3}.
func CustomPinOrder(first, second, third int) Packet {
	return frame(opPinOrderRaw,
		byte(utils.Clamp(first, 1, 3)),
		byte(utils.Clamp(second, 1, 3)),
		byte(utils.Clamp(third, 1, 3)),
		0, 0)
}
