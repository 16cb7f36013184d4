package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFraming(t *testing.T) {
	packets := []Packet{
		Power(true),
		Power(false),
		Brightness(50),
		EffectSpeed(100),
		GrayscaleMode(30),
		TemperatureMode(5),
		EffectMode(0x87),
		DynamicMode(0x01),
		StaticColor(255, 128, 0),
		GrayscaleColor(80),
		TemperatureColor(40),
		DynamicValue(200),
		DynamicSensitivity(75),
		PinOrder(3),
		CustomPinOrder(3, 2, 1),
	}

	for _, p := range packets {
		assert.Len(t, p, 9)
		assert.Equal(t, byte(0x7E), p[0])
		assert.Equal(t, byte(0xEF), p[8])
	}
}

func TestPower(t *testing.T) {
	assert.Equal(t, Packet{0x7E, 0x00, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0xEF}, Power(true))
	assert.Equal(t, Packet{0x7E, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xEF}, Power(false))
}

func TestStaticColor(t *testing.T) {
	assert.Equal(t, Packet{0x7E, 0x00, 0x05, 0x03, 0xFF, 0x80, 0x00, 0x00, 0xEF}, StaticColor(255, 128, 0))
}

func TestBrightnessClamping(t *testing.T) {
	assert.Equal(t, Brightness(100), Brightness(150))
	assert.Equal(t, Brightness(0), Brightness(-5))
	assert.Equal(t, byte(42), Brightness(42)[3])
}

func TestChannelClamping(t *testing.T) {
	assert.Equal(t, StaticColor(255, 0, 255), StaticColor(300, -20, 256))
	assert.Equal(t, DynamicValue(255), DynamicValue(1000))
}

func TestTemperaturePresetOffset(t *testing.T) {
	assert.Equal(t, byte(0x80), TemperatureMode(0)[3])
	assert.Equal(t, byte(0x8A), TemperatureMode(10)[3])
	assert.Equal(t, TemperatureMode(10), TemperatureMode(99))
}

func TestModeSelectIDs(t *testing.T) {
	assert.Equal(t, byte(0x01), GrayscaleMode(10)[4])
	assert.Equal(t, byte(0x02), TemperatureMode(3)[4])
	assert.Equal(t, byte(0x03), EffectMode(0x90)[4])
	assert.Equal(t, byte(0x04), DynamicMode(0x02)[4])
}

func TestPinOrderClamping(t *testing.T) {
	assert.Equal(t, byte(1), PinOrder(0)[3])
	assert.Equal(t, byte(6), PinOrder(9)[3])
	assert.Equal(t, Packet{0x7E, 0x00, 0x81, 0x03, 0x02, 0x01, 0x00, 0x00, 0xEF}, CustomPinOrder(3, 2, 1))
	assert.Equal(t, CustomPinOrder(1, 3, 1), CustomPinOrder(0, 4, -1))
}

func TestDeterministic(t *testing.T) {
	assert.Equal(t, StaticColor(12, 34, 56), StaticColor(12, 34, 56))
}
