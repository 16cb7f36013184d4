package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRGBRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		r, g, b uint8
	}{
		{"red", 255, 0, 0},
		{"green", 0, 255, 0},
		{"blue", 0, 0, 255},
		{"grey", 128, 128, 128},
		{"black", 0, 0, 0},
		{"white", 255, 255, 255},
		{"orange", 255, 160, 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, g, b := FromRGB(tc.r, tc.g, tc.b).RGB()
			assert.InDelta(t, tc.r, r, 1)
			assert.InDelta(t, tc.g, g, 1)
			assert.InDelta(t, tc.b, b, 1)
		})
	}
}

func TestNormalizeHue(t *testing.T) {
	assert.InDelta(t, 10, NormalizeHue(370), 1e-9)
	assert.InDelta(t, 350, NormalizeHue(-10), 1e-9)
	assert.InDelta(t, 0, NormalizeHue(360), 1e-9)
}

func TestHueDeltaTakesShortPath(t *testing.T) {
	assert.InDelta(t, 20, HueDelta(350, 10), 1e-9)
	assert.InDelta(t, -20, HueDelta(10, 350), 1e-9)
	assert.InDelta(t, 90, HueDelta(0, 90), 1e-9)
	assert.InDelta(t, -180, HueDelta(0, 180), 1e-9)
}

func TestLerpHueAcrossBoundary(t *testing.T) {
	assert.InDelta(t, 0, LerpHue(350, 10, 0.5), 1e-9)
	assert.InDelta(t, 355, LerpHue(350, 10, 0.25), 1e-9)
}

func TestRGBClampsOutOfRange(t *testing.T) {
	r, g, b := HSV{H: 400, S: 2, V: -1}.RGB()
	assert.Equal(t, uint8(0), r)
	assert.Equal(t, uint8(0), g)
	assert.Equal(t, uint8(0), b)
}
