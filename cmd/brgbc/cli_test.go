package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsNonPositiveFrameSize(t *testing.T) {
	for _, size := range []int{0, -1, -1024} {
		cfg := runtimeOptions{frameSize: size}
		assert.Error(t, cfg.validate(), "frame size %d must be rejected before it reaches the extractor", size)
	}

	assert.NoError(t, runtimeOptions{frameSize: 1024}.validate())
}

func TestParseHexColor(t *testing.T) {
	r, g, b, err := parseHexColor("ff8800")
	require.NoError(t, err)
	assert.Equal(t, uint8(0xFF), r)
	assert.Equal(t, uint8(0x88), g)
	assert.Equal(t, uint8(0x00), b)

	r, g, b, err = parseHexColor("#00FF00")
	require.NoError(t, err)
	assert.Equal(t, uint8(0), r)
	assert.Equal(t, uint8(255), g)
	assert.Equal(t, uint8(0), b)

	_, _, _, err = parseHexColor("red")
	assert.Error(t, err)

	_, _, _, err = parseHexColor("12345")
	assert.Error(t, err)
}
