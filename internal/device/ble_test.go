package device

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestDiscoveryErrorWrapsLookupFailure(t *testing.T) {
	cause := eris.New("att timeout")

	err := discoveryError(cause, 0, "LED service")

	assert.Error(t, err)
	assert.True(t, eris.Is(err, cause))
}

func TestDiscoveryErrorReportsEmptyResult(t *testing.T) {
	// A stack may report an absent service as a nil error with zero
	// results; that must still surface as a connect failure, never as a
	// nil error alongside a nil device.
	err := discoveryError(nil, 0, "LED service")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "LED service not found")
}

func TestDiscoveryErrorAcceptsMatch(t *testing.T) {
	assert.NoError(t, discoveryError(nil, 1, "write characteristic"))
}
