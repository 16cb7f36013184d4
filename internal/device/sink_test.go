package device

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/ayyo42069/BRGBC/internal/protocol"
)

func TestBestEffortPassesThrough(t *testing.T) {
	var got []protocol.Packet
	sink := NewBestEffort(SinkFunc(func(pkt protocol.Packet) error {
		got = append(got, pkt)
		return nil
	}), slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second)

	assert.NoError(t, sink.Write(protocol.Power(true)))
	assert.Equal(t, []protocol.Packet{protocol.Power(true)}, got)
}

func TestBestEffortSwallowsFailures(t *testing.T) {
	sink := NewBestEffort(SinkFunc(func(protocol.Packet) error {
		return eris.New("not connected")
	}), slog.New(slog.NewTextHandler(io.Discard, nil)), time.Second)

	for range 50 {
		assert.NoError(t, sink.Write(protocol.Brightness(10)),
			"transport failure must never surface to the hot loop")
	}
}
