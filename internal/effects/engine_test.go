package effects

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayyo42069/BRGBC/internal/protocol"
)

type recordingSink struct {
	mu      sync.Mutex
	packets []protocol.Packet
}

func (s *recordingSink) Write(pkt protocol.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packets = append(s.packets, pkt)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.packets)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartProducesWrites(t *testing.T) {
	sink := &recordingSink{}
	e := NewEngine(sink, discard())

	e.Start(context.Background(), RainbowFade, 1)
	defer e.Stop()

	assert.Eventually(t, func() bool { return sink.count() >= 3 },
		time.Second, 5*time.Millisecond)
	assert.True(t, e.Running())
}

func TestStopIsSynchronous(t *testing.T) {
	sink := &recordingSink{}
	e := NewEngine(sink, discard())

	e.Start(context.Background(), RainbowFade, 1)
	assert.Eventually(t, func() bool { return sink.count() >= 1 },
		time.Second, 5*time.Millisecond)

	e.Stop()
	assert.False(t, e.Running())

	after := sink.count()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, sink.count(),
		"no writes may land after Stop returns")
}

func TestDoubleStartLeavesOneGenerator(t *testing.T) {
	sink := &recordingSink{}
	e := NewEngine(sink, discard())

	e.Start(context.Background(), RainbowFade, 1)
	e.Start(context.Background(), ColorCycle, 1)
	defer e.Stop()

	active, running := e.Active()
	assert.True(t, running)
	assert.Equal(t, ColorCycle, active)

	// Only the second generator may still be writing.
	e.Stop()
	after := sink.count()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, sink.count())
}

func TestBuiltinEffectSelectsHardwarePattern(t *testing.T) {
	sink := &recordingSink{}
	e := NewEngine(sink, discard())

	e.Start(context.Background(), BuiltinCrossfade, 0.5)
	assert.Eventually(t, func() bool { return sink.count() >= 2 },
		time.Second, 5*time.Millisecond)
	e.Stop()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.GreaterOrEqual(t, len(sink.packets), 2)
	assert.Equal(t, protocol.EffectMode(0x8A), sink.packets[0])
	assert.Equal(t, protocol.EffectSpeed(50), sink.packets[1])
}

func TestParentContextCancelStopsLoop(t *testing.T) {
	sink := &recordingSink{}
	e := NewEngine(sink, discard())

	ctx, cancel := context.WithCancel(context.Background())
	e.Start(ctx, Breathe, 1)
	cancel()

	assert.Eventually(t, func() bool { return !e.Running() },
		time.Second, 5*time.Millisecond)
}

func TestGeneratorsEmitValidFrames(t *testing.T) {
	for _, effect := range All() {
		if effect.Category() != CategoryAnimated {
			continue
		}
		t.Run(effect.String(), func(t *testing.T) {
			gen := newGenerator(effect, rand.New(rand.NewSource(1)))
			for range 50 {
				st := gen.next(0.5)
				assert.Equal(t, byte(0x7E), st.pkt[0])
				assert.Equal(t, byte(0xEF), st.pkt[8])
				assert.Greater(t, st.delay, time.Duration(0))
			}
		})
	}
}

func TestParse(t *testing.T) {
	e, err := Parse("Rainbow")
	require.NoError(t, err)
	assert.Equal(t, RainbowFade, e)

	_, err = Parse("sparkles")
	assert.Error(t, err)
}
