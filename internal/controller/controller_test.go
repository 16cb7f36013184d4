package controller

import (
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayyo42069/BRGBC/internal/analyzer"
	"github.com/ayyo42069/BRGBC/internal/protocol"
	"github.com/ayyo42069/BRGBC/internal/smoother"
)

type fakeSource struct {
	img *image.RGBA
}

func (s *fakeSource) Frame() (*image.RGBA, error) { return s.img, nil }
func (s *fakeSource) Close() error                { return nil }

func solidFrame(c color.RGBA) *fakeSource {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return &fakeSource{img: img}
}

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

func (s *recordingSink) last() protocol.Packet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.packets[len(s.packets)-1]
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(sink *recordingSink) *Controller {
	return New(sink, nil, nil, discard(), Options{
		Interval:       time.Millisecond,
		Responsiveness: 1,
	})
}

func TestSyncLoopWritesColorFrames(t *testing.T) {
	sink := &recordingSink{}
	c := newTestController(sink)

	c.StartSync(context.Background(), solidFrame(color.RGBA{R: 255, A: 255}))
	defer c.StopSync()

	assert.Eventually(t, func() bool { return sink.count() >= 3 },
		time.Second, time.Millisecond)
	assert.True(t, c.Syncing())

	pkt := sink.last()
	assert.Equal(t, byte(0x7E), pkt[0])
	assert.Equal(t, byte(0xEF), pkt[8])
	assert.Equal(t, byte(255), pkt[4], "red channel")
	assert.Equal(t, byte(0), pkt[6], "blue channel")
}

func TestStopSyncIsSynchronous(t *testing.T) {
	sink := &recordingSink{}
	c := newTestController(sink)

	c.StartSync(context.Background(), solidFrame(color.RGBA{R: 255, A: 255}))
	assert.Eventually(t, func() bool { return sink.count() >= 1 },
		time.Second, time.Millisecond)

	c.StopSync()
	assert.False(t, c.Syncing())

	after := sink.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, sink.count(),
		"no writes may land after StopSync returns")
}

func TestStartSyncReplacesRunningSession(t *testing.T) {
	sink := &recordingSink{}
	c := newTestController(sink)

	c.StartSync(context.Background(), solidFrame(color.RGBA{R: 255, A: 255}))
	c.StartSync(context.Background(), solidFrame(color.RGBA{B: 255, A: 255}))
	defer c.StopSync()

	assert.True(t, c.Syncing())
	assert.Eventually(t, func() bool {
		if sink.count() == 0 {
			return false
		}
		pkt := sink.last()
		return pkt[6] == 255 && pkt[4] == 0
	}, time.Second, time.Millisecond, "only the replacement session may write")
}

func TestSetStaticColorStopsSession(t *testing.T) {
	sink := &recordingSink{}
	c := newTestController(sink)

	c.StartSync(context.Background(), solidFrame(color.RGBA{R: 255, A: 255}))
	assert.Eventually(t, func() bool { return sink.count() >= 1 },
		time.Second, time.Millisecond)

	require.NoError(t, c.SetStaticColor(10, 20, 30))
	assert.False(t, c.Syncing())
	assert.Equal(t, protocol.StaticColor(10, 20, 30), sink.last())

	after := sink.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, sink.count())
}

func TestSetPowerOffStopsSession(t *testing.T) {
	sink := &recordingSink{}
	c := newTestController(sink)

	c.StartSync(context.Background(), solidFrame(color.RGBA{R: 255, A: 255}))
	require.NoError(t, c.SetPower(false))

	assert.False(t, c.Syncing())
	assert.Equal(t, protocol.Power(false), sink.last())
}

func TestSetBrightnessLeavesSessionRunning(t *testing.T) {
	sink := &recordingSink{}
	c := newTestController(sink)

	c.StartSync(context.Background(), solidFrame(color.RGBA{R: 255, A: 255}))
	defer c.StopSync()

	require.NoError(t, c.SetBrightness(60))
	assert.True(t, c.Syncing())
}

func rgbDistance(r1, g1, b1, r2, g2, b2 uint8) float64 {
	dr := float64(r1) - float64(r2)
	dg := float64(g1) - float64(g2)
	db := float64(b1) - float64(b2)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func TestRedFrameConvergence(t *testing.T) {
	an := analyzer.New(analyzer.Options{})
	sm := smoother.New(smoother.Options{})
	sm.Reset(0, 0, 0)

	frame := solidFrame(color.RGBA{R: 255, A: 255}).img

	r, g, b := an.Analyze(frame)
	r, g, b = sm.Smooth(r, g, b)
	assert.Less(t,
		rgbDistance(r, g, b, 0, 0, 0),
		rgbDistance(r, g, b, 255, 0, 0),
		"first output must still be near black, not a jump to red")

	for range 200 {
		r, g, b = an.Analyze(frame)
		r, g, b = sm.Smooth(r, g, b)
	}
	assert.Less(t, rgbDistance(r, g, b, 255, 0, 0), 12.0,
		"repeated red frames must converge to red")
}
