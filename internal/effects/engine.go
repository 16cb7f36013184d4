package effects

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/ayyo42069/BRGBC/internal/device"
	"github.com/ayyo42069/BRGBC/internal/protocol"
	"github.com/ayyo42069/BRGBC/internal/utils"
)

// Engine runs at most one effect loop at a time. Start atomically replaces
// any running session: the previous loop is cancelled and awaited before
// the new one launches, so the sink never sees interleaved writers.
type Engine struct {
	sink   device.Sink
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	active Effect
}

// NewEngine creates an idle engine writing to sink.
func NewEngine(sink device.Sink, logger *slog.Logger) *Engine {
	return &Engine{sink: sink, logger: logger}
}

// Start launches the given effect at speed ∈ [0,1], tearing down any
// previous session first.
func (e *Engine) Start(ctx context.Context, effect Effect, speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done
	e.active = effect

	e.logger.Info("starting effect",
		slog.String("effect", effect.String()),
		slog.Float64("speed", speed))

	go e.run(runCtx, done, effect, utils.Clamp(speed, 0.0, 1.0))
}

// Stop cancels the running session and waits for its loop to exit. After
// Stop returns, no further writes from the old generator occur.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	<-e.done
	e.cancel = nil
	e.done = nil
}

// Running reports whether an effect loop is currently live.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done == nil {
		return false
	}
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

// Active returns the most recently started effect and whether it is live.
func (e *Engine) Active() (Effect, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done == nil {
		return 0, false
	}
	select {
	case <-e.done:
		return e.active, false
	default:
		return e.active, true
	}
}

func (e *Engine) run(ctx context.Context, done chan struct{}, effect Effect, speed float64) {
	defer close(done)

	if effect.Category() == CategoryBuiltin {
		e.write(protocol.EffectMode(effect.hardware()))
		e.write(protocol.EffectSpeed(int(speed * 100)))
		<-ctx.Done()
		return
	}

	gen := newGenerator(effect, rand.New(rand.NewSource(time.Now().UnixNano())))
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		st := gen.next(speed)
		e.write(st.pkt)

		timer.Reset(st.delay)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

// write is fire-and-forget: a failed write is logged by the sink wrapper
// and skipped, never retried inside the loop.
func (e *Engine) write(pkt protocol.Packet) {
	if err := e.sink.Write(pkt); err != nil {
		e.logger.Debug("effect write failed", slog.Any("error", err))
	}
}
