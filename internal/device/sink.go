// Package device provides the packet sink abstraction and the thin BLE
// adapter behind it.
package device

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ayyo42069/BRGBC/internal/protocol"
)

// Sink accepts one encoded packet for a best-effort unacknowledged write.
type Sink interface {
	Write(pkt protocol.Packet) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(pkt protocol.Packet) error

func (f SinkFunc) Write(pkt protocol.Packet) error {
	return f(pkt)
}

// BestEffort wraps a Sink so transport failures never surface to the hot
// loop: the write is dropped, a warning is logged at most once per
// interval, and the drop count in between is reported with it.
type BestEffort struct {
	sink     Sink
	logger   *slog.Logger
	interval time.Duration

	mu       sync.Mutex
	lastWarn time.Time
	dropped  int
}

// NewBestEffort wraps sink with rate-limited failure logging.
func NewBestEffort(sink Sink, logger *slog.Logger, interval time.Duration) *BestEffort {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &BestEffort{sink: sink, logger: logger, interval: interval}
}

func (b *BestEffort) Write(pkt protocol.Packet) error {
	err := b.sink.Write(pkt)
	if err == nil {
		return nil
	}

	b.mu.Lock()
	b.dropped++
	dropped := b.dropped
	warn := time.Since(b.lastWarn) >= b.interval
	if warn {
		b.lastWarn = time.Now()
		b.dropped = 0
	}
	b.mu.Unlock()

	if warn {
		b.logger.Warn("device write failed, dropping updates",
			slog.Int("dropped", dropped),
			slog.Any("error", err))
	}
	return nil
}
