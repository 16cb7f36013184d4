// Package capture acquires raster frames for the sync pipeline.
package capture

import (
	"image"

	"github.com/kbinani/screenshot"
	"github.com/rotisserie/eris"
)

// Source produces raster frames. Frame errors are recoverable: the caller
// skips the tick and keeps the loop alive.
type Source interface {
	Frame() (*image.RGBA, error)
	Close() error
}

// Screen captures a physical display. After a run of consecutive failures
// (resolution change, display unplugged) it re-validates the display index
// against the current topology instead of failing forever.
type Screen struct {
	display  int
	failures int
}

const revalidateAfter = 3

// NewScreen returns a Screen source for the given display index.
func NewScreen(display int) (*Screen, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, eris.New("no active displays")
	}
	if display < 0 || display >= n {
		return nil, eris.Errorf("display %d out of range (have %d)", display, n)
	}
	return &Screen{display: display}, nil
}

func (s *Screen) Frame() (*image.RGBA, error) {
	img, err := screenshot.CaptureDisplay(s.display)
	if err != nil {
		s.failures++
		if s.failures >= revalidateAfter {
			s.recover()
		}
		return nil, eris.Wrap(err, "capture display")
	}
	s.failures = 0
	return img, nil
}

// recover re-reads the display topology and clamps the target index; the
// next Frame call retries against the refreshed surface.
func (s *Screen) recover() {
	s.failures = 0
	if n := screenshot.NumActiveDisplays(); n > 0 && s.display >= n {
		s.display = n - 1
	}
}

func (s *Screen) Close() error {
	return nil
}
