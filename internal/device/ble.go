package device

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"tinygo.org/x/bluetooth"

	"github.com/ayyo42069/BRGBC/internal/protocol"
)

// ELK-BLEDOM-class controllers expose a single write characteristic.
var (
	ledService   = bluetooth.New16BitUUID(0xFFF0)
	ledWriteChar = bluetooth.New16BitUUID(0xFFF3)
)

// ErrNoDevice is returned when scanning ends without a matching controller.
var ErrNoDevice = eris.New("no LED controller found")

// Found describes one controller seen during a scan.
type Found struct {
	Result bluetooth.ScanResult
}

// Label renders a human-readable line for pickers and logs.
func (f Found) Label() string {
	name := f.Result.LocalName()
	if name == "" {
		name = "(unnamed)"
	}
	return name + " · " + f.Result.Address.String()
}

// Scan collects LED controllers advertising the expected service, or any
// device matching the given address/name filter, until ctx expires.
func Scan(ctx context.Context, adapter *bluetooth.Adapter, filter string) ([]Found, error) {
	var (
		mu       sync.Mutex
		seen     = map[string]bool{}
		found    []Found
		stopOnce sync.Once
	)

	filter = strings.ToLower(strings.TrimSpace(filter))

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		adapter.StopScan()
	}()

	err := adapter.Scan(func(a *bluetooth.Adapter, result bluetooth.ScanResult) {
		if !matches(result, filter) {
			return
		}

		addr := result.Address.String()
		mu.Lock()
		if !seen[addr] {
			seen[addr] = true
			found = append(found, Found{Result: result})
		}
		mu.Unlock()

		// An explicit filter wants the first hit, not a survey.
		if filter != "" {
			stopOnce.Do(func() { close(done) })
		}
	})
	if err != nil && ctx.Err() == nil {
		return nil, eris.Wrap(err, "BLE scan failed")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(found) == 0 {
		return nil, ErrNoDevice
	}
	return found, nil
}

func matches(result bluetooth.ScanResult, filter string) bool {
	if filter != "" {
		return strings.ToLower(result.Address.String()) == filter ||
			strings.Contains(strings.ToLower(result.LocalName()), filter)
	}
	return result.HasServiceUUID(ledService)
}

// LED is a connected controller. Write performs an unacknowledged GATT
// write; there is no retry contract.
type LED struct {
	device bluetooth.Device
	char   bluetooth.DeviceCharacteristic
}

// Connect connects to a scanned controller and resolves its write
// characteristic.
func Connect(adapter *bluetooth.Adapter, found Found) (*LED, error) {
	dev, err := adapter.Connect(found.Result.Address, bluetooth.ConnectionParams{
		ConnectionTimeout: bluetooth.NewDuration(10 * time.Second),
	})
	if err != nil {
		return nil, eris.Wrap(err, "connect to LED controller")
	}

	services, err := dev.DiscoverServices([]bluetooth.UUID{ledService})
	if err := discoveryError(err, len(services), "LED service"); err != nil {
		dev.Disconnect()
		return nil, err
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{ledWriteChar})
	if err := discoveryError(err, len(chars), "write characteristic"); err != nil {
		dev.Disconnect()
		return nil, err
	}

	return &LED{device: dev, char: chars[0]}, nil
}

// discoveryError folds the two GATT discovery failure shapes into one
// non-nil error: the lookup itself failing, or succeeding with no match.
// Some stacks report an absent service as an empty result, not an error.
func discoveryError(err error, n int, what string) error {
	if err != nil {
		return eris.Wrapf(err, "discover %s", what)
	}
	if n == 0 {
		return eris.Errorf("%s not found", what)
	}
	return nil
}

// Write sends one packet without waiting for an acknowledgement.
func (l *LED) Write(pkt protocol.Packet) error {
	if _, err := l.char.WriteWithoutResponse(pkt[:]); err != nil {
		return eris.Wrap(err, "write packet")
	}
	return nil
}

// Disconnect tears down the BLE connection.
func (l *LED) Disconnect() error {
	return l.device.Disconnect()
}
