//go:build !linux

// internal/watchdog/device_other.go
package watchdog

import (
	"errors"
	"time"
)

// Device is only available on Linux.
type Device struct {
	TimeoutErr error
}

// OpenDevice always fails off Linux; configure the software watchdog instead.
func OpenDevice(path string, timeout time.Duration) (*Device, error) {
	return nil, errors.New("watchdog: kernel device not supported on this platform")
}

func (d *Device) Feed() error  { return ErrClosed }
func (d *Device) Close() error { return nil }
