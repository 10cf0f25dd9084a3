//go:build linux

// internal/watchdog/device_linux.go
package watchdog

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// magicClose disarms drivers that support it ("nowayout" off).
const magicClose = "V"

// Device drives a kernel watchdog such as /dev/watchdog.
// Opening the device arms it.
type Device struct {
	mu     sync.Mutex
	f      *os.File
	closed bool

	// TimeoutErr is set when the driver refused the requested timeout
	// and kept its own default.
	TimeoutErr error
}

// OpenDevice opens and arms the watchdog, then sets its timeout.
func OpenDevice(path string, timeout time.Duration) (*Device, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("watchdog: open %s: %w", path, err)
	}

	secs := int(timeout / time.Second)
	if secs < 1 {
		secs = 1
	}
	d := &Device{f: f}
	if err := unix.IoctlSetPointerInt(int(f.Fd()), unix.WDIOC_SETTIMEOUT, secs); err != nil {
		d.TimeoutErr = fmt.Errorf("watchdog: set timeout %ds: %w", secs, err)
	}
	return d, nil
}

func (d *Device) Feed() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if err := unix.IoctlWatchdogKeepalive(int(d.f.Fd())); err != nil {
		return fmt.Errorf("watchdog: keepalive: %w", err)
	}
	return nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	_, _ = d.f.WriteString(magicClose)
	return d.f.Close()
}
