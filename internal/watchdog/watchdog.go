// internal/watchdog/watchdog.go
package watchdog

import (
	"errors"
	"sync"
	"time"
)

// Feeder is a platform watchdog. Feed must be called more often than the
// timeout or the device is rebooted. Close disarms it.
type Feeder interface {
	Feed() error
	Close() error
}

// ErrClosed is returned by Feed after Close.
var ErrClosed = errors.New("watchdog: closed")

// Software is an in-process watchdog for hosts without a kernel device.
// On expiry it calls onExpire exactly once; the process is expected not
// to survive that call.
type Software struct {
	mu       sync.Mutex
	timer    *time.Timer
	timeout  time.Duration
	closed   bool
	onExpire func()
}

// NewSoftware arms a software watchdog immediately.
func NewSoftware(timeout time.Duration, onExpire func()) (*Software, error) {
	if timeout <= 0 {
		return nil, errors.New("watchdog: timeout must be > 0")
	}
	if onExpire == nil {
		return nil, errors.New("watchdog: expiry action required")
	}

	s := &Software{timeout: timeout, onExpire: onExpire}
	s.timer = time.AfterFunc(timeout, s.expire)
	return s, nil
}

func (s *Software) Feed() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.timer.Reset(s.timeout)
	return nil
}

func (s *Software) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.timer.Stop()
	return nil
}

func (s *Software) expire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.onExpire()
}
