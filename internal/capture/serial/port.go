// internal/capture/serial/port.go
package serial

import (
	"errors"
	"fmt"
	"time"

	"github.com/goburrow/serial"
)

// Port implements capture.Source on a UART.
// Reads use a short timeout; a timeout is reported as "no data".
type Port struct {
	port serial.Port
}

// Config is minimal UART config.
type Config struct {
	Address     string
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      string
	ReadTimeout time.Duration
}

// Open opens the UART.
func Open(cfg Config) (*Port, error) {
	if cfg.Address == "" {
		return nil, errors.New("scanner serial: address required")
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 5 * time.Millisecond
	}

	p, err := serial.Open(&serial.Config{
		Address:  cfg.Address,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   cfg.Parity,
		Timeout:  cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("scanner serial: open %s: %w", cfg.Address, err)
	}
	return &Port{port: p}, nil
}

// Poll reads what is available within the read timeout.
func (p *Port) Poll(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if errors.Is(err, serial.ErrTimeout) {
		return n, nil
	}
	return n, err
}

// Close closes the UART.
func (p *Port) Close() error {
	if p == nil || p.port == nil {
		return nil
	}
	return p.port.Close()
}
