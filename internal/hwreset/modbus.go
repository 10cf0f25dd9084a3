// internal/hwreset/modbus.go
package hwreset

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

const (
	coilOn  uint16 = 0xFF00
	coilOff uint16 = 0x0000
)

// coilWriter is the exact subset of modbus.Client the relay line uses.
type coilWriter interface {
	WriteSingleCoil(address, value uint16) ([]byte, error)
}

// ModbusRelay drives the reset input through a relay coil on an RS-485
// Modbus RTU I/O module. Energised coil = reset asserted.
type ModbusRelay struct {
	mu      sync.Mutex
	client  coilWriter
	coil    uint16
	closeFn func() error
}

type ModbusConfig struct {
	Port     string
	BaudRate int
	SlaveID  uint8
	Coil     uint16
	Timeout  time.Duration
}

// OpenModbusRelay connects to the I/O module.
func OpenModbusRelay(cfg ModbusConfig) (*ModbusRelay, error) {
	if cfg.Port == "" {
		return nil, errors.New("hwreset modbus: port required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}

	h := modbus.NewRTUClientHandler(cfg.Port)
	h.BaudRate = cfg.BaudRate
	h.DataBits = 8
	h.Parity = "N"
	h.StopBits = 1
	h.SlaveId = cfg.SlaveID
	h.Timeout = cfg.Timeout

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("hwreset modbus: connect %s: %w", cfg.Port, err)
	}

	return &ModbusRelay{
		client:  modbus.NewClient(h),
		coil:    cfg.Coil,
		closeFn: h.Close,
	}, nil
}

func (m *ModbusRelay) Set(active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := coilOff
	if active {
		v = coilOn
	}
	if _, err := m.client.WriteSingleCoil(m.coil, v); err != nil {
		return fmt.Errorf("hwreset modbus: coil %d: %w", m.coil, err)
	}
	return nil
}

func (m *ModbusRelay) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closeFn == nil {
		return nil
	}
	return m.closeFn()
}
