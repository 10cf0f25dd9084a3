// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/google/uuid"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// MinBufferSize is the smallest accepted raw capture buffer.
const MinBufferSize = 512

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values are accepted where Normalize supplies a default.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalid)
	}

	// ------------------------------------------------------------
	// IDENTITY
	// ------------------------------------------------------------

	if _, err := uuid.Parse(cfg.Node.NodeUUID); err != nil {
		return fmt.Errorf("%w: node.node_uuid %q: %v", ErrInvalid, cfg.Node.NodeUUID, err)
	}
	if _, err := uuid.Parse(cfg.Node.ReaderUUID); err != nil {
		return fmt.Errorf("%w: node.reader_uuid %q: %v", ErrInvalid, cfg.Node.ReaderUUID, err)
	}

	// ------------------------------------------------------------
	// SCANNER
	// ------------------------------------------------------------

	s := cfg.Scanner
	if s.Port == "" {
		return fmt.Errorf("%w: scanner.port required", ErrInvalid)
	}
	if err := nonNegative(map[string]int{
		"scanner.baud_rate":       s.BaudRate,
		"scanner.read_timeout_ms": s.ReadTimeoutMs,
		"scanner.silence_ms":      s.SilenceMs,
		"scanner.loop_ms":         s.LoopMs,
	}); err != nil {
		return err
	}
	if s.BufferSize != 0 && s.BufferSize < MinBufferSize {
		return fmt.Errorf("%w: scanner.buffer_size %d below minimum %d", ErrInvalid, s.BufferSize, MinBufferSize)
	}
	switch s.DataBits {
	case 0, 5, 6, 7, 8:
	default:
		return fmt.Errorf("%w: scanner.data_bits %d", ErrInvalid, s.DataBits)
	}
	switch s.StopBits {
	case 0, 1, 2:
	default:
		return fmt.Errorf("%w: scanner.stop_bits %d", ErrInvalid, s.StopBits)
	}
	switch s.Parity {
	case "", "N", "E", "O":
	default:
		return fmt.Errorf("%w: scanner.parity %q (want N, E or O)", ErrInvalid, s.Parity)
	}

	// ------------------------------------------------------------
	// COLLECTOR
	// ------------------------------------------------------------

	u, err := url.Parse(cfg.Collector.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: collector.base_url %q must be an absolute http(s) URL", ErrInvalid, cfg.Collector.BaseURL)
	}
	if cfg.Collector.TimeoutMs < 0 {
		return fmt.Errorf("%w: collector.timeout_ms must be >= 0", ErrInvalid)
	}

	// ------------------------------------------------------------
	// NETWORK
	// ------------------------------------------------------------

	n := cfg.Network
	if n.Interface == "" {
		return fmt.Errorf("%w: network.interface required", ErrInvalid)
	}
	if n.Static {
		if _, _, err := net.ParseCIDR(n.Address); err != nil {
			return fmt.Errorf("%w: network.address %q must be CIDR: %v", ErrInvalid, n.Address, err)
		}
		if n.Gateway != "" && net.ParseIP(n.Gateway) == nil {
			return fmt.Errorf("%w: network.gateway %q", ErrInvalid, n.Gateway)
		}
		for _, d := range n.DNS {
			if net.ParseIP(d) == nil {
				return fmt.Errorf("%w: network.dns entry %q", ErrInvalid, d)
			}
		}
	}
	if err := nonNegative(map[string]int{
		"network.connect_timeout_ms": n.ConnectTimeoutMs,
		"network.monitor_ms":         n.MonitorMs,
	}); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// RESILIENCE
	// ------------------------------------------------------------

	r := cfg.Resilience
	if err := nonNegative(map[string]int{
		"resilience.supervise_ms":      r.SuperviseMs,
		"resilience.heartbeat_ms":      r.HeartbeatMs,
		"resilience.inactivity_ms":     r.InactivityMs,
		"resilience.failure_threshold": r.FailureThreshold,
		"resilience.loop_ms":           r.LoopMs,
	}); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// RESET LINE
	// ------------------------------------------------------------

	rs := cfg.Reset
	switch rs.Driver {
	case "", "none":
	case "gpio":
		if rs.GPIOPin < 0 {
			return fmt.Errorf("%w: reset.gpio_pin must be >= 0", ErrInvalid)
		}
	case "modbus":
		if rs.ModbusPort == "" {
			return fmt.Errorf("%w: reset.modbus_port required for modbus driver", ErrInvalid)
		}
		if rs.ModbusSlave == 0 {
			return fmt.Errorf("%w: reset.modbus_slave must be 1..247", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: reset.driver %q (want gpio, modbus or none)", ErrInvalid, rs.Driver)
	}
	if err := nonNegative(map[string]int{
		"reset.hold_ms":     rs.HoldMs,
		"reset.settle_ms":   rs.SettleMs,
		"reset.modbus_baud": rs.ModbusBaud,
	}); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// WATCHDOG / BROADCAST
	// ------------------------------------------------------------

	if cfg.Watchdog.TimeoutMs < 0 {
		return fmt.Errorf("%w: watchdog.timeout_ms must be >= 0", ErrInvalid)
	}

	// One interface restart must finish before the watchdog fires.
	restart := orDefault(n.ConnectTimeoutMs, DefaultConnectTimeoutMs) + RestartMarginMs
	if wd := orDefault(cfg.Watchdog.TimeoutMs, DefaultWatchdogTimeoutMs); restart >= wd {
		return fmt.Errorf("%w: network.connect_timeout_ms + %d (%d) must be below watchdog.timeout_ms (%d)",
			ErrInvalid, RestartMarginMs, restart, wd)
	}
	if cfg.Broadcast.Port < 0 || cfg.Broadcast.Port > 65535 {
		return fmt.Errorf("%w: broadcast.port %d out of range", ErrInvalid, cfg.Broadcast.Port)
	}
	if cfg.Broadcast.Address != "" && net.ParseIP(cfg.Broadcast.Address) == nil {
		return fmt.Errorf("%w: broadcast.address %q", ErrInvalid, cfg.Broadcast.Address)
	}

	return nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func nonNegative(fields map[string]int) error {
	for name, v := range fields {
		if v < 0 {
			return fmt.Errorf("%w: %s must be >= 0", ErrInvalid, name)
		}
	}
	return nil
}
