// internal/config/normalize.go
package config

import "strings"

// ---- DEFAULTS ----

const (
	DefaultBaudRate      = 9600
	DefaultDataBits      = 8
	DefaultParity        = "N"
	DefaultStopBits      = 1
	DefaultReadTimeoutMs = 5

	DefaultBufferSize = 1024
	DefaultSilenceMs  = 100
	DefaultScanLoopMs = 10

	DefaultCollectorTimeoutMs = 10_000

	DefaultConnectTimeoutMs = 30_000
	DefaultMonitorMs        = 1_000

	// RestartMarginMs bounds interface teardown and addressing commands on
	// top of the connect timeout.
	RestartMarginMs = 15_000

	DefaultSuperviseMs      = 15_000
	DefaultHeartbeatMs      = 30_000
	DefaultInactivityMs     = 15 * 60 * 1000
	DefaultFailureThreshold = 5
	DefaultControlLoopMs    = 50

	DefaultResetHoldMs   = 100
	DefaultResetSettleMs = 500
	DefaultModbusBaud    = 9600

	DefaultWatchdogTimeoutMs = 60_000

	DefaultBroadcastAddress = "255.255.255.255"
	DefaultBroadcastPort    = 4210
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	s := &cfg.Scanner
	setDefault(&s.BaudRate, DefaultBaudRate)
	setDefault(&s.DataBits, DefaultDataBits)
	setDefault(&s.StopBits, DefaultStopBits)
	setDefault(&s.ReadTimeoutMs, DefaultReadTimeoutMs)
	setDefault(&s.BufferSize, DefaultBufferSize)
	setDefault(&s.SilenceMs, DefaultSilenceMs)
	setDefault(&s.LoopMs, DefaultScanLoopMs)
	if s.Parity == "" {
		s.Parity = DefaultParity
	}

	// Query paths are appended verbatim; avoid "//api".
	cfg.Collector.BaseURL = strings.TrimRight(cfg.Collector.BaseURL, "/")
	setDefault(&cfg.Collector.TimeoutMs, DefaultCollectorTimeoutMs)

	n := &cfg.Network
	setDefault(&n.ConnectTimeoutMs, DefaultConnectTimeoutMs)
	setDefault(&n.MonitorMs, DefaultMonitorMs)
	if !n.Static && len(n.DHCPCommand) == 0 {
		n.DHCPCommand = []string{"dhclient", "-1", n.Interface}
	}

	r := &cfg.Resilience
	setDefault(&r.SuperviseMs, DefaultSuperviseMs)
	setDefault(&r.HeartbeatMs, DefaultHeartbeatMs)
	setDefault(&r.InactivityMs, DefaultInactivityMs)
	setDefault(&r.FailureThreshold, DefaultFailureThreshold)
	setDefault(&r.LoopMs, DefaultControlLoopMs)

	rs := &cfg.Reset
	if rs.Driver == "" {
		rs.Driver = "none"
	}
	setDefault(&rs.HoldMs, DefaultResetHoldMs)
	setDefault(&rs.SettleMs, DefaultResetSettleMs)
	setDefault(&rs.ModbusBaud, DefaultModbusBaud)

	setDefault(&cfg.Watchdog.TimeoutMs, DefaultWatchdogTimeoutMs)

	if cfg.Broadcast.Address == "" {
		cfg.Broadcast.Address = DefaultBroadcastAddress
	}
	setDefault(&cfg.Broadcast.Port, DefaultBroadcastPort)

	l := &cfg.Log
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "console"
	}
	if len(l.Outputs) == 0 {
		l.Outputs = []string{"stdout"}
	}
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
