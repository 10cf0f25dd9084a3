// internal/config/config.go
package config

type Config struct {
	Node       NodeConfig       `yaml:"node"`
	Scanner    ScannerConfig    `yaml:"scanner"`
	Collector  CollectorConfig  `yaml:"collector"`
	Network    NetworkConfig    `yaml:"network"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Reset      ResetConfig      `yaml:"reset"`
	Watchdog   WatchdogConfig   `yaml:"watchdog"`
	Broadcast  BroadcastConfig  `yaml:"broadcast"`
	Log        LogConfig        `yaml:"log"`
}

// ---- IDENTITY ----

type NodeConfig struct {
	NodeUUID   string `yaml:"node_uuid"`
	ReaderUUID string `yaml:"reader_uuid"`
}

// ---- SCANNER (UART) ----

type ScannerConfig struct {
	Port          string `yaml:"port"`
	BaudRate      int    `yaml:"baud_rate"`
	DataBits      int    `yaml:"data_bits"`
	Parity        string `yaml:"parity"` // N, E, O
	StopBits      int    `yaml:"stop_bits"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`

	BufferSize int `yaml:"buffer_size"`
	SilenceMs  int `yaml:"silence_ms"`
	LoopMs     int `yaml:"loop_ms"`
}

// ---- COLLECTOR (HTTP) ----

type CollectorConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- NETWORK LINK ----

type NetworkConfig struct {
	Interface string `yaml:"interface"`

	// Static addressing; DHCP is used when Static is false.
	Static  bool     `yaml:"static"`
	Address string   `yaml:"address"` // CIDR, e.g. 192.168.0.123/24
	Gateway string   `yaml:"gateway"`
	DNS     []string `yaml:"dns"`

	DHCPCommand []string `yaml:"dhcp_command"`

	ConnectTimeoutMs int `yaml:"connect_timeout_ms"`
	MonitorMs        int `yaml:"monitor_ms"`
}

// ---- RESILIENCE ----

type ResilienceConfig struct {
	SuperviseMs      int `yaml:"supervise_ms"`
	HeartbeatMs      int `yaml:"heartbeat_ms"`
	InactivityMs     int `yaml:"inactivity_ms"`
	FailureThreshold int `yaml:"failure_threshold"`
	LoopMs           int `yaml:"loop_ms"`
}

// ---- RESET LINE ----

type ResetConfig struct {
	Driver string `yaml:"driver"` // gpio | modbus | none

	// gpio (sysfs)
	GPIOPin   int  `yaml:"gpio_pin"`
	ActiveLow bool `yaml:"active_low"`

	// modbus relay coil (RTU)
	ModbusPort  string `yaml:"modbus_port"`
	ModbusBaud  int    `yaml:"modbus_baud"`
	ModbusSlave uint8  `yaml:"modbus_slave"`
	ModbusCoil  uint16 `yaml:"modbus_coil"`

	HoldMs   int `yaml:"hold_ms"`
	SettleMs int `yaml:"settle_ms"`
}

// ---- WATCHDOG ----

type WatchdogConfig struct {
	// Device is the kernel watchdog (e.g. /dev/watchdog).
	// Empty selects the in-process software watchdog.
	Device    string `yaml:"device"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- UDP BROADCAST ----

type BroadcastConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// ---- LOGGING ----

type LogConfig struct {
	Level    string         `yaml:"level"`  // debug, info, warn, error
	Format   string         `yaml:"format"` // console or json
	Outputs  []string       `yaml:"outputs"`
	Rotation RotationConfig `yaml:"rotation"`
}

type RotationConfig struct {
	Enable     bool `yaml:"enable"`
	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}
