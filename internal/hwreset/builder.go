// internal/hwreset/builder.go
package hwreset

import (
	"fmt"
	"time"

	cfg "github.com/saadimalik211/cv-scanner/internal/config"
)

// Build opens the configured reset line.
func Build(c cfg.ResetConfig) (*Resetter, error) {
	var (
		line Line
		err  error
	)

	switch c.Driver {
	case "gpio":
		line, err = OpenGPIO(DefaultSysfsRoot, c.GPIOPin, c.ActiveLow)
	case "modbus":
		line, err = OpenModbusRelay(ModbusConfig{
			Port:     c.ModbusPort,
			BaudRate: c.ModbusBaud,
			SlaveID:  c.ModbusSlave,
			Coil:     c.ModbusCoil,
		})
	case "", "none":
		line = Noop{}
	default:
		return nil, fmt.Errorf("hwreset: unknown driver %q", c.Driver)
	}
	if err != nil {
		return nil, err
	}

	return New(
		line,
		time.Duration(c.HoldMs)*time.Millisecond,
		time.Duration(c.SettleMs)*time.Millisecond,
	), nil
}
